// Package inject loads a module into another process.
//
// The module path and a small loader stub are written into one freshly
// allocated executable page of the target; a remote thread runs the stub,
// which calls the system loader and exits with 1 on success. The page is
// released and every handle closed on all paths, whatever the outcome.
package inject

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

// PageSize is the size of the remote allocation.
const PageSize = 4096

// DefaultTimeout bounds the wait for the remote thread.
const DefaultTimeout = 6 * time.Second

// OS is the operating-system surface the injector needs.
type OS interface {
	// EnableDebugPrivilege enables the debugging privilege on the caller's
	// own token.
	EnableDebugPrivilege() error
	OpenProcess(pid uint32) (Process, error)
	// LoaderAddress returns the address of the wide-string library loader,
	// which is mapped at the same address in every process.
	LoaderAddress() (uint64, error)
}

// Process is an open handle to the target.
type Process interface {
	Alloc(size int) (uint64, error)
	Write(addr uint64, data []byte) error
	StartThread(entry uint64) (Thread, error)
	Free(addr uint64) error
	Close() error
}

// Thread is a remote thread handle.
type Thread interface {
	// Wait reports whether the thread finished within timeout.
	Wait(timeout time.Duration) (bool, error)
	ExitCode() (uint32, error)
	Close() error
}

// Options configures an Injector.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
	// Stub replaces LoadLibraryStub.
	Stub *Stub
}

// Injector loads modules into target processes.
type Injector struct {
	os      OS
	timeout time.Duration
	stub    Stub
	log     *zap.Logger

	privOnce sync.Once
}

// New returns an injector using os.
func New(os OS, opts Options) *Injector {
	in := &Injector{os: os, timeout: opts.Timeout, stub: LoadLibraryStub, log: opts.Logger}
	if in.timeout <= 0 {
		in.timeout = DefaultTimeout
	}
	if opts.Stub != nil {
		in.stub = *opts.Stub
	}
	if in.log == nil {
		in.log = zap.NewNop()
	}
	return in
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodePath returns the NUL-terminated UTF-16LE path.
func encodePath(path string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(path + "\x00"))
}

// Inject loads modulePath into process pid. A nil return means the loader
// reported success; failures are *Error.
func (in *Injector) Inject(pid uint32, modulePath string) (err error) {
	pathBytes, err := encodePath(modulePath)
	if err != nil {
		return &Error{Result: WriteFailed, Op: "encode path", Err: err}
	}
	stubAt := alignUp(len(pathBytes), stubAlign)
	if stubAt+len(in.stub.Template) > PageSize {
		return &Error{Result: WriteFailed, Op: "layout", Err: ErrPathTooLong}
	}

	in.privOnce.Do(func() {
		if err := in.os.EnableDebugPrivilege(); err != nil {
			in.log.Warn("debug privilege not enabled", zap.Error(err))
		}
	})

	log := in.log.With(zap.Uint32("pid", pid), zap.String("module", modulePath))
	defer func() {
		if err != nil {
			log.Error("injection failed", zap.Error(err))
		}
	}()

	proc, err := in.os.OpenProcess(pid)
	if err != nil {
		return &Error{Result: OpenFailed, Op: "open process", Err: err}
	}
	defer closeLogged(log, "process", proc.Close)

	remote, err := proc.Alloc(PageSize)
	if err != nil {
		return &Error{Result: AllocFailed, Op: "allocate", Err: err}
	}
	defer func() {
		if ferr := proc.Free(remote); ferr != nil {
			log.Warn("remote page not released", zap.Error(ferr))
		}
	}()

	if err := proc.Write(remote, pathBytes); err != nil {
		return &Error{Result: WriteFailed, Op: "write path", Err: err}
	}

	loader, err := in.os.LoaderAddress()
	if err != nil {
		return &Error{Result: LaunchFailed, Op: "resolve loader", Err: err}
	}
	code, err := in.stub.Apply(in.stub.Patches(remote, loader)...)
	if err != nil {
		return &Error{Result: WriteFailed, Op: "patch stub", Err: err}
	}
	entry := remote + uint64(stubAt)
	if err := proc.Write(entry, code); err != nil {
		return &Error{Result: WriteFailed, Op: "write stub", Err: err}
	}

	th, err := proc.StartThread(entry)
	if err != nil {
		return &Error{Result: LaunchFailed, Op: "start thread", Err: err}
	}
	defer closeLogged(log, "thread", th.Close)

	done, err := th.Wait(in.timeout)
	if err != nil {
		return &Error{Result: LaunchFailed, Op: "wait", Err: err}
	}
	if !done {
		return &Error{Result: Timeout, Op: "wait", Err: fmt.Errorf("%w after %s", ErrTimeout, in.timeout)}
	}
	exit, err := th.ExitCode()
	if err != nil {
		return &Error{Result: LoaderFailed, Op: "exit code", Err: err}
	}
	if exit != 1 {
		return &Error{Result: LoaderFailed, Op: "load module", Code: exit}
	}
	log.Info("module loaded")
	return nil
}

func closeLogged(log *zap.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn("close failed", zap.String("handle", what), zap.Error(err))
	}
}
