//go:build !windows

package memory

// Process is only available on Windows.
type Process struct{}

// CurrentProcess returns a reader that fails every read.
func CurrentProcess() *Process { return &Process{} }

// OpenProcess always fails with ErrUnsupported.
func OpenProcess(pid uint32) (*Process, error) { return nil, ErrUnsupported }

// PID returns 0.
func (p *Process) PID() uint32 { return 0 }

// ReadMemory implements Reader.
func (p *Process) ReadMemory(addr uint64, dst []byte) (int, error) { return 0, ErrUnsupported }

// MainModuleBase always fails with ErrUnsupported.
func (p *Process) MainModuleBase() (uint64, error) { return 0, ErrUnsupported }

// Close is a no-op.
func (p *Process) Close() error { return nil }
