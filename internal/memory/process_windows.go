//go:build windows

package memory

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Process reads the memory of a live process with ReadProcessMemory.
type Process struct {
	h     windows.Handle
	pid   uint32
	owned bool
}

// CurrentProcess returns a reader for the calling process. Reading our own
// address space through ReadProcessMemory turns a dangling foreign pointer
// into an error instead of an access violation.
func CurrentProcess() *Process {
	return &Process{h: windows.CurrentProcess(), pid: windows.GetCurrentProcessId()}
}

// OpenProcess opens pid for reading.
func OpenProcess(pid uint32) (*Process, error) {
	h, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, pid)
	if err != nil {
		return nil, fmt.Errorf("memory: open process %d: %w", pid, err)
	}
	return &Process{h: h, pid: pid, owned: true}, nil
}

// PID returns the process id.
func (p *Process) PID() uint32 { return p.pid }

// ReadMemory implements Reader.
func (p *Process) ReadMemory(addr uint64, dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(p.h, uintptr(addr), &dst[0], uintptr(len(dst)), &n)
	if err != nil {
		if n > 0 {
			return int(n), fmt.Errorf("%#x: %w", addr, ErrShortRead)
		}
		return 0, fmt.Errorf("%#x: %w (%v)", addr, ErrUnmapped, err)
	}
	return int(n), nil
}

// MainModuleBase returns the load address of the process executable.
func (p *Process) MainModuleBase() (uint64, error) {
	var mod windows.Handle
	var needed uint32
	if err := windows.EnumProcessModules(p.h, &mod, uint32(unsafe.Sizeof(mod)), &needed); err != nil {
		return 0, fmt.Errorf("memory: enumerate modules of %d: %w", p.pid, err)
	}
	var info windows.ModuleInfo
	if err := windows.GetModuleInformation(p.h, mod, &info, uint32(unsafe.Sizeof(info))); err != nil {
		return 0, fmt.Errorf("memory: module information of %d: %w", p.pid, err)
	}
	return uint64(info.BaseOfDll), nil
}

// Close releases the process handle. Closing CurrentProcess is a no-op.
func (p *Process) Close() error {
	if !p.owned || p.h == 0 {
		return nil
	}
	err := windows.CloseHandle(p.h)
	p.h = 0
	return err
}
