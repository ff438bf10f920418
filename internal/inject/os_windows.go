//go:build windows

package inject

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	advapi32                  = windows.NewLazySystemDLL("advapi32.dll")
	procAdjustTokenPrivileges = advapi32.NewProc("AdjustTokenPrivileges")

	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procVirtualAllocEx     = kernel32.NewProc("VirtualAllocEx")
	procVirtualFreeEx      = kernel32.NewProc("VirtualFreeEx")
	procCreateRemoteThread = kernel32.NewProc("CreateRemoteThread")
	procGetExitCodeThread  = kernel32.NewProc("GetExitCodeThread")
	procLoadLibraryW       = kernel32.NewProc("LoadLibraryW")
)

const processAccess = windows.PROCESS_CREATE_THREAD |
	windows.PROCESS_QUERY_INFORMATION |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_READ

// System is the Windows implementation of OS.
var System OS = windowsOS{}

type windowsOS struct{}

func (windowsOS) EnableDebugPrivilege() error {
	var tok windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &tok); err != nil {
		return fmt.Errorf("open token: %w", err)
	}
	defer tok.Close()
	name, err := windows.UTF16PtrFromString("SeDebugPrivilege")
	if err != nil {
		return err
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, name, &luid); err != nil {
		return fmt.Errorf("lookup privilege: %w", err)
	}
	tp := windows.Tokenprivileges{PrivilegeCount: 1}
	tp.Privileges[0] = windows.LUIDAndAttributes{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED}
	r, _, callErr := procAdjustTokenPrivileges.Call(uintptr(tok), 0, uintptr(unsafe.Pointer(&tp)), 0, 0, 0)
	return adjustResult(r != 0, callErr)
}

// adjustResult interprets AdjustTokenPrivileges. The call succeeds even when
// the privilege was not granted and reports that only through the last error.
func adjustResult(ok bool, lastErr error) error {
	if !ok {
		return fmt.Errorf("adjust privileges: %w", lastErr)
	}
	if errors.Is(lastErr, windows.ERROR_NOT_ALL_ASSIGNED) {
		return ErrPrivilegeNotHeld
	}
	return nil
}

func (windowsOS) OpenProcess(pid uint32) (Process, error) {
	h, err := windows.OpenProcess(processAccess, false, pid)
	if err != nil {
		return nil, err
	}
	return &winProcess{h: h}, nil
}

func (windowsOS) LoaderAddress() (uint64, error) {
	if err := procLoadLibraryW.Find(); err != nil {
		return 0, err
	}
	return uint64(procLoadLibraryW.Addr()), nil
}

type winProcess struct{ h windows.Handle }

func (p *winProcess) Alloc(size int) (uint64, error) {
	r, _, err := procVirtualAllocEx.Call(uintptr(p.h), 0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_EXECUTE_READWRITE)
	if r == 0 {
		return 0, err
	}
	return uint64(r), nil
}

func (p *winProcess) Write(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var n uintptr
	if err := windows.WriteProcessMemory(p.h, uintptr(addr), &data[0], uintptr(len(data)), &n); err != nil {
		return err
	}
	if int(n) != len(data) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	return nil
}

func (p *winProcess) StartThread(entry uint64) (Thread, error) {
	r, _, err := procCreateRemoteThread.Call(uintptr(p.h), 0, 0, uintptr(entry), 0, 0, 0)
	if r == 0 {
		return nil, err
	}
	return &winThread{h: windows.Handle(r)}, nil
}

func (p *winProcess) Free(addr uint64) error {
	r, _, err := procVirtualFreeEx.Call(uintptr(p.h), uintptr(addr), 0, windows.MEM_RELEASE)
	if r == 0 {
		return err
	}
	return nil
}

func (p *winProcess) Close() error { return windows.CloseHandle(p.h) }

type winThread struct{ h windows.Handle }

func (t *winThread) Wait(timeout time.Duration) (bool, error) {
	r, err := windows.WaitForSingleObject(t.h, uint32(timeout/time.Millisecond))
	switch {
	case err != nil:
		return false, err
	case r == windows.WAIT_OBJECT_0:
		return true, nil
	case r == uint32(windows.WAIT_TIMEOUT):
		return false, nil
	}
	return false, errors.New("unexpected wait result")
}

func (t *winThread) ExitCode() (uint32, error) {
	var code uint32
	r, _, err := procGetExitCodeThread.Call(uintptr(t.h), uintptr(unsafe.Pointer(&code)))
	if r == 0 {
		return 0, err
	}
	return code, nil
}

func (t *winThread) Close() error { return windows.CloseHandle(t.h) }
