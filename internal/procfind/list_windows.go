//go:build windows

package procfind

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// List snapshots the running processes.
func List() ([]Entry, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("procfind: snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	if err := windows.Process32First(snap, &pe); err != nil {
		return nil, fmt.Errorf("procfind: first process: %w", err)
	}
	var out []Entry
	for {
		out = append(out, Entry{
			PID:  pe.ProcessID,
			Exe:  windows.UTF16ToString(pe.ExeFile[:]),
			PPID: pe.ParentProcessID,
		})
		if err := windows.Process32Next(snap, &pe); err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				return out, nil
			}
			return out, fmt.Errorf("procfind: next process: %w", err)
		}
	}
}
