//go:build windows

package readiness

import (
	"errors"

	"golang.org/x/sys/windows"
)

// System is the Windows kernel event namespace.
var System Namespace = systemNamespace{}

type systemNamespace struct{}

type systemEvent struct{ h windows.Handle }

func (systemNamespace) Create(name string) (Event, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateEvent(nil, 1, 0, p)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, err
	}
	return systemEvent{h: h}, nil
}

func (systemNamespace) Open(name string) (Handle, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenEvent(windows.SYNCHRONIZE, false, p)
	if err != nil {
		if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return nil, ErrAbsent
		}
		return nil, err
	}
	return systemEvent{h: h}, nil
}

func (e systemEvent) Set() error   { return windows.SetEvent(e.h) }
func (e systemEvent) Reset() error { return windows.ResetEvent(e.h) }
func (e systemEvent) Close() error { return windows.CloseHandle(e.h) }

func (e systemEvent) IsSet() (bool, error) {
	r, err := windows.WaitForSingleObject(e.h, 0)
	if err != nil {
		return false, err
	}
	switch r {
	case windows.WAIT_OBJECT_0:
		return true, nil
	case uint32(windows.WAIT_TIMEOUT):
		return false, nil
	}
	return false, errors.New("readiness: unexpected wait result")
}
