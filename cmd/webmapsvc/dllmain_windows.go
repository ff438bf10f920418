//go:build windows

package main

import (
	"context"
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/readiness"
)

// anchor is any address inside this module.
var anchor byte

func init() {
	go start()
}

func start() {
	time.Sleep(startupDelay)

	proc := memory.CurrentProcess()
	base, err := proc.MainModuleBase()
	if err != nil {
		alert("Unable to locate the target module: "+err.Error(), true)
		return
	}
	// The Go runtime cannot be unloaded: after run returns the module stays
	// mapped and idle.
	run(context.Background(), env{
		Dir:       moduleDir(),
		Mem:       proc,
		Base:      base,
		Namespace: readiness.System,
		Alert:     alert,
	})
}

func moduleDir() string {
	var h windows.Handle
	flags := uint32(windows.GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS | windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT)
	if err := windows.GetModuleHandleEx(flags, (*uint16)(unsafe.Pointer(&anchor)), &h); err != nil {
		return "."
	}
	buf := make([]uint16, windows.MAX_LONG_PATH)
	n, err := windows.GetModuleFileName(h, &buf[0], uint32(len(buf)))
	if err != nil || n == 0 {
		return "."
	}
	return filepath.Dir(windows.UTF16ToString(buf[:n]))
}

func alert(msg string, isError bool) {
	icon := uint32(windows.MB_ICONWARNING)
	if isError {
		icon = windows.MB_ICONERROR
	}
	text, _ := windows.UTF16PtrFromString(msg)
	title, _ := windows.UTF16PtrFromString(moduleTitle)
	windows.MessageBox(0, text, title, icon)
}
