// Package procfind locates a running process by executable name.
package procfind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("procfind: process not found")
	ErrUnsupported = errors.New("procfind: unsupported platform")
)

// Entry is one running process.
type Entry struct {
	PID  uint32
	Exe  string
	PPID uint32
}

// Match returns the first entry whose executable name equals name, ignoring
// case as the Windows file system does.
func Match(entries []Entry, name string) (Entry, error) {
	for _, e := range entries {
		if strings.EqualFold(e.Exe, name) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Find returns the pid of the first process named name.
func Find(name string) (uint32, error) {
	entries, err := List()
	if err != nil {
		return 0, err
	}
	e, err := Match(entries, name)
	if err != nil {
		return 0, err
	}
	return e.PID, nil
}
