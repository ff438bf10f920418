//go:build !windows

package procfind

// List is only implemented on Windows.
func List() ([]Entry, error) { return nil, ErrUnsupported }
