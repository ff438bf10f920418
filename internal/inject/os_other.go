//go:build !windows

package inject

// System reports ErrUnsupported outside Windows.
var System OS = unsupportedOS{}

type unsupportedOS struct{}

func (unsupportedOS) EnableDebugPrivilege() error             { return ErrUnsupported }
func (unsupportedOS) OpenProcess(pid uint32) (Process, error) { return nil, ErrUnsupported }
func (unsupportedOS) LoaderAddress() (uint64, error)          { return 0, ErrUnsupported }
