package inject

import (
	"errors"
	"fmt"
)

// Result classifies the outcome of an injection.
type Result int

const (
	Success Result = iota
	OpenFailed
	AllocFailed
	WriteFailed
	LaunchFailed
	Timeout
	LoaderFailed
)

var resultNames = [...]string{
	Success:      "success",
	OpenFailed:   "process open failed",
	AllocFailed:  "allocation failed",
	WriteFailed:  "write failed",
	LaunchFailed: "thread launch failed",
	Timeout:      "timeout",
	LoaderFailed: "loader reported failure",
}

func (r Result) String() string {
	if r >= 0 && int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

var (
	// ErrTimeout is wrapped by a Timeout error.
	ErrTimeout = errors.New("inject: remote thread did not finish in time")
	// ErrPathTooLong is returned when the path and stub do not fit the remote page.
	ErrPathTooLong = errors.New("inject: module path too long")
	// ErrPrivilegeNotHeld is returned when the account may not enable the
	// debugging privilege.
	ErrPrivilegeNotHeld = errors.New("inject: debug privilege not held")
	// ErrUnsupported is returned by the OS layer outside Windows.
	ErrUnsupported = errors.New("inject: unsupported platform")
)

// Error is a failed injection.
type Error struct {
	Result Result
	// Op names the step that failed.
	Op string
	// Code is the remote thread exit code for LoaderFailed.
	Code uint32
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Result == LoaderFailed:
		return fmt.Sprintf("inject: %s: %s (code=%d)", e.Op, e.Result, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("inject: %s: %s: %v", e.Op, e.Result, e.Err)
	}
	return fmt.Sprintf("inject: %s: %s", e.Op, e.Result)
}

func (e *Error) Unwrap() error { return e.Err }

// ResultOf extracts the Result of an Inject error. nil maps to Success.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Result
	}
	return LaunchFailed
}
