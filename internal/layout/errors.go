package layout

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a record.
	ErrTruncated = errors.New("layout: truncated record")
	// ErrLayoutMismatch indicates a decoded header failed its sanity checks,
	// which usually means the configured offsets belong to another build.
	ErrLayoutMismatch = errors.New("layout: record does not match expected layout")
)
