package memory

import (
	"errors"
	"fmt"

	"github.com/joshuapare/webmap/internal/buf"
)

var (
	// ErrUnmapped is returned when an address is not backed by readable memory.
	ErrUnmapped = errors.New("memory: address not mapped")
	// ErrNullPointer is returned when a read is attempted through a zero address.
	ErrNullPointer = errors.New("memory: null pointer")
	// ErrShortRead is returned when fewer bytes than requested could be read.
	ErrShortRead = errors.New("memory: short read")
	// ErrUnsupported is returned by process readers on platforms without them.
	ErrUnsupported = errors.New("memory: not supported on this platform")
)

// PointerSize is the width of a pointer in the target (x86-64 only).
const PointerSize = 8

// Reader reads bytes from a foreign address space.
//
// ReadMemory copies len(dst) bytes starting at addr into dst and returns the
// number of bytes copied. A partial read returns the count and a non-nil error.
type Reader interface {
	ReadMemory(addr uint64, dst []byte) (int, error)
}

// ReadFull fills dst from addr or fails.
func ReadFull(r Reader, addr uint64, dst []byte) error {
	if addr == 0 {
		return ErrNullPointer
	}
	if len(dst) == 0 {
		return nil
	}
	if _, ok := buf.AddrAdd(addr, uint64(len(dst))); !ok {
		return fmt.Errorf("read %d bytes at %#x: %w", len(dst), addr, ErrUnmapped)
	}
	n, err := r.ReadMemory(addr, dst)
	if err != nil {
		return fmt.Errorf("read %d bytes at %#x: %w", len(dst), addr, err)
	}
	if n != len(dst) {
		return fmt.Errorf("read %d bytes at %#x (got %d): %w", len(dst), addr, n, ErrShortRead)
	}
	return nil
}

// Read returns n bytes starting at addr.
func Read(r Reader, addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read at %#x: negative size %d", addr, n)
	}
	b := make([]byte, n)
	if err := ReadFull(r, addr, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadPointer reads one target pointer at addr. A zero result is not an error;
// callers decide whether null is acceptable.
func ReadPointer(r Reader, addr uint64) (uint64, error) {
	var b [PointerSize]byte
	if err := ReadFull(r, addr, b[:]); err != nil {
		return 0, err
	}
	return buf.U64LE(b[:], 0)
}
