// Package buf contains bounds-checked little-endian field readers used to
// decode foreign memory that has been copied into a local byte slice.
//
// Every accessor takes the buffer and a field offset and fails with
// ErrBounds instead of panicking when the field does not fit.
package buf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBounds indicates a field read beyond the end of its buffer.
var ErrBounds = errors.New("buf: field out of bounds")

func field(b []byte, off, n int) ([]byte, error) {
	s, ok := Slice(b, off, n)
	if !ok {
		return nil, fmt.Errorf("%w: off=%#x size=%d len=%d", ErrBounds, off, n, len(b))
	}
	return s, nil
}

// U8 reads a byte at off.
func U8(b []byte, off int) (uint8, error) {
	s, err := field(b, off, 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

// Bool reads a one-byte boolean at off. Any non-zero byte is true.
func Bool(b []byte, off int) (bool, error) {
	v, err := U8(b, off)
	return v != 0, err
}

// U16LE reads a little-endian uint16 at off.
func U16LE(b []byte, off int) (uint16, error) {
	s, err := field(b, off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(s), nil
}

// U32LE reads a little-endian uint32 at off.
func U32LE(b []byte, off int) (uint32, error) {
	s, err := field(b, off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s), nil
}

// I32LE reads a little-endian int32 at off.
func I32LE(b []byte, off int) (int32, error) {
	v, err := U32LE(b, off)
	return int32(v), err
}

// U64LE reads a little-endian uint64 at off.
func U64LE(b []byte, off int) (uint64, error) {
	s, err := field(b, off, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s), nil
}

// F32LE reads a little-endian IEEE-754 float32 at off.
func F32LE(b []byte, off int) (float32, error) {
	v, err := U32LE(b, off)
	return math.Float32frombits(v), err
}

// Vec3 reads three consecutive float32 values at off.
func Vec3(b []byte, off int) ([3]float32, error) {
	var out [3]float32
	s, err := field(b, off, 12)
	if err != nil {
		return out, err
	}
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(s[i*4:]))
	}
	return out, nil
}

// PutU64LE writes v at off. Used to patch machine-code templates.
func PutU64LE(b []byte, off int, v uint64) error {
	s, err := field(b, off, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(s, v)
	return nil
}

// PutU32LE writes v at off.
func PutU32LE(b []byte, off int, v uint32) error {
	s, err := field(b, off, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s, v)
	return nil
}

// PutF32LE writes v at off.
func PutF32LE(b []byte, off int, v float32) error {
	return PutU32LE(b, off, math.Float32bits(v))
}
