package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// AddrAdd adds a byte offset to a foreign address, returning ok = false on wraparound.
func AddrAdd(addr uint64, off uint64) (uint64, bool) {
	if addr > math.MaxUint64-off {
		return 0, false
	}
	return addr + off, true
}

// CheckArrayBounds validates that count elements of elementSize bytes can be
// addressed starting at a foreign base address. It returns the total byte size
// of the array.
//
//	size, err := buf.CheckArrayBounds(base, int(count), layout.PointerSize)
//	if err != nil {
//	    return fmt.Errorf("representations: %w", err)
//	}
func CheckArrayBounds(base uint64, count, elementSize int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if elementSize <= 0 {
		return 0, fmt.Errorf("invalid element size: %d", elementSize)
	}
	if count > math.MaxInt/elementSize {
		return 0, fmt.Errorf("overflow: count=%d * elemSize=%d", count, elementSize)
	}
	total := count * elementSize
	if _, ok := AddrAdd(base, uint64(total)); !ok {
		return 0, fmt.Errorf("overflow: base=%#x + size=%d", base, total)
	}
	return total, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
