package memory

import (
	"fmt"
	"math"
	"sort"

	"github.com/joshuapare/webmap/internal/buf"
)

type region struct {
	base uint64
	data []byte
}

func (r region) end() uint64 { return r.base + uint64(len(r.data)) }

// Image is a sparse address space made of non-overlapping byte regions.
// The zero value is empty; Alloc hands out addresses from DefaultImageBase.
//
// Image is not safe for concurrent mutation. Concurrent reads are fine once
// the layout is built.
type Image struct {
	regions []region
	next    uint64
}

// DefaultImageBase is where Alloc starts placing regions. It is non-zero so
// that address 0 is always unmapped, and high enough to look like a heap.
const DefaultImageBase = 0x7FF6_0000_0000

// allocAlign keeps Alloc results 16-byte aligned like a native heap.
const allocAlign = 16

// NewImage returns an empty address space.
func NewImage() *Image {
	return &Image{next: DefaultImageBase}
}

// Map places data at base. It panics on overlap or wraparound: images are
// assembled by tests and fixtures, where a bad layout is a programming error.
func (m *Image) Map(base uint64, data []byte) {
	if base == 0 {
		panic("memory: cannot map address 0")
	}
	if base > math.MaxUint64-uint64(len(data)) {
		panic(fmt.Sprintf("memory: region at %#x wraps the address space", base))
	}
	r := region{base: base, data: data}
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].base >= base })
	if i > 0 && m.regions[i-1].end() > base {
		panic(fmt.Sprintf("memory: region at %#x overlaps %#x", base, m.regions[i-1].base))
	}
	if i < len(m.regions) && r.end() > m.regions[i].base {
		panic(fmt.Sprintf("memory: region at %#x overlaps %#x", base, m.regions[i].base))
	}
	m.regions = append(m.regions, region{})
	copy(m.regions[i+1:], m.regions[i:])
	m.regions[i] = r
	if r.end() > m.next {
		m.next = r.end()
	}
}

// Alloc maps a zeroed region of size bytes after every existing region and
// returns its base address.
func (m *Image) Alloc(size int) uint64 {
	if m.next == 0 {
		m.next = DefaultImageBase
	}
	base := (m.next + allocAlign - 1) &^ (allocAlign - 1)
	m.Map(base, make([]byte, size))
	return base
}

func (m *Image) find(addr uint64) (region, bool) {
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].end() > addr })
	if i < len(m.regions) && m.regions[i].base <= addr {
		return m.regions[i], true
	}
	return region{}, false
}

// ReadMemory implements Reader. Reads may span adjacent regions; a gap stops
// the read and reports ErrUnmapped with the count copied so far.
func (m *Image) ReadMemory(addr uint64, dst []byte) (int, error) {
	n := 0
	for n < len(dst) {
		r, ok := m.find(addr + uint64(n))
		if !ok {
			return n, fmt.Errorf("%#x: %w", addr+uint64(n), ErrUnmapped)
		}
		n += copy(dst[n:], r.data[addr+uint64(n)-r.base:])
	}
	return n, nil
}

// Bytes returns the writable backing slice for [addr, addr+n).
func (m *Image) Bytes(addr uint64, n int) []byte {
	r, ok := m.find(addr)
	if !ok {
		panic(fmt.Sprintf("memory: %#x not mapped", addr))
	}
	s, ok := buf.Slice(r.data, int(addr-r.base), n)
	if !ok {
		panic(fmt.Sprintf("memory: %d bytes at %#x exceed region", n, addr))
	}
	return s
}

// PutPointer writes a target pointer at addr.
func (m *Image) PutPointer(addr, v uint64) { must(buf.PutU64LE(m.Bytes(addr, 8), 0, v)) }

// PutU32 writes a little-endian uint32 at addr.
func (m *Image) PutU32(addr uint64, v uint32) { must(buf.PutU32LE(m.Bytes(addr, 4), 0, v)) }

// PutI32 writes a little-endian int32 at addr.
func (m *Image) PutI32(addr uint64, v int32) { m.PutU32(addr, uint32(v)) }

// PutF32 writes a little-endian float32 at addr.
func (m *Image) PutF32(addr uint64, v float32) { must(buf.PutF32LE(m.Bytes(addr, 4), 0, v)) }

// PutVec3 writes three consecutive float32 values at addr.
func (m *Image) PutVec3(addr uint64, v [3]float32) {
	for i, f := range v {
		m.PutF32(addr+uint64(i*4), f)
	}
}

// PutBytes copies data to addr.
func (m *Image) PutBytes(addr uint64, data []byte) { copy(m.Bytes(addr, len(data)), data) }

func must(err error) {
	if err != nil {
		panic(err)
	}
}
