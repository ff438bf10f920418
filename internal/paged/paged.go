// Package paged implements read-only access to chunked arrays that live in a
// foreign address space.
//
// A chunked array is a table of chunk base addresses, each chunk holding a
// fixed number of fixed-size elements. Element i lives in chunk i/S at slot
// i%S. The registry never discovers its own size: callers read the element
// and chunk counts from the target's header and pass them in, and must
// re-open the registry to observe growth.
package paged

import (
	"errors"
	"fmt"
	"iter"

	"github.com/joshuapare/webmap/internal/buf"
	"github.com/joshuapare/webmap/internal/memory"
)

var (
	// ErrOutOfRange is returned for an index outside the live element range
	// or whose chunk has not been allocated.
	ErrOutOfRange = errors.New("paged: index out of range")
	// ErrInvalidHeader is returned when counts are inconsistent with the geometry.
	ErrInvalidHeader = errors.New("paged: invalid header")
	// ErrNullChunk is returned when an allocated chunk slot holds a null pointer.
	ErrNullChunk = errors.New("paged: null chunk")
)

// Geometry describes the fixed shape of a chunked array: capacity C and
// chunk size S.
type Geometry struct {
	Capacity  int
	ChunkSize int
}

// ChunkSlots returns ceil(C/S), the length of the chunk table.
func (g Geometry) ChunkSlots() int {
	return (g.Capacity + g.ChunkSize - 1) / g.ChunkSize
}

// Locate splits an index into its chunk and in-chunk slot.
func (g Geometry) Locate(i int) (chunk, slot int) {
	return i / g.ChunkSize, i % g.ChunkSize
}

// Index recombines a chunk and slot into a flat index.
func (g Geometry) Index(chunk, slot int) int {
	return chunk*g.ChunkSize + slot
}

// Header carries the values read from the target's own array header.
type Header struct {
	// ChunkTable is the address of the first chunk base pointer.
	ChunkTable uint64
	// Elements is the live element count.
	Elements int
	// Chunks is the allocated chunk count.
	Chunks int
}

// Validate reports whether h is consistent with g.
func (h Header) Validate(g Geometry) error {
	switch {
	case g.Capacity <= 0 || g.ChunkSize <= 0:
		return fmt.Errorf("%w: geometry %+v", ErrInvalidHeader, g)
	case h.Elements < 0 || h.Chunks < 0:
		return fmt.Errorf("%w: negative counts %d/%d", ErrInvalidHeader, h.Elements, h.Chunks)
	case h.Elements > g.Capacity:
		return fmt.Errorf("%w: %d elements exceed capacity %d", ErrInvalidHeader, h.Elements, g.Capacity)
	case h.Chunks > g.ChunkSlots():
		return fmt.Errorf("%w: %d chunks exceed %d slots", ErrInvalidHeader, h.Chunks, g.ChunkSlots())
	case h.Elements > 0 && h.ChunkTable == 0:
		return fmt.Errorf("%w: null chunk table", ErrInvalidHeader)
	}
	return nil
}

// DecodeFunc decodes one element from exactly elemSize bytes.
type DecodeFunc[T any] func(b []byte) (T, error)

// Registry is a read-only view over a chunked array of T.
type Registry[T any] struct {
	mem      memory.Reader
	geo      Geometry
	hdr      Header
	elemSize int
	decode   DecodeFunc[T]
}

// New returns a registry over the array described by hdr. Elements are
// elemSize bytes wide and decoded with decode.
func New[T any](mem memory.Reader, geo Geometry, hdr Header, elemSize int, decode DecodeFunc[T]) (*Registry[T], error) {
	if err := hdr.Validate(geo); err != nil {
		return nil, err
	}
	if elemSize <= 0 {
		return nil, fmt.Errorf("%w: element size %d", ErrInvalidHeader, elemSize)
	}
	if _, err := buf.CheckArrayBounds(hdr.ChunkTable, geo.ChunkSlots(), memory.PointerSize); err != nil {
		return nil, fmt.Errorf("%w: chunk table: %v", ErrInvalidHeader, err)
	}
	return &Registry[T]{mem: mem, geo: geo, hdr: hdr, elemSize: elemSize, decode: decode}, nil
}

// Len returns the live element count.
func (r *Registry[T]) Len() int { return r.hdr.Elements }

// Chunks returns the allocated chunk count.
func (r *Registry[T]) Chunks() int { return r.hdr.Chunks }

// Geometry returns the array geometry.
func (r *Registry[T]) Geometry() Geometry { return r.geo }

// Valid reports whether i addresses a live element in an allocated chunk.
func (r *Registry[T]) Valid(i int) bool {
	if i < 0 || i >= r.hdr.Elements || i >= r.geo.Capacity {
		return false
	}
	chunk, _ := r.geo.Locate(i)
	return chunk < r.hdr.Chunks && chunk < r.geo.ChunkSlots()
}

func (r *Registry[T]) chunkBase(chunk int) (uint64, error) {
	p, err := memory.ReadPointer(r.mem, r.hdr.ChunkTable+uint64(chunk)*memory.PointerSize)
	if err != nil {
		return 0, fmt.Errorf("paged: chunk %d: %w", chunk, err)
	}
	if p == 0 {
		return 0, fmt.Errorf("chunk %d: %w", chunk, ErrNullChunk)
	}
	return p, nil
}

// Get returns element i.
func (r *Registry[T]) Get(i int) (T, error) {
	var zero T
	if !r.Valid(i) {
		return zero, fmt.Errorf("%w: %d (elements=%d chunks=%d)", ErrOutOfRange, i, r.hdr.Elements, r.hdr.Chunks)
	}
	chunk, slot := r.geo.Locate(i)
	base, err := r.chunkBase(chunk)
	if err != nil {
		return zero, err
	}
	b, err := memory.Read(r.mem, base+uint64(slot*r.elemSize), r.elemSize)
	if err != nil {
		return zero, fmt.Errorf("paged: element %d: %w", i, err)
	}
	return r.decode(b)
}

// All yields every live element in ascending index order. Each allocated
// chunk is read with a single bulk read. Iteration stops silently at the
// first read error; use Walk to observe it. Each call starts again from
// index zero.
func (r *Registry[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		r.all(yield, nil)
	}
}

// Walk is All with error reporting: it returns the error that stopped the
// iteration, or nil when every element was visited or fn returned false.
func (r *Registry[T]) Walk(fn func(i int, v T) bool) error {
	var stop error
	r.all(fn, &stop)
	return stop
}

func (r *Registry[T]) all(yield func(int, T) bool, errOut *error) {
	fail := func(err error) {
		if errOut != nil {
			*errOut = err
		}
	}
	for chunk := 0; chunk < r.hdr.Chunks; chunk++ {
		first := r.geo.Index(chunk, 0)
		if first >= r.hdr.Elements {
			return
		}
		n := min(r.geo.ChunkSize, r.hdr.Elements-first)
		base, err := r.chunkBase(chunk)
		if err != nil {
			fail(err)
			return
		}
		block, err := memory.Read(r.mem, base, n*r.elemSize)
		if err != nil {
			fail(fmt.Errorf("paged: chunk %d: %w", chunk, err))
			return
		}
		for slot := 0; slot < n; slot++ {
			v, err := r.decode(block[slot*r.elemSize : (slot+1)*r.elemSize])
			if err != nil {
				fail(fmt.Errorf("paged: element %d: %w", first+slot, err))
				return
			}
			if !yield(first+slot, v) {
				return
			}
		}
	}
}
