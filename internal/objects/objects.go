// Package objects scans the target's global object table.
package objects

import (
	"errors"
	"fmt"
	"iter"

	"github.com/joshuapare/webmap/internal/layout"
	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/names"
	"github.com/joshuapare/webmap/internal/paged"
)

// ErrNotFound is returned by FindByName when no live object has the name.
var ErrNotFound = errors.New("objects: not found")

// Record is one live object. The target owns the memory; a Record is a copy
// of its header taken at scan time.
type Record struct {
	// Index is the slot in the object table.
	Index int
	// Address identifies the object in the target.
	Address uint64
	// ItemFlags and Serial come from the table slot.
	ItemFlags int32
	Serial    int32
	// Flags, InternalIndex, Class, Name and Outer come from the object header.
	Flags         int32
	InternalIndex int32
	Class         uint64
	Name          layout.NameRef
	Outer         uint64
}

// Registry is a view over the object table as of Open.
type Registry struct {
	mem   memory.Reader
	names *names.Resolver
	hdr   layout.ObjectsHeader
	items *paged.Registry[layout.ObjectItem]
}

// Open reads the object array header at arrayAddr (the global object array,
// not the embedded chunked array) and validates it.
func Open(mem memory.Reader, arrayAddr uint64, resolver *names.Resolver) (*Registry, error) {
	b, err := memory.Read(mem, arrayAddr+layout.ObjectArrayObjectsOffset, layout.ObjectsHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("objects: read header: %w", err)
	}
	hdr, err := layout.DecodeObjectsHeader(b)
	if err != nil {
		return nil, fmt.Errorf("objects: %w", err)
	}
	if err := layout.CheckObjects(hdr); err != nil {
		return nil, fmt.Errorf("objects: %w", err)
	}
	geo := paged.Geometry{Capacity: int(hdr.MaxElements), ChunkSize: layout.ObjectChunkSize}
	items, err := paged.New(mem, geo, paged.Header{
		ChunkTable: hdr.ChunkTable,
		Elements:   int(hdr.NumElements),
		Chunks:     int(hdr.NumChunks),
	}, layout.ObjectItemSize, layout.DecodeObjectItem)
	if err != nil {
		return nil, fmt.Errorf("objects: %w", err)
	}
	return &Registry{mem: mem, names: resolver, hdr: hdr, items: items}, nil
}

// Header returns the table header read by Open.
func (r *Registry) Header() layout.ObjectsHeader { return r.hdr }

// Len returns the number of table slots, including empty ones.
func (r *Registry) Len() int { return r.items.Len() }

// Names returns the resolver used by FindByName.
func (r *Registry) Names() *names.Resolver { return r.names }

func (r *Registry) record(i int, it layout.ObjectItem) (Record, error) {
	b, err := memory.Read(r.mem, it.Object, layout.ObjectBaseSize)
	if err != nil {
		return Record{}, err
	}
	base, err := layout.DecodeObjectBase(b)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Index:         i,
		Address:       it.Object,
		ItemFlags:     it.Flags,
		Serial:        it.Serial,
		Flags:         base.Flags,
		InternalIndex: base.InternalIndex,
		Class:         base.Class,
		Name:          base.Name,
		Outer:         base.Outer,
	}, nil
}

// Scan yields every live object in ascending slot order, skipping empty
// slots. Objects whose header cannot be read (freed while scanning) are
// skipped too. A failure to read the table itself is yielded once as a
// non-nil error and ends the scan. Every call rescans from slot zero.
func (r *Registry) Scan() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		stopped := false
		err := r.items.Walk(func(i int, it layout.ObjectItem) bool {
			if it.Object == 0 {
				return true
			}
			rec, err := r.record(i, it)
			if err != nil {
				return true
			}
			if !yield(rec, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(Record{}, fmt.Errorf("objects: scan: %w", err))
		}
	}
}

// Get returns the live object in slot i.
func (r *Registry) Get(i int) (Record, error) {
	it, err := r.items.Get(i)
	if err != nil {
		return Record{}, fmt.Errorf("objects: %w", err)
	}
	if it.Object == 0 {
		return Record{}, fmt.Errorf("objects: slot %d: %w", i, ErrNotFound)
	}
	rec, err := r.record(i, it)
	if err != nil {
		return Record{}, fmt.Errorf("objects: slot %d: %w", i, err)
	}
	return rec, nil
}

// FindByName returns the first live object whose resolved name equals name.
// The scan is linear; it runs only when the caller has no cached reference.
func (r *Registry) FindByName(name string) (Record, error) {
	for rec, err := range r.Scan() {
		if err != nil {
			return Record{}, err
		}
		if r.names.Equals(rec.Name, name) {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}
