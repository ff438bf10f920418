// Package names resolves interned-name references against the target's
// chunked name table.
package names

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/webmap/internal/buf"
	"github.com/joshuapare/webmap/internal/layout"
	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/paged"
)

// WidePlaceholder is returned for entries stored as UTF-16. Object names the
// extractor looks for are always narrow, so wide text is not decoded.
const WidePlaceholder = "**WIDESTR**"

// ErrInvalidName is returned when a reference does not address a live entry.
var ErrInvalidName = errors.New("names: invalid name")

// prefixSize is how much of an entry is read first. Most names are short, so
// the full 2 KiB entry is only fetched when no terminator shows up here.
const prefixSize = layout.NameEntryTextOffset + 64

// Geometry is the fixed shape of the name table.
var Geometry = paged.Geometry{Capacity: layout.NameTableCapacity, ChunkSize: layout.NameChunkSize}

// Cache memoizes entry text by table index. Entries are append-only in the
// target, so a cached value never goes stale while the target lives. A Cache
// is safe for concurrent use and may be shared by successive Resolvers.
type Cache struct {
	m sync.Map // int32 -> string
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Resolver turns name references into text.
type Resolver struct {
	mem   memory.Reader
	table uint64
	hdr   layout.NameTableHeader
	reg   *paged.Registry[uint64]
	cache *Cache
}

// Open reads the name table header at tableAddr and returns a resolver over
// its current contents. cache may be nil.
func Open(mem memory.Reader, tableAddr uint64, cache *Cache) (*Resolver, error) {
	b, err := memory.Read(mem, tableAddr, layout.NameTableSize)
	if err != nil {
		return nil, fmt.Errorf("names: read table header: %w", err)
	}
	hdr, err := layout.DecodeNameTableHeader(b)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	if err := layout.CheckNameTable(hdr); err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	reg, err := paged.New(mem, Geometry, paged.Header{
		ChunkTable: tableAddr + layout.NameTableChunksOffset,
		Elements:   int(hdr.NumElements),
		Chunks:     int(hdr.NumChunks),
	}, layout.PointerSize, decodePointer)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Resolver{mem: mem, table: tableAddr, hdr: hdr, reg: reg, cache: cache}, nil
}

func decodePointer(b []byte) (uint64, error) { return buf.U64LE(b, 0) }

// Address returns the table address.
func (r *Resolver) Address() uint64 { return r.table }

// Header returns the counters read when the resolver was opened.
func (r *Resolver) Header() layout.NameTableHeader { return r.hdr }

// Len returns the number of entries.
func (r *Resolver) Len() int { return r.reg.Len() }

// Entry returns the plain text of entry index, without any suffix.
func (r *Resolver) Entry(index int32) (string, error) {
	if v, ok := r.cache.m.Load(index); ok {
		return v.(string), nil
	}
	ptr, err := r.reg.Get(int(index))
	if err != nil {
		return "", fmt.Errorf("%w: index %d: %w", ErrInvalidName, index, err)
	}
	if ptr == 0 {
		return "", fmt.Errorf("%w: index %d: null entry", ErrInvalidName, index)
	}
	e, err := r.readEntry(ptr)
	if err != nil {
		return "", fmt.Errorf("%w: index %d: %w", ErrInvalidName, index, err)
	}
	text := WidePlaceholder
	if !e.IsWide() {
		text, err = decodeNarrow(e.Text)
		if err != nil {
			return "", fmt.Errorf("%w: index %d: %w", ErrInvalidName, index, err)
		}
	}
	r.cache.m.Store(index, text)
	return text, nil
}

func (r *Resolver) readEntry(addr uint64) (layout.NameEntry, error) {
	b, err := memory.Read(r.mem, addr, prefixSize)
	if err != nil {
		return layout.NameEntry{}, err
	}
	e, err := layout.DecodeNameEntry(b)
	if err != nil || e.Terminated {
		return e, err
	}
	b, err = memory.Read(r.mem, addr, layout.NameEntrySize)
	if err != nil {
		return layout.NameEntry{}, err
	}
	return layout.DecodeNameEntry(b)
}

// decodeNarrow converts ANSI entry text to UTF-8.
func decodeNarrow(b []byte) (string, error) {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode name: %w", err)
	}
	return string(out), nil
}

// Resolve renders ref as text. A reference with a number n gets the suffix
// "_<n-1>"; the target stores suffixes one higher than it displays them.
func (r *Resolver) Resolve(ref layout.NameRef) (string, error) {
	text, err := r.Entry(ref.ComparisonIndex)
	if err != nil {
		return "", err
	}
	if !ref.HasNumber() {
		return text, nil
	}
	return text + "_" + strconv.Itoa(int(ref.Number)-1), nil
}

// Equals resolves ref and compares it with literal. It builds a string per
// call, which is fine for manager discovery but not for per-entity work.
// An unresolvable reference equals nothing.
func (r *Resolver) Equals(ref layout.NameRef, literal string) bool {
	s, err := r.Resolve(ref)
	return err == nil && s == literal
}
