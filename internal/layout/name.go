package layout

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/webmap/internal/buf"
)

// NameRef is an interned-name reference stored inline in objects:
//
//	Offset  Size  Field
//	0x00    4     Comparison index into the name table
//	0x04    4     Number (0 = no suffix, n = suffix n-1)
type NameRef struct {
	ComparisonIndex int32
	Number          int32
}

// HasNumber reports whether the reference carries a numeric suffix.
func (r NameRef) HasNumber() bool { return r.Number != NameNoNumber }

// DecodeNameRef decodes a name reference at off.
func DecodeNameRef(b []byte, off int) (NameRef, error) {
	if !buf.Has(b, off, NameRefSize) {
		return NameRef{}, fmt.Errorf("name ref: %w (need %d bytes at %#x, have %d)", ErrTruncated, NameRefSize, off, len(b))
	}
	ci, _ := buf.I32LE(b, off+NameRefComparisonOffset)
	num, _ := buf.I32LE(b, off+NameRefNumberOffset)
	return NameRef{ComparisonIndex: ci, Number: num}, nil
}

// NameEntry is one interned string:
//
//	Offset  Size  Field
//	0x000   8     Hash chain next pointer
//	0x008   4     Index << 1 | wide flag
//	0x00C   2048  NUL-terminated text (ANSI or UTF-16)
//
// Text holds the bytes before the terminator. Terminated is false when the
// decoder ran out of input before finding one; callers that read a prefix of
// the entry use it to decide whether to fetch the rest.
type NameEntry struct {
	HashNext   uint64
	IndexField int32
	Text       []byte
	Terminated bool
}

// IsWide reports whether the text is stored as UTF-16.
func (e NameEntry) IsWide() bool { return e.IndexField&NameWideMask != 0 }

// Index returns the entry's own table index.
func (e NameEntry) Index() int32 { return e.IndexField >> NameIndexShift }

// DecodeNameEntry decodes an entry from a prefix of at least the header.
func DecodeNameEntry(b []byte) (NameEntry, error) {
	if len(b) < NameEntryTextOffset {
		return NameEntry{}, fmt.Errorf("name entry: %w (have %d, need %d)", ErrTruncated, len(b), NameEntryTextOffset)
	}
	next, _ := buf.U64LE(b, NameEntryHashNextOffset)
	idx, _ := buf.I32LE(b, NameEntryIndexOffset)

	text := b[NameEntryTextOffset:]
	if len(text) > NameEntryTextCapacity {
		text = text[:NameEntryTextCapacity]
	}
	e := NameEntry{HashNext: next, IndexField: idx}
	if e.IsWide() {
		// Wide text ends at a double NUL on an even boundary.
		for i := 0; i+1 < len(text); i += 2 {
			if text[i] == 0 && text[i+1] == 0 {
				e.Text, e.Terminated = text[:i], true
				return e, nil
			}
		}
	} else if i := bytes.IndexByte(text, 0); i >= 0 {
		e.Text, e.Terminated = text[:i], true
		return e, nil
	}
	e.Text = text
	e.Terminated = len(text) == NameEntryTextCapacity
	return e, nil
}

// NameTableHeader is the fixed-size header of the name table:
//
//	Offset  Size   Field
//	0x000   2048   Chunk pointer table (NameChunkSlots entries)
//	0x800   4      Number of elements
//	0x804   4      Number of chunks
//
// The chunk table is inline, so its address is the table address itself.
type NameTableHeader struct {
	NumElements int32
	NumChunks   int32
}

// DecodeNameTableHeader decodes the two counters that follow the chunk table.
// b must start at the table address.
func DecodeNameTableHeader(b []byte) (NameTableHeader, error) {
	if len(b) < NameTableSize {
		return NameTableHeader{}, fmt.Errorf("name table: %w (have %d, need %d)", ErrTruncated, len(b), NameTableSize)
	}
	n, _ := buf.I32LE(b, NameTableNumElementsOffset)
	c, _ := buf.I32LE(b, NameTableNumChunksOffset)
	return NameTableHeader{NumElements: n, NumChunks: c}, nil
}
