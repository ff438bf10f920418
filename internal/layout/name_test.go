package layout

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameEntryBytes(index int32, text []byte) []byte {
	b := make([]byte, NameEntrySize)
	binary.LittleEndian.PutUint32(b[NameEntryIndexOffset:], uint32(index))
	copy(b[NameEntryTextOffset:], text)
	return b
}

func TestDecodeNameEntry_Narrow(t *testing.T) {
	e, err := DecodeNameEntry(nameEntryBytes(42<<NameIndexShift, []byte("MapManager")))
	require.NoError(t, err)
	assert.False(t, e.IsWide())
	assert.Equal(t, int32(42), e.Index())
	assert.Equal(t, "MapManager", string(e.Text))
	assert.True(t, e.Terminated)
}

func TestDecodeNameEntry_Wide(t *testing.T) {
	// "Ab" in UTF-16LE followed by a terminator.
	e, err := DecodeNameEntry(nameEntryBytes(7<<NameIndexShift|NameWideMask, []byte{'A', 0, 'b', 0}))
	require.NoError(t, err)
	assert.True(t, e.IsWide())
	assert.Equal(t, []byte{'A', 0, 'b', 0}, e.Text)
	assert.True(t, e.Terminated)
}

func TestDecodeNameEntry_PrefixWithoutTerminator(t *testing.T) {
	b := nameEntryBytes(0, []byte("LongerThanThePrefix"))
	e, err := DecodeNameEntry(b[:NameEntryTextOffset+6])
	require.NoError(t, err)
	assert.Equal(t, "Longer", string(e.Text))
	assert.False(t, e.Terminated)
}

func TestDecodeNameEntry_FullBufferWithoutTerminator(t *testing.T) {
	b := make([]byte, NameEntryTextOffset+NameEntryTextCapacity)
	for i := NameEntryTextOffset; i < len(b); i++ {
		b[i] = 'x'
	}
	e, err := DecodeNameEntry(b)
	require.NoError(t, err)
	assert.Len(t, e.Text, NameEntryTextCapacity)
	assert.True(t, e.Terminated)
}

func TestDecodeNameEntry_Truncated(t *testing.T) {
	_, err := DecodeNameEntry(make([]byte, NameEntryTextOffset-1))
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestDecodeNameRef(t *testing.T) {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[8:], 1234)
	binary.LittleEndian.PutUint32(b[12:], 3)
	ref, err := DecodeNameRef(b, 8)
	require.NoError(t, err)
	assert.Equal(t, NameRef{ComparisonIndex: 1234, Number: 3}, ref)
	assert.True(t, ref.HasNumber())

	_, err = DecodeNameRef(b, 12)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeNameTableHeader(t *testing.T) {
	b := make([]byte, NameTableSize)
	binary.LittleEndian.PutUint32(b[NameTableNumElementsOffset:], 20000)
	binary.LittleEndian.PutUint32(b[NameTableNumChunksOffset:], 2)
	h, err := DecodeNameTableHeader(b)
	require.NoError(t, err)
	assert.Equal(t, NameTableHeader{NumElements: 20000, NumChunks: 2}, h)
	require.NoError(t, CheckNameTable(h))

	_, err = DecodeNameTableHeader(b[:NameTableSize-1])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestCheckNameTable(t *testing.T) {
	tests := []struct {
		name string
		h    NameTableHeader
		ok   bool
	}{
		{"empty", NameTableHeader{}, true},
		{"exact chunk", NameTableHeader{NumElements: NameChunkSize, NumChunks: 1}, true},
		{"negative", NameTableHeader{NumElements: -1}, false},
		{"too few chunks", NameTableHeader{NumElements: NameChunkSize + 1, NumChunks: 1}, false},
		{"too many chunks", NameTableHeader{NumElements: 1, NumChunks: NameChunkSlots + 1}, false},
		{"over capacity", NameTableHeader{NumElements: NameTableCapacity + 1, NumChunks: NameChunkSlots}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNameTable(tt.h)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrLayoutMismatch)
			}
		})
	}
}
