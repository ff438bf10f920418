package layout

import (
	"fmt"

	"github.com/joshuapare/webmap/internal/buf"
)

// ObjectsHeader is the chunked object array embedded in the global object
// array at ObjectArrayObjectsOffset:
//
//	Offset  Size  Field
//	0x00    8     Pointer to chunk pointer table
//	0x08    8     Preallocated objects (unused)
//	0x10    4     Max elements
//	0x14    4     Number of elements
//	0x18    4     Max chunks
//	0x1C    4     Number of chunks
type ObjectsHeader struct {
	ChunkTable  uint64
	Prealloc    uint64
	MaxElements int32
	NumElements int32
	MaxChunks   int32
	NumChunks   int32
}

// DecodeObjectsHeader decodes the chunked object array header. b must start
// at the embedded array, not at the global object array.
func DecodeObjectsHeader(b []byte) (ObjectsHeader, error) {
	if len(b) < ObjectsHeaderSize {
		return ObjectsHeader{}, fmt.Errorf("objects header: %w (have %d, need %d)", ErrTruncated, len(b), ObjectsHeaderSize)
	}
	var h ObjectsHeader
	h.ChunkTable, _ = buf.U64LE(b, ObjectsChunkTableOffset)
	h.Prealloc, _ = buf.U64LE(b, ObjectsPreallocOffset)
	h.MaxElements, _ = buf.I32LE(b, ObjectsMaxElementsOffset)
	h.NumElements, _ = buf.I32LE(b, ObjectsNumElementsOffset)
	h.MaxChunks, _ = buf.I32LE(b, ObjectsMaxChunksOffset)
	h.NumChunks, _ = buf.I32LE(b, ObjectsNumChunksOffset)
	return h, nil
}

// ObjectItem is one slot of the object table:
//
//	Offset  Size  Field
//	0x00    8     Object pointer (0 = free slot)
//	0x08    4     Item flags
//	0x0C    4     Cluster root index
//	0x10    4     Serial number
//	0x14    4     Padding
type ObjectItem struct {
	Object      uint64
	Flags       int32
	ClusterRoot int32
	Serial      int32
}

// DecodeObjectItem decodes one object table slot.
func DecodeObjectItem(b []byte) (ObjectItem, error) {
	if len(b) < ObjectItemSize {
		return ObjectItem{}, fmt.Errorf("object item: %w (have %d, need %d)", ErrTruncated, len(b), ObjectItemSize)
	}
	var it ObjectItem
	it.Object, _ = buf.U64LE(b, ObjectItemObjectOffset)
	it.Flags, _ = buf.I32LE(b, ObjectItemFlagsOffset)
	it.ClusterRoot, _ = buf.I32LE(b, ObjectItemClusterRootOffset)
	it.Serial, _ = buf.I32LE(b, ObjectItemSerialOffset)
	return it, nil
}

// ObjectBase is the header shared by every object:
//
//	Offset  Size  Field
//	0x00    8     Virtual table
//	0x08    4     Object flags
//	0x0C    4     Internal index
//	0x10    8     Class pointer
//	0x18    8     Name reference
//	0x20    8     Outer object pointer
type ObjectBase struct {
	VTable        uint64
	Flags         int32
	InternalIndex int32
	Class         uint64
	Name          NameRef
	Outer         uint64
}

// DecodeObjectBase decodes the object header from the first ObjectBaseSize bytes of b.
func DecodeObjectBase(b []byte) (ObjectBase, error) {
	if len(b) < ObjectBaseSize {
		return ObjectBase{}, fmt.Errorf("object: %w (have %d, need %d)", ErrTruncated, len(b), ObjectBaseSize)
	}
	var o ObjectBase
	o.VTable, _ = buf.U64LE(b, ObjectVTableOffset)
	o.Flags, _ = buf.I32LE(b, ObjectFlagsOffset)
	o.InternalIndex, _ = buf.I32LE(b, ObjectInternalIndexOffset)
	o.Class, _ = buf.U64LE(b, ObjectClassOffset)
	name, err := DecodeNameRef(b, ObjectNameOffset)
	if err != nil {
		return ObjectBase{}, fmt.Errorf("object: %w", err)
	}
	o.Name = name
	o.Outer, _ = buf.U64LE(b, ObjectOuterOffset)
	return o, nil
}

// DynArray is a growable array header: data pointer, count, capacity.
type DynArray struct {
	Data uint64
	Num  int32
	Max  int32
}

// DecodeDynArray decodes an array header at off.
func DecodeDynArray(b []byte, off int) (DynArray, error) {
	if !buf.Has(b, off, DynArraySize) {
		return DynArray{}, fmt.Errorf("array: %w (need %d bytes at %#x, have %d)", ErrTruncated, DynArraySize, off, len(b))
	}
	var a DynArray
	a.Data, _ = buf.U64LE(b, off+DynArrayDataOffset)
	a.Num, _ = buf.I32LE(b, off+DynArrayNumOffset)
	a.Max, _ = buf.I32LE(b, off+DynArrayMaxOffset)
	return a, nil
}
