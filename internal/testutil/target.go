// Package testutil builds fake target address spaces for tests.
//
// A Target lays out a module image, a name table and an object table in a
// memory.Image exactly as the real target does, so registries and the
// extractor can be exercised without a live process:
//
//	tgt := testutil.NewTarget(t)
//	mgr := tgt.AddObject("MapManager", 0, layout.MapManagerSize)
//	reg, _ := objects.Open(tgt.Img, tgt.ObjectArray(), resolver)
package testutil

import (
	"testing"
	"unicode/utf16"

	"github.com/joshuapare/webmap/internal/layout"
	"github.com/joshuapare/webmap/internal/memory"
)

// Offsets of the two roots inside the fake module image.
const (
	NameTableOffset   = 0x100
	ObjectTableOffset = 0x200
	moduleSize        = 0x1000
)

// Target is a fake target process address space.
type Target struct {
	t   testing.TB
	Img *memory.Image
	// Base is the fake module load address.
	Base uint64

	nameTable  uint64
	nameChunk  uint64
	nameIndex  map[string]int32
	numNames   int32
	objArray   uint64
	objChunk   uint64
	numObjects int32
}

// NewTarget returns a target with an empty object table and a name table
// holding "None" at index 0.
func NewTarget(t testing.TB) *Target {
	t.Helper()
	img := memory.NewImage()
	tgt := &Target{t: t, Img: img, nameIndex: map[string]int32{}}
	tgt.Base = img.Alloc(moduleSize)

	// Name table: header reachable through a pointer stored in the module.
	tgt.nameTable = img.Alloc(layout.NameTableSize)
	tgt.nameChunk = img.Alloc(layout.NameChunkSize * layout.PointerSize)
	img.PutPointer(tgt.nameTable, tgt.nameChunk)
	img.PutI32(tgt.nameTable+layout.NameTableNumChunksOffset, 1)
	img.PutPointer(tgt.Base+NameTableOffset, tgt.nameTable)

	// Object table: embedded in the module, one chunk.
	tgt.objArray = tgt.Base + ObjectTableOffset
	objects := tgt.objArray + layout.ObjectArrayObjectsOffset
	chunkTable := img.Alloc(layout.PointerSize)
	tgt.objChunk = img.Alloc(layout.ObjectChunkSize * layout.ObjectItemSize)
	img.PutPointer(chunkTable, tgt.objChunk)
	img.PutPointer(objects+layout.ObjectsChunkTableOffset, chunkTable)
	img.PutI32(objects+layout.ObjectsMaxElementsOffset, layout.ObjectChunkSize)
	img.PutI32(objects+layout.ObjectsMaxChunksOffset, 1)
	img.PutI32(objects+layout.ObjectsNumChunksOffset, 1)

	tgt.AddName("None")
	return tgt
}

// NameTable returns the address of the name table header.
func (tgt *Target) NameTable() uint64 { return tgt.nameTable }

// ObjectArray returns the address of the global object array.
func (tgt *Target) ObjectArray() uint64 { return tgt.objArray }

// NumObjects returns the number of object slots, including null ones.
func (tgt *Target) NumObjects() int { return int(tgt.numObjects) }

func (tgt *Target) putName(entry uint64) int32 {
	idx := tgt.numNames
	if idx >= layout.NameChunkSize {
		tgt.t.Fatalf("testutil: name table chunk full")
	}
	tgt.Img.PutPointer(tgt.nameChunk+uint64(idx)*layout.PointerSize, entry)
	tgt.numNames++
	tgt.Img.PutI32(tgt.nameTable+layout.NameTableNumElementsOffset, tgt.numNames)
	return idx
}

// AddName interns a narrow name and returns its index. Repeated names share
// an entry.
func (tgt *Target) AddName(s string) int32 {
	if idx, ok := tgt.nameIndex[s]; ok {
		return idx
	}
	entry := tgt.Img.Alloc(layout.NameEntrySize)
	idx := tgt.putName(entry)
	tgt.Img.PutI32(entry+layout.NameEntryIndexOffset, idx<<layout.NameIndexShift)
	tgt.Img.PutBytes(entry+layout.NameEntryTextOffset, []byte(s))
	tgt.nameIndex[s] = idx
	return idx
}

// AddRawName interns raw narrow bytes without deduplication.
func (tgt *Target) AddRawName(b []byte) int32 {
	entry := tgt.Img.Alloc(layout.NameEntrySize)
	idx := tgt.putName(entry)
	tgt.Img.PutI32(entry+layout.NameEntryIndexOffset, idx<<layout.NameIndexShift)
	tgt.Img.PutBytes(entry+layout.NameEntryTextOffset, b)
	return idx
}

// AddWideName interns a UTF-16 name and returns its index.
func (tgt *Target) AddWideName(s string) int32 {
	entry := tgt.Img.Alloc(layout.NameEntrySize)
	idx := tgt.putName(entry)
	tgt.Img.PutI32(entry+layout.NameEntryIndexOffset, idx<<layout.NameIndexShift|layout.NameWideMask)
	tgt.Img.PutBytes(entry+layout.NameEntryTextOffset, encodeUTF16(s))
	return idx
}

// AddNullName appends a name slot that points nowhere.
func (tgt *Target) AddNullName() int32 { return tgt.putName(0) }

func (tgt *Target) putItem(obj uint64, serial int32) int32 {
	idx := tgt.numObjects
	if idx >= layout.ObjectChunkSize {
		tgt.t.Fatalf("testutil: object table chunk full")
	}
	item := tgt.objChunk + uint64(idx)*layout.ObjectItemSize
	tgt.Img.PutPointer(item+layout.ObjectItemObjectOffset, obj)
	tgt.Img.PutI32(item+layout.ObjectItemSerialOffset, serial)
	tgt.numObjects++
	tgt.Img.PutI32(tgt.objArray+layout.ObjectArrayObjectsOffset+layout.ObjectsNumElementsOffset, tgt.numObjects)
	return idx
}

// AddObject allocates an object of size bytes named name (with the internal
// number, 0 for none), registers it in the object table and returns its
// address.
func (tgt *Target) AddObject(name string, number int32, size int) uint64 {
	if size < layout.ObjectBaseSize {
		size = layout.ObjectBaseSize
	}
	obj := tgt.Img.Alloc(size)
	ref := tgt.AddName(name)
	idx := tgt.putItem(obj, int32(tgt.numObjects)+1)
	tgt.writeBase(obj, idx, layout.NameRef{ComparisonIndex: ref, Number: number})
	return obj
}

// AddNullObject appends an empty object slot.
func (tgt *Target) AddNullObject() int32 { return tgt.putItem(0, 0) }

// AddUnlistedObject allocates an object that is not registered in the object
// table, like a representation record reachable only through its manager.
func (tgt *Target) AddUnlistedObject(name string, internalIndex int32, size int) uint64 {
	obj := tgt.Img.Alloc(size)
	tgt.writeBase(obj, internalIndex, layout.NameRef{ComparisonIndex: tgt.AddName(name)})
	return obj
}

func (tgt *Target) writeBase(obj uint64, index int32, ref layout.NameRef) {
	tgt.Img.PutI32(obj+layout.ObjectInternalIndexOffset, index)
	tgt.Img.PutI32(obj+layout.ObjectNameOffset+layout.NameRefComparisonOffset, ref.ComparisonIndex)
	tgt.Img.PutI32(obj+layout.ObjectNameOffset+layout.NameRefNumberOffset, ref.Number)
}

// SetNameRef overwrites the name reference of an object.
func (tgt *Target) SetNameRef(obj uint64, ref layout.NameRef) {
	tgt.Img.PutI32(obj+layout.ObjectNameOffset+layout.NameRefComparisonOffset, ref.ComparisonIndex)
	tgt.Img.PutI32(obj+layout.ObjectNameOffset+layout.NameRefNumberOffset, ref.Number)
}

// PutArray writes a dynamic array of pointers at addr (an array header
// field), allocating its data block. Capacity equals length.
func (tgt *Target) PutArray(addr uint64, ptrs []uint64) {
	if len(ptrs) == 0 {
		return
	}
	data := tgt.Img.Alloc(len(ptrs) * layout.PointerSize)
	for i, p := range ptrs {
		tgt.Img.PutPointer(data+uint64(i*layout.PointerSize), p)
	}
	tgt.Img.PutPointer(addr+layout.DynArrayDataOffset, data)
	tgt.Img.PutI32(addr+layout.DynArrayNumOffset, int32(len(ptrs)))
	tgt.Img.PutI32(addr+layout.DynArrayMaxOffset, int32(len(ptrs)))
}

// PutText writes a UTF-16 text array header at addr.
func (tgt *Target) PutText(addr uint64, s string) {
	units := encodeUTF16(s + "\x00")
	data := tgt.Img.Alloc(len(units))
	tgt.Img.PutBytes(data, units)
	tgt.Img.PutPointer(addr+layout.DynArrayDataOffset, data)
	tgt.Img.PutI32(addr+layout.DynArrayNumOffset, int32(len(units)/2))
	tgt.Img.PutI32(addr+layout.DynArrayMaxOffset, int32(len(units)/2))
}

func encodeUTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, len(units)*2)
	for i, u := range units {
		b[i*2] = byte(u)
		b[i*2+1] = byte(u >> 8)
	}
	return b
}
