// Package layout houses fixed-offset decoders for the records of the target
// binary. Offsets were recovered from one specific x86-64 build; nothing here
// detects a different build beyond the sanity checks in check.go, so a
// mismatched target yields garbage rather than an error in the worst case.
//
// Decoders take a byte slice holding a copy of the record and never touch
// foreign memory themselves. The packages above (paged, names, objects,
// extract) decide what to read and hand the bytes in.
package layout

import "github.com/joshuapare/webmap/internal/memory"

// PointerSize is the size of a target pointer.
const PointerSize = memory.PointerSize

// Name table (chunked array of pointers to name entries).
const (
	// NameTableCapacity is the maximum number of name entries.
	NameTableCapacity = 4 * 1024 * 1024
	// NameChunkSize is the number of entry pointers per chunk.
	NameChunkSize = 16384
	// NameChunkSlots is the length of the inline chunk-pointer table.
	NameChunkSlots = (NameTableCapacity + NameChunkSize - 1) / NameChunkSize

	// NameTableChunksOffset is where the inline chunk table starts.
	NameTableChunksOffset = 0x000
	// NameTableNumElementsOffset holds the live element count (int32).
	NameTableNumElementsOffset = 0x800
	// NameTableNumChunksOffset holds the allocated chunk count (int32).
	NameTableNumChunksOffset = 0x804
	// NameTableSize is the size of the table header.
	NameTableSize = 0x808
)

// Name entry.
const (
	NameEntryHashNextOffset = 0x00
	NameEntryIndexOffset    = 0x08
	NameEntryTextOffset     = 0x0C
	// NameEntryTextCapacity is the inline text buffer size in bytes.
	NameEntryTextCapacity = 2048
	NameEntrySize         = 0x810

	// NameWideMask marks an entry whose text is stored as UTF-16.
	NameWideMask = 0x1
	// NameIndexShift recovers the table index from the index field.
	NameIndexShift = 1
)

// Name reference (comparison index + number).
const (
	NameRefComparisonOffset = 0x0
	NameRefNumberOffset     = 0x4
	NameRefSize             = 0x8

	// NameNoNumber is the internal number meaning "no numeric suffix".
	NameNoNumber = 0
)

// Object table.
const (
	// ObjectArrayObjectsOffset is where the chunked object array is embedded
	// inside the global object array.
	ObjectArrayObjectsOffset = 0x10
	// ObjectArraySize is the size of the global object array.
	ObjectArraySize = 0x130

	ObjectChunkSize = 64 * 1024

	// Chunked object array header, relative to ObjectArrayObjectsOffset.
	ObjectsChunkTableOffset  = 0x00
	ObjectsPreallocOffset    = 0x08
	ObjectsMaxElementsOffset = 0x10
	ObjectsNumElementsOffset = 0x14
	ObjectsMaxChunksOffset   = 0x18
	ObjectsNumChunksOffset   = 0x1C
	ObjectsHeaderSize        = 0x20

	// Object item (stored inline in chunks).
	ObjectItemObjectOffset      = 0x00
	ObjectItemFlagsOffset       = 0x08
	ObjectItemClusterRootOffset = 0x0C
	ObjectItemSerialOffset      = 0x10
	ObjectItemSize              = 0x18
)

// Object base, shared by every object record.
const (
	ObjectVTableOffset        = 0x00
	ObjectFlagsOffset         = 0x08
	ObjectInternalIndexOffset = 0x0C
	ObjectClassOffset         = 0x10
	ObjectNameOffset          = 0x18
	ObjectOuterOffset         = 0x20
	ObjectBaseSize            = 0x28
)

// Dynamic array (data pointer, count, capacity).
const (
	DynArrayDataOffset = 0x0
	DynArrayNumOffset  = 0x8
	DynArrayMaxOffset  = 0xC
	DynArraySize       = 0x10
)

// Map manager and representation manager.
const (
	MapManagerRepresentationManagerOffset = 0x3A8
	MapManagerSize                        = 0x3C8

	ReprManagerReplicatedOffset       = 0x3A0
	ReprManagerClientReplicatedOffset = 0x3B0
	ReprManagerLocalOffset            = 0x3C0
	ReprManagerSize                   = 0x3D0
)

// Representation record.
const (
	ReprIsLocalOffset         = 0x28
	ReprIsOnClientOffset      = 0x29
	ReprRealActorOffset       = 0x30
	ReprLocationOffset        = 0x38
	ReprRotationOffset        = 0x44
	ReprIsStaticOffset        = 0x50
	ReprTextureOffset         = 0x58
	ReprTextOffset            = 0x60
	ReprColorOffset           = 0x78
	ReprTypeOffset            = 0x88
	ReprFogRevealTypeOffset   = 0x89
	ReprFogRevealRadiusOffset = 0x8C
	ReprIsTemporaryOffset     = 0x90
	ReprLifeTimeOffset        = 0x94
	ReprShowInCompassOffset   = 0x98
	ReprShowOnMapOffset       = 0x99
	ReprCompassViewDistOffset = 0x9A
	ReprSize                  = 0xA0
	// ReprTextMaxUnits caps the label length read from the target.
	ReprTextMaxUnits = 256
)

// Actor and scene component.
const (
	ActorRootComponentOffset = 0x158
	ActorSize                = 0x330

	// Transform: three 16-byte vectors.
	TransformRotationOffset    = 0x00
	TransformTranslationOffset = 0x10
	TransformScaleOffset       = 0x20
	TransformSize              = 0x30

	ComponentToWorldOffset  = 0x190
	ComponentVelocityOffset = 0x1C0
	SceneComponentSize      = 0x260
)
