package layout

import "fmt"

// maxArrayElements bounds representation arrays. Real lists hold a few
// thousand entries at most; anything larger is a misread header.
const maxArrayElements = 1 << 20

// CheckNameTable validates name table counters before the table is trusted.
func CheckNameTable(h NameTableHeader) error {
	switch {
	case h.NumElements < 0 || h.NumChunks < 0:
		return fmt.Errorf("name table: negative counts %d/%d: %w", h.NumElements, h.NumChunks, ErrLayoutMismatch)
	case h.NumElements > NameTableCapacity:
		return fmt.Errorf("name table: %d elements exceed capacity %d: %w", h.NumElements, NameTableCapacity, ErrLayoutMismatch)
	case h.NumChunks > NameChunkSlots:
		return fmt.Errorf("name table: %d chunks exceed %d slots: %w", h.NumChunks, NameChunkSlots, ErrLayoutMismatch)
	case int64(h.NumChunks)*NameChunkSize < int64(h.NumElements):
		return fmt.Errorf("name table: %d chunks cannot hold %d elements: %w", h.NumChunks, h.NumElements, ErrLayoutMismatch)
	}
	return nil
}

// CheckObjects validates the object array header before the table is trusted.
func CheckObjects(h ObjectsHeader) error {
	switch {
	case h.NumElements < 0 || h.NumChunks < 0 || h.MaxElements <= 0 || h.MaxChunks <= 0:
		return fmt.Errorf("objects: invalid counts %+v: %w", h, ErrLayoutMismatch)
	case h.NumElements > h.MaxElements:
		return fmt.Errorf("objects: %d elements exceed max %d: %w", h.NumElements, h.MaxElements, ErrLayoutMismatch)
	case h.NumChunks > h.MaxChunks:
		return fmt.Errorf("objects: %d chunks exceed max %d: %w", h.NumChunks, h.MaxChunks, ErrLayoutMismatch)
	case int64(h.MaxChunks) != (int64(h.MaxElements)+ObjectChunkSize-1)/ObjectChunkSize:
		return fmt.Errorf("objects: max chunks %d inconsistent with max elements %d: %w", h.MaxChunks, h.MaxElements, ErrLayoutMismatch)
	case int64(h.NumChunks)*ObjectChunkSize < int64(h.NumElements):
		return fmt.Errorf("objects: %d chunks cannot hold %d elements: %w", h.NumChunks, h.NumElements, ErrLayoutMismatch)
	case h.NumElements > 0 && h.ChunkTable == 0:
		return fmt.Errorf("objects: null chunk table: %w", ErrLayoutMismatch)
	}
	return nil
}

// CheckDynArray validates an array header read from a representation manager.
func CheckDynArray(a DynArray) error {
	switch {
	case a.Num < 0 || a.Max < 0:
		return fmt.Errorf("array: negative counts %d/%d: %w", a.Num, a.Max, ErrLayoutMismatch)
	case a.Num > a.Max:
		return fmt.Errorf("array: count %d exceeds capacity %d: %w", a.Num, a.Max, ErrLayoutMismatch)
	case a.Max > maxArrayElements:
		return fmt.Errorf("array: capacity %d exceeds limit %d: %w", a.Max, maxArrayElements, ErrLayoutMismatch)
	case a.Num > 0 && a.Data == 0:
		return fmt.Errorf("array: null data with %d elements: %w", a.Num, ErrLayoutMismatch)
	}
	return nil
}
