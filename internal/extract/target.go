package extract

import (
	"fmt"

	"github.com/joshuapare/webmap/internal/memory"
)

// Target locates the two registries inside a target process. It replaces
// process-wide globals: every operation receives the target it works on.
type Target struct {
	// Mem reads the target's address space.
	Mem memory.Reader
	// Base is the load address of the target executable.
	Base uint64
	// NameTableOffset is the base-relative address of a pointer to the name table.
	NameTableOffset uint64
	// ObjectArrayOffset is the base-relative address of the global object array.
	ObjectArrayOffset uint64
}

// NameTable dereferences the name table root.
func (t Target) NameTable() (uint64, error) {
	p, err := memory.ReadPointer(t.Mem, t.Base+t.NameTableOffset)
	if err != nil {
		return 0, fmt.Errorf("name table root: %w", err)
	}
	if p == 0 {
		return 0, fmt.Errorf("name table root: %w", memory.ErrNullPointer)
	}
	return p, nil
}

// ObjectArray returns the address of the global object array.
func (t Target) ObjectArray() uint64 {
	return t.Base + t.ObjectArrayOffset
}
