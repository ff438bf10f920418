package inject

import (
	"fmt"

	"github.com/joshuapare/webmap/internal/buf"
)

// stubAlign is the alignment of the stub within the remote page and the
// granularity its template is padded to.
const stubAlign = 32

// Patch is an absolute 64-bit value written into a stub template.
type Patch struct {
	Offset int
	Value  uint64
}

// Stub is a position-independent instruction template with two 64-bit
// immediate slots: the address of the module path and the address of the
// loader entry point.
type Stub struct {
	Template     []byte
	PathOffset   int
	LoaderOffset int
}

// Patches returns the patch list for a path buffer and loader address.
func (s Stub) Patches(path, loader uint64) []Patch {
	return []Patch{
		{Offset: s.PathOffset, Value: path},
		{Offset: s.LoaderOffset, Value: loader},
	}
}

// Apply returns a patched copy of the template. The template is never
// modified.
func (s Stub) Apply(patches ...Patch) ([]byte, error) {
	out := make([]byte, len(s.Template))
	copy(out, s.Template)
	for _, p := range patches {
		if err := buf.PutU64LE(out, p.Offset, p.Value); err != nil {
			return nil, fmt.Errorf("stub patch at %d: %w", p.Offset, err)
		}
	}
	return out, nil
}

// LoadLibraryStub calls the loader with the path, then returns 1 when it
// produced a module handle and 2 otherwise:
//
//	sub  rsp, 0x40
//	mov  rcx, <path>
//	call [rip+2]
//	jmp  +8
//	dq   <loader>
//	add  rsp, 0x40
//	test rax, rax
//	jnz  ok
//	mov  eax, 2
//	ret
//	ok: mov eax, 1
//	ret
var LoadLibraryStub = Stub{
	Template: padTemplate([]byte{
		0x48, 0x83, 0xEC, 0x40,
		0x48, 0xB9, 0, 0, 0, 0, 0, 0, 0, 0,
		0xFF, 0x15, 0x02, 0x00, 0x00, 0x00,
		0xEB, 0x08,
		0, 0, 0, 0, 0, 0, 0, 0,
		0x48, 0x83, 0xC4, 0x40,
		0x48, 0x85, 0xC0,
		0x75, 0x06,
		0xB8, 0x02, 0x00, 0x00, 0x00,
		0xC3,
		0xB8, 0x01, 0x00, 0x00, 0x00,
		0xC3,
	}),
	PathOffset:   6,
	LoaderOffset: 22,
}

// padTemplate pads code with int3 to a multiple of stubAlign.
func padTemplate(code []byte) []byte {
	for len(code)%stubAlign != 0 {
		code = append(code, 0xCC)
	}
	return code
}

func alignUp(n, a int) int { return (n + a - 1) / a * a }
