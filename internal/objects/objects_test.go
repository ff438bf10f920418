package objects

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/webmap/internal/layout"
	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/names"
	"github.com/joshuapare/webmap/internal/testutil"
)

func open(t *testing.T, tgt *testutil.Target) *Registry {
	t.Helper()
	res, err := names.Open(tgt.Img, tgt.NameTable(), nil)
	require.NoError(t, err)
	reg, err := Open(tgt.Img, tgt.ObjectArray(), res)
	require.NoError(t, err)
	return reg
}

func TestScan_SkipsNullSlotsInOrder(t *testing.T) {
	tgt := testutil.NewTarget(t)
	a := tgt.AddObject("A", 0, 0)
	tgt.AddNullObject()
	b := tgt.AddObject("B", 0, 0)
	tgt.AddNullObject()
	c := tgt.AddObject("C", 2, 0)

	reg := open(t, tgt)
	assert.Equal(t, 5, reg.Len())

	var got []Record
	for rec, err := range reg.Scan() {
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{a, b, c}, []uint64{got[0].Address, got[1].Address, got[2].Address})
	assert.Equal(t, []int{0, 2, 4}, []int{got[0].Index, got[1].Index, got[2].Index})
	assert.Equal(t, int32(2), got[2].Name.Number)
}

func TestScan_Restartable(t *testing.T) {
	tgt := testutil.NewTarget(t)
	for _, n := range []string{"A", "B", "C", "D"} {
		tgt.AddObject(n, 0, 0)
	}
	reg := open(t, tgt)

	first := 0
	for range reg.Scan() {
		first++
		if first == 2 {
			break
		}
	}
	second := 0
	for _, err := range reg.Scan() {
		require.NoError(t, err)
		second++
	}
	assert.Equal(t, 2, first)
	assert.Equal(t, 4, second)
}

func TestFindByName(t *testing.T) {
	tgt := testutil.NewTarget(t)
	tgt.AddObject("Other", 0, 0)
	want := tgt.AddObject("MapManager", 0, 0)
	tgt.AddObject("MapManager", 0, 0)

	reg := open(t, tgt)
	rec, err := reg.FindByName("MapManager")
	require.NoError(t, err)
	assert.Equal(t, want, rec.Address, "first match wins")
	assert.Equal(t, 1, rec.Index)
}

func TestFindByName_Suffixed(t *testing.T) {
	tgt := testutil.NewTarget(t)
	tgt.AddObject("Train", 0, 0)
	want := tgt.AddObject("Train", 3, 0)

	reg := open(t, tgt)
	rec, err := reg.FindByName("Train_2")
	require.NoError(t, err)
	assert.Equal(t, want, rec.Address)
}

func TestFindByName_NotFoundStopsAtElementCount(t *testing.T) {
	tgt := testutil.NewTarget(t)
	tgt.AddObject("A", 0, 0)
	tgt.AddObject("B", 0, 0)

	// Plant a matching object in the slot right after the live range.
	hidden := tgt.AddObject("Hidden", 0, 0)
	objects := tgt.ObjectArray() + layout.ObjectArrayObjectsOffset
	tgt.Img.PutI32(objects+layout.ObjectsNumElementsOffset, 2)

	reg := open(t, tgt)
	_, err := reg.FindByName("Hidden")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NotZero(t, hidden)
}

func TestFindByName_UnresolvableNamesDoNotMatch(t *testing.T) {
	tgt := testutil.NewTarget(t)
	obj := tgt.AddObject("Broken", 0, 0)
	tgt.SetNameRef(obj, layout.NameRef{ComparisonIndex: 9999})
	tgt.AddObject("Good", 0, 0)

	reg := open(t, tgt)
	rec, err := reg.FindByName("Good")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Index)
}

func TestScan_SkipsUnreadableObjects(t *testing.T) {
	tgt := testutil.NewTarget(t)
	tgt.AddObject("A", 0, 0)
	// Point slot 1 at unmapped memory.
	tgt.AddObject("Gone", 0, 0)
	slot1 := tgt.Img.Bytes(chunkBase(t, tgt)+layout.ObjectItemSize, 8)
	copy(slot1, []byte{0x08, 0, 0, 0, 0, 0, 0, 0})
	tgt.AddObject("C", 0, 0)

	reg := open(t, tgt)
	n := 0
	for _, err := range reg.Scan() {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
}

func TestGet(t *testing.T) {
	tgt := testutil.NewTarget(t)
	a := tgt.AddObject("A", 0, 0)
	tgt.AddNullObject()
	reg := open(t, tgt)

	rec, err := reg.Get(0)
	require.NoError(t, err)
	assert.Equal(t, a, rec.Address)

	_, err = reg.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Get(2)
	assert.Error(t, err)
}

func TestOpen_CorruptHeader(t *testing.T) {
	tgt := testutil.NewTarget(t)
	objects := tgt.ObjectArray() + layout.ObjectArrayObjectsOffset
	tgt.Img.PutI32(objects+layout.ObjectsNumChunksOffset, 7)

	res, err := names.Open(tgt.Img, tgt.NameTable(), nil)
	require.NoError(t, err)
	_, err = Open(tgt.Img, tgt.ObjectArray(), res)
	assert.ErrorIs(t, err, layout.ErrLayoutMismatch)
}

func chunkBase(t *testing.T, tgt *testutil.Target) uint64 {
	t.Helper()
	objects := tgt.ObjectArray() + layout.ObjectArrayObjectsOffset
	table, err := memory.ReadPointer(tgt.Img, objects+layout.ObjectsChunkTableOffset)
	require.NoError(t, err)
	base, err := memory.ReadPointer(tgt.Img, table)
	require.NoError(t, err)
	return base
}
