package testutil

import "github.com/joshuapare/webmap/internal/layout"

// Repr describes a representation record to lay out.
type Repr struct {
	Type     uint8
	Color    [4]int32
	Location [3]float32
	Rotation [3]float32
	Label    string
	Actor    uint64

	IsLocal       bool
	IsStatic      bool
	ShowOnMap     bool
	ShowInCompass bool
}

// AddRepresentation allocates a representation record with the given
// internal index and returns its address.
func (tgt *Target) AddRepresentation(index int32, r Repr) uint64 {
	addr := tgt.AddUnlistedObject("FGActorRepresentation", index, layout.ReprSize)
	img := tgt.Img
	img.PutPointer(addr+layout.ReprRealActorOffset, r.Actor)
	img.PutVec3(addr+layout.ReprLocationOffset, r.Location)
	img.PutVec3(addr+layout.ReprRotationOffset, r.Rotation)
	for i, c := range r.Color {
		img.PutI32(addr+layout.ReprColorOffset+uint64(i*4), c)
	}
	img.PutBytes(addr+layout.ReprTypeOffset, []byte{r.Type})
	putBool := func(off uint64, v bool) {
		if v {
			img.PutBytes(addr+off, []byte{1})
		}
	}
	putBool(layout.ReprIsLocalOffset, r.IsLocal)
	putBool(layout.ReprIsStaticOffset, r.IsStatic)
	putBool(layout.ReprShowOnMapOffset, r.ShowOnMap)
	putBool(layout.ReprShowInCompassOffset, r.ShowInCompass)
	if r.Label != "" {
		tgt.PutText(addr+layout.ReprTextOffset, r.Label)
	}
	return addr
}

// AddActor allocates an actor whose root component carries the given world
// translation, rotation and velocity. It returns the actor address.
func (tgt *Target) AddActor(translation, rotation, velocity [3]float32) uint64 {
	actor := tgt.AddUnlistedObject("Actor", 0, layout.ActorSize)
	root := tgt.AddUnlistedObject("SceneComponent", 0, layout.SceneComponentSize)
	tgt.Img.PutPointer(actor+layout.ActorRootComponentOffset, root)
	xf := root + layout.ComponentToWorldOffset
	tgt.Img.PutVec3(xf+layout.TransformRotationOffset, rotation)
	tgt.Img.PutVec3(xf+layout.TransformTranslationOffset, translation)
	tgt.Img.PutVec3(xf+layout.TransformScaleOffset, [3]float32{1, 1, 1})
	tgt.Img.PutVec3(root+layout.ComponentVelocityOffset, velocity)
	return actor
}

// AddRootlessActor allocates an actor whose root component pointer is null.
func (tgt *Target) AddRootlessActor() uint64 {
	return tgt.AddUnlistedObject("Actor", 0, layout.ActorSize)
}

// AddManagers registers a representation manager and a map manager named
// name, links them, and fills the three representation lists. It returns the
// map manager and representation manager addresses.
func (tgt *Target) AddManagers(name string, lists [3][]uint64) (mapManager, reprManager uint64) {
	reprManager = tgt.AddObject("FGActorRepresentationManager", 0, layout.ReprManagerSize)
	mapManager = tgt.AddObject(name, 0, layout.MapManagerSize)
	tgt.Img.PutPointer(mapManager+layout.MapManagerRepresentationManagerOffset, reprManager)
	offsets := [3]uint64{
		layout.ReprManagerReplicatedOffset,
		layout.ReprManagerClientReplicatedOffset,
		layout.ReprManagerLocalOffset,
	}
	for i, ptrs := range lists {
		tgt.PutArray(reprManager+offsets[i], ptrs)
	}
	return mapManager, reprManager
}
