package layout

import (
	"fmt"

	"github.com/joshuapare/webmap/internal/buf"
)

// MapManager is the singleton that owns the representation manager. Only one
// field past the object header is used:
//
//	Offset  Size  Field
//	0x3A8   8     Representation manager pointer
type MapManager struct {
	ObjectBase
	RepresentationManager uint64
}

// DecodeMapManager decodes a map manager record.
func DecodeMapManager(b []byte) (MapManager, error) {
	if len(b) < MapManagerRepresentationManagerOffset+PointerSize {
		return MapManager{}, fmt.Errorf("map manager: %w (have %d)", ErrTruncated, len(b))
	}
	base, err := DecodeObjectBase(b)
	if err != nil {
		return MapManager{}, fmt.Errorf("map manager: %w", err)
	}
	rm, _ := buf.U64LE(b, MapManagerRepresentationManagerOffset)
	return MapManager{ObjectBase: base, RepresentationManager: rm}, nil
}

// ReprManager holds the three arrays of representation pointers:
//
//	Offset  Size  Field
//	0x3A0   16    Replicated representations
//	0x3B0   16    Client replicated representations
//	0x3C0   16    Local representations
type ReprManager struct {
	ObjectBase
	Replicated       DynArray
	ClientReplicated DynArray
	Local            DynArray
}

// Lists returns the three arrays in a fixed order.
func (m ReprManager) Lists() [3]DynArray {
	return [3]DynArray{m.Replicated, m.ClientReplicated, m.Local}
}

// DecodeReprManager decodes a representation manager record.
func DecodeReprManager(b []byte) (ReprManager, error) {
	if len(b) < ReprManagerSize {
		return ReprManager{}, fmt.Errorf("representation manager: %w (have %d, need %d)", ErrTruncated, len(b), ReprManagerSize)
	}
	base, err := DecodeObjectBase(b)
	if err != nil {
		return ReprManager{}, fmt.Errorf("representation manager: %w", err)
	}
	m := ReprManager{ObjectBase: base}
	if m.Replicated, err = DecodeDynArray(b, ReprManagerReplicatedOffset); err != nil {
		return ReprManager{}, err
	}
	if m.ClientReplicated, err = DecodeDynArray(b, ReprManagerClientReplicatedOffset); err != nil {
		return ReprManager{}, err
	}
	if m.Local, err = DecodeDynArray(b, ReprManagerLocalOffset); err != nil {
		return ReprManager{}, err
	}
	return m, nil
}

// Representation describes one displayable entity:
//
//	Offset  Size  Field
//	0x28    1     Is local
//	0x29    1     Is on client
//	0x30    8     Backing actor pointer (0 when destroyed or not simulated)
//	0x38    12    Cached location
//	0x44    12    Cached rotation (pitch, yaw, roll)
//	0x50    1     Is static
//	0x58    8     Texture pointer
//	0x60    24    Text (data pointer, count, capacity of UTF-16 units)
//	0x78    16    Color (4 x int32)
//	0x88    1     Representation type
//	0x89    1     Fog of war reveal type
//	0x8C    4     Fog of war reveal radius
//	0x90    1     Is temporary
//	0x94    4     Lifetime
//	0x98    1     Show in compass
//	0x99    1     Show on map
type Representation struct {
	ObjectBase
	IsLocal         bool
	IsOnClient      bool
	RealActor       uint64
	Location        [3]float32
	Rotation        [3]float32
	IsStatic        bool
	Texture         uint64
	Text            DynArray
	Color           [4]int32
	Type            uint8
	FogRevealType   uint8
	FogRevealRadius float32
	IsTemporary     bool
	LifeTime        float32
	ShowInCompass   bool
	ShowOnMap       bool
}

// DecodeRepresentation decodes a representation record.
func DecodeRepresentation(b []byte) (Representation, error) {
	if len(b) < ReprSize {
		return Representation{}, fmt.Errorf("representation: %w (have %d, need %d)", ErrTruncated, len(b), ReprSize)
	}
	base, err := DecodeObjectBase(b)
	if err != nil {
		return Representation{}, fmt.Errorf("representation: %w", err)
	}
	r := Representation{ObjectBase: base}
	r.IsLocal, _ = buf.Bool(b, ReprIsLocalOffset)
	r.IsOnClient, _ = buf.Bool(b, ReprIsOnClientOffset)
	r.RealActor, _ = buf.U64LE(b, ReprRealActorOffset)
	r.Location, _ = buf.Vec3(b, ReprLocationOffset)
	r.Rotation, _ = buf.Vec3(b, ReprRotationOffset)
	r.IsStatic, _ = buf.Bool(b, ReprIsStaticOffset)
	r.Texture, _ = buf.U64LE(b, ReprTextureOffset)
	if r.Text, err = DecodeDynArray(b, ReprTextOffset); err != nil {
		return Representation{}, err
	}
	for i := range r.Color {
		r.Color[i], _ = buf.I32LE(b, ReprColorOffset+i*4)
	}
	r.Type, _ = buf.U8(b, ReprTypeOffset)
	r.FogRevealType, _ = buf.U8(b, ReprFogRevealTypeOffset)
	r.FogRevealRadius, _ = buf.F32LE(b, ReprFogRevealRadiusOffset)
	r.IsTemporary, _ = buf.Bool(b, ReprIsTemporaryOffset)
	r.LifeTime, _ = buf.F32LE(b, ReprLifeTimeOffset)
	r.ShowInCompass, _ = buf.Bool(b, ReprShowInCompassOffset)
	r.ShowOnMap, _ = buf.Bool(b, ReprShowOnMapOffset)
	return r, nil
}

// ActorRootSpan is the number of bytes DecodeActorRoot needs.
const ActorRootSpan = ActorRootComponentOffset + PointerSize

// DecodeActorRoot returns the root component pointer of an actor. b must
// start at the actor and cover at least ActorRootSpan bytes.
func DecodeActorRoot(b []byte) (uint64, error) {
	root, err := buf.U64LE(b, ActorRootComponentOffset)
	if err != nil {
		return 0, fmt.Errorf("actor: %w (have %d)", ErrTruncated, len(b))
	}
	return root, nil
}

// Transform is a component-to-world transform. Each part is stored as four
// floats; only the first three are meaningful for rotation and translation.
type Transform struct {
	Rotation    [4]float32
	Translation [4]float32
	Scale       [4]float32
}

// SceneComponent carries the world transform and velocity of an actor root:
//
//	Offset  Size  Field
//	0x190   48    Component-to-world transform
//	0x1C0   12    Component velocity
type SceneComponent struct {
	ToWorld  Transform
	Velocity [3]float32
}

// SceneComponentSpan is the window of a scene component that holds the fields
// decoded by DecodeSceneComponentSpan.
const SceneComponentSpan = ComponentVelocityOffset + 12 - ComponentToWorldOffset

// DecodeSceneComponentSpan decodes the transform and velocity from the bytes
// starting at ComponentToWorldOffset, so callers read SceneComponentSpan bytes
// instead of the whole component.
func DecodeSceneComponentSpan(b []byte) (SceneComponent, error) {
	if len(b) < SceneComponentSpan {
		return SceneComponent{}, fmt.Errorf("scene component: %w (have %d, need %d)", ErrTruncated, len(b), SceneComponentSpan)
	}
	var c SceneComponent
	for i := 0; i < 4; i++ {
		c.ToWorld.Rotation[i], _ = buf.F32LE(b, TransformRotationOffset+i*4)
		c.ToWorld.Translation[i], _ = buf.F32LE(b, TransformTranslationOffset+i*4)
		c.ToWorld.Scale[i], _ = buf.F32LE(b, TransformScaleOffset+i*4)
	}
	c.Velocity, _ = buf.Vec3(b, ComponentVelocityOffset-ComponentToWorldOffset)
	return c, nil
}
