// Package extract walks the target's object graph and produces entity
// snapshots.
//
// An Extractor locates the map manager singleton by name the first time it
// is asked for a snapshot, caches the manager and its representation
// manager, and on every call reads the three representation lists hanging
// off the latter. Failure to locate the managers is a soft condition: the
// snapshot comes back empty and marked unresolved, and the next call tries
// again.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/webmap/internal/buf"
	"github.com/joshuapare/webmap/internal/entity"
	"github.com/joshuapare/webmap/internal/layout"
	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/names"
	"github.com/joshuapare/webmap/internal/objects"
)

// DefaultManagerName is the object name of the map manager singleton.
const DefaultManagerName = "MapManager"

// ErrManagerUnresolved wraps every reason the managers could not be located.
var ErrManagerUnresolved = errors.New("extract: manager unresolved")

// Options configures an Extractor.
type Options struct {
	// ManagerName is the object name to look for. Defaults to DefaultManagerName.
	ManagerName string
	Logger      *zap.Logger
}

type managers struct {
	mapManager  uint64
	reprManager uint64
}

// Extractor produces snapshots from one target. It is safe for concurrent
// use: the cached manager reference is swapped atomically, and concurrent
// re-resolution is idempotent, so racing callers at worst repeat the lookup.
type Extractor struct {
	target Target
	name   string
	log    *zap.Logger
	names  *names.Cache
	cached atomic.Pointer[managers]
}

// New returns an extractor for target.
func New(target Target, opts Options) *Extractor {
	if opts.ManagerName == "" {
		opts.ManagerName = DefaultManagerName
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{
		target: target,
		name:   opts.ManagerName,
		log:    opts.Logger,
		names:  names.NewCache(),
	}
}

// Target returns the target the extractor reads.
func (e *Extractor) Target() Target { return e.target }

// Open returns fresh views over the name and object tables. Headers are
// re-read on every call so the views reflect the target's current size.
func (e *Extractor) Open() (*names.Resolver, *objects.Registry, error) {
	table, err := e.target.NameTable()
	if err != nil {
		return nil, nil, err
	}
	res, err := names.Open(e.target.Mem, table, e.names)
	if err != nil {
		return nil, nil, err
	}
	reg, err := objects.Open(e.target.Mem, e.target.ObjectArray(), res)
	if err != nil {
		return nil, nil, err
	}
	return res, reg, nil
}

// Invalidate drops the cached manager reference.
func (e *Extractor) Invalidate() { e.cached.Store(nil) }

// Resolved reports whether a manager reference is cached.
func (e *Extractor) Resolved() bool { return e.cached.Load() != nil }

func (e *Extractor) resolve() (*managers, error) {
	if m := e.cached.Load(); m != nil {
		return m, nil
	}
	_, reg, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManagerUnresolved, err)
	}
	rec, err := reg.FindByName(e.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManagerUnresolved, err)
	}
	repr, err := e.reprManagerOf(rec.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManagerUnresolved, err)
	}
	m := &managers{mapManager: rec.Address, reprManager: repr}
	e.cached.Store(m)
	e.log.Info("map manager resolved",
		zap.Int("slot", rec.Index),
		zap.String("manager", fmt.Sprintf("%#x", m.mapManager)),
		zap.String("representation_manager", fmt.Sprintf("%#x", m.reprManager)))
	return m, nil
}

func (e *Extractor) reprManagerOf(mapManager uint64) (uint64, error) {
	b, err := memory.Read(e.target.Mem, mapManager, layout.MapManagerRepresentationManagerOffset+layout.PointerSize)
	if err != nil {
		return 0, fmt.Errorf("map manager: %w", err)
	}
	mm, err := layout.DecodeMapManager(b)
	if err != nil {
		return 0, err
	}
	if mm.RepresentationManager == 0 {
		return 0, fmt.Errorf("representation manager: %w", memory.ErrNullPointer)
	}
	return mm.RepresentationManager, nil
}

// Extract returns a snapshot of every representation the target currently
// holds. It never fails: an unresolvable manager yields an empty snapshot
// with Unresolved set, and unreadable records are skipped.
func (e *Extractor) Extract() entity.Snapshot {
	features, err := e.extract()
	if err != nil && e.Resolved() {
		// The cached managers went stale (world reload). Look them up again
		// once before giving up on this call.
		e.Invalidate()
		features, err = e.extract()
	}
	if err != nil {
		e.Invalidate()
		e.log.Debug("extraction unresolved", zap.Error(err))
		return entity.Snapshot{Features: []entity.Feature{}, Unresolved: true, Reason: err.Error()}
	}
	return entity.Snapshot{Features: features}
}

func (e *Extractor) extract() ([]entity.Feature, error) {
	m, err := e.resolve()
	if err != nil {
		return nil, err
	}
	// The map manager must still point at the cached representation manager.
	repr, err := e.reprManagerOf(m.mapManager)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManagerUnresolved, err)
	}
	if repr != m.reprManager {
		return nil, fmt.Errorf("%w: representation manager moved", ErrManagerUnresolved)
	}
	b, err := memory.Read(e.target.Mem, m.reprManager, layout.ReprManagerSize)
	if err != nil {
		return nil, fmt.Errorf("%w: representation manager: %w", ErrManagerUnresolved, err)
	}
	rm, err := layout.DecodeReprManager(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManagerUnresolved, err)
	}
	lists := rm.Lists()
	total := 0
	for _, l := range lists {
		if err := layout.CheckDynArray(l); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrManagerUnresolved, err)
		}
		total += int(l.Num)
	}

	features := make([]entity.Feature, 0, total)
	for _, l := range lists {
		features = e.appendList(features, l)
	}
	return features, nil
}

func (e *Extractor) appendList(dst []entity.Feature, l layout.DynArray) []entity.Feature {
	if l.Num == 0 {
		return dst
	}
	if _, err := buf.CheckArrayBounds(l.Data, int(l.Num), layout.PointerSize); err != nil {
		e.log.Debug("representation list out of bounds", zap.Error(err))
		return dst
	}
	ptrs, err := memory.Read(e.target.Mem, l.Data, int(l.Num)*layout.PointerSize)
	if err != nil {
		e.log.Debug("representation list unreadable", zap.Error(err))
		return dst
	}
	for i := 0; i < int(l.Num); i++ {
		p, _ := buf.U64LE(ptrs, i*layout.PointerSize)
		if p == 0 {
			continue
		}
		f, err := e.feature(p)
		if err != nil {
			e.log.Debug("representation skipped",
				zap.String("record", fmt.Sprintf("%#x", p)), zap.Error(err))
			continue
		}
		dst = append(dst, f)
	}
	return dst
}

var errNoRoot = errors.New("backing actor has no root component")

func (e *Extractor) feature(addr uint64) (entity.Feature, error) {
	b, err := memory.Read(e.target.Mem, addr, layout.ReprSize)
	if err != nil {
		return entity.Feature{}, err
	}
	r, err := layout.DecodeRepresentation(b)
	if err != nil {
		return entity.Feature{}, err
	}
	f := entity.Feature{
		Category: r.Type,
		Index:    r.InternalIndex,
		Color:    r.Color,
		Flags:    flagsOf(r),
	}
	if r.RealActor != 0 {
		c, err := e.rootComponent(r.RealActor)
		if err != nil {
			return entity.Feature{}, err
		}
		rot := entity.Vec3(vec3(c.ToWorld.Rotation))
		vel := entity.Vec3(c.Velocity)
		f.Position = entity.Vec3(vec3(c.ToWorld.Translation))
		f.Rotation = &rot
		f.Velocity = &vel
	} else {
		rot := entity.Vec3(r.Rotation)
		f.Position = entity.Vec3(r.Location)
		f.Rotation = &rot
	}
	f.Label = e.label(r.Text)
	return f, nil
}

func (e *Extractor) rootComponent(actor uint64) (layout.SceneComponent, error) {
	b, err := memory.Read(e.target.Mem, actor, layout.ActorRootSpan)
	if err != nil {
		return layout.SceneComponent{}, fmt.Errorf("actor: %w", err)
	}
	root, err := layout.DecodeActorRoot(b)
	if err != nil {
		return layout.SceneComponent{}, err
	}
	if root == 0 {
		return layout.SceneComponent{}, errNoRoot
	}
	b, err = memory.Read(e.target.Mem, root+layout.ComponentToWorldOffset, layout.SceneComponentSpan)
	if err != nil {
		return layout.SceneComponent{}, fmt.Errorf("root component: %w", err)
	}
	return layout.DecodeSceneComponentSpan(b)
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// label decodes the representation text. Labels are decoration; any problem
// yields an empty label rather than dropping the feature.
func (e *Extractor) label(text layout.DynArray) string {
	if text.Data == 0 || text.Num <= 0 || text.Num > text.Max {
		return ""
	}
	units := min(int(text.Num), layout.ReprTextMaxUnits)
	b, err := memory.Read(e.target.Mem, text.Data, units*2)
	if err != nil {
		return ""
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}

func vec3(v [4]float32) [3]float32 { return [3]float32{v[0], v[1], v[2]} }

func flagsOf(r layout.Representation) entity.Flags {
	var f entity.Flags
	set := func(b bool, bit entity.Flags) {
		if b {
			f |= bit
		}
	}
	set(r.IsLocal, entity.FlagLocal)
	set(r.IsOnClient, entity.FlagOnClient)
	set(r.IsStatic, entity.FlagStatic)
	set(r.IsTemporary, entity.FlagTemporary)
	set(r.ShowInCompass, entity.FlagShowInCompass)
	set(r.ShowOnMap, entity.FlagShowOnMap)
	return f
}
