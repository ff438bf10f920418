// Package wire defines the JSON payload exchanged between the service and the
// operator: a GeoJSON-style feature collection on success, or a status/message
// pair on failure.
//
// Encoding is lenient about what a Snapshot holds. Decoding is strict: a
// payload missing required members is rejected as a whole so a caller can
// keep its previous data.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/webmap/internal/entity"
)

// Status and type literals of the payload.
const (
	StatusOK  = "ok"
	StatusErr = "err"

	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"

	// MsgInvalidObject is sent when the managers could not be located.
	MsgInvalidObject = "invalid obj"
)

var (
	// ErrMalformed is returned for payloads that are not JSON objects or lack
	// required members.
	ErrMalformed = errors.New("wire: malformed payload")
	// ErrUnknownType is returned for an ok payload that is not a feature collection.
	ErrUnknownType = errors.New("wire: unknown payload type")
)

// RemoteError carries the message of an "err" payload.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string { return "wire: remote error: " + e.Msg }

// Properties of a feature.
type Properties struct {
	Type  uint8       `json:"type"`
	Index int32       `json:"index"`
	Color [4]int32    `json:"color"`
	Ang   *[3]float32 `json:"ang,omitempty"`
	Vel   *[3]float32 `json:"vel,omitempty"`
	Text  string      `json:"text,omitempty"`
	Flags uint8       `json:"flags,omitempty"`
}

// Geometry of a feature. Always a point.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [3]float32 `json:"coordinates"`
}

// Feature is one entry of a collection.
type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// Collection is the success payload.
type Collection struct {
	Status   string    `json:"status"`
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Failure is the error payload.
type Failure struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// Ok is a generic success payload with extra members, used by the
// non-snapshot paths.
func Ok(extra map[string]any) map[string]any {
	m := map[string]any{"status": StatusOK}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// FromFeature converts an extracted feature.
func FromFeature(f entity.Feature) Feature {
	out := Feature{
		Type: TypeFeature,
		Properties: Properties{
			Type:  f.Category,
			Index: f.Index,
			Color: f.Color,
			Text:  f.Label,
			Flags: uint8(f.Flags),
		},
		Geometry: Geometry{Type: TypePoint, Coordinates: f.Position},
	}
	if f.Rotation != nil {
		ang := [3]float32(*f.Rotation)
		out.Properties.Ang = &ang
	}
	if f.Velocity != nil {
		vel := [3]float32(*f.Velocity)
		out.Properties.Vel = &vel
	}
	return out
}

// FromSnapshot converts a resolved snapshot. Features is never nil.
func FromSnapshot(s entity.Snapshot) Collection {
	c := Collection{Status: StatusOK, Type: TypeFeatureCollection, Features: make([]Feature, 0, len(s.Features))}
	for _, f := range s.Features {
		c.Features = append(c.Features, FromFeature(f))
	}
	return c
}

// Encode writes the payload for s: a failure with MsgInvalidObject when the
// snapshot is unresolved, a collection otherwise.
func Encode(w io.Writer, s entity.Snapshot) error {
	if s.Unresolved {
		return EncodeError(w, MsgInvalidObject)
	}
	return json.NewEncoder(w).Encode(FromSnapshot(s))
}

// EncodeError writes a failure payload.
func EncodeError(w io.Writer, msg string) error {
	return json.NewEncoder(w).Encode(Failure{Status: StatusErr, Msg: msg})
}

type rawPayload struct {
	Status   *string            `json:"status"`
	Msg      *string            `json:"msg"`
	Type     *string            `json:"type"`
	Features *[]json.RawMessage `json:"features"`
}

type rawFeature struct {
	Type       *string        `json:"type"`
	Properties *rawProperties `json:"properties"`
	Geometry   *rawGeometry   `json:"geometry"`
}

type rawProperties struct {
	Type  *uint8    `json:"type"`
	Index *int32    `json:"index"`
	Color []int32   `json:"color"`
	Ang   []float32 `json:"ang"`
	Vel   []float32 `json:"vel"`
	Text  string    `json:"text"`
	Flags uint8     `json:"flags"`
}

type rawGeometry struct {
	Type        *string   `json:"type"`
	Coordinates []float32 `json:"coordinates"`
}

// Decode parses a payload into features. It returns *RemoteError for an
// "err" payload, ErrUnknownType for an ok payload of another type, and
// ErrMalformed for anything else that does not match the shape. Entries whose
// type is not "Feature" are skipped.
func Decode(data []byte) ([]entity.Feature, error) {
	var p rawPayload
	if err := json.Unmarshal(bytes.TrimSpace(data), &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if p.Status == nil {
		return nil, fmt.Errorf("%w: missing status", ErrMalformed)
	}
	switch *p.Status {
	case StatusErr:
		re := &RemoteError{}
		if p.Msg != nil {
			re.Msg = *p.Msg
		}
		return nil, re
	case StatusOK:
	default:
		return nil, fmt.Errorf("%w: status %q", ErrMalformed, *p.Status)
	}
	if p.Type == nil || *p.Type != TypeFeatureCollection {
		return nil, ErrUnknownType
	}
	if p.Features == nil {
		return nil, fmt.Errorf("%w: missing features", ErrMalformed)
	}

	out := make([]entity.Feature, 0, len(*p.Features))
	for i, raw := range *p.Features {
		var rf rawFeature
		if err := json.Unmarshal(raw, &rf); err != nil {
			return nil, fmt.Errorf("%w: feature %d: %w", ErrMalformed, i, err)
		}
		if rf.Type == nil || *rf.Type != TypeFeature {
			continue
		}
		f, err := rf.feature()
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %s", ErrMalformed, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (rf rawFeature) feature() (entity.Feature, error) {
	props, geo := rf.Properties, rf.Geometry
	switch {
	case props == nil:
		return entity.Feature{}, errors.New("missing properties")
	case geo == nil:
		return entity.Feature{}, errors.New("missing geometry")
	case props.Type == nil || props.Index == nil:
		return entity.Feature{}, errors.New("missing type or index")
	case len(props.Color) != 4:
		return entity.Feature{}, fmt.Errorf("color has %d components", len(props.Color))
	case len(geo.Coordinates) != 3:
		return entity.Feature{}, fmt.Errorf("coordinates have %d components", len(geo.Coordinates))
	}
	f := entity.Feature{
		Category: *props.Type,
		Index:    *props.Index,
		Color:    [4]int32(props.Color),
		Position: entity.Vec3(geo.Coordinates),
		Label:    props.Text,
		Flags:    entity.Flags(props.Flags),
	}
	var err error
	if f.Rotation, err = optionalVec(props.Ang, "ang"); err != nil {
		return entity.Feature{}, err
	}
	if f.Velocity, err = optionalVec(props.Vel, "vel"); err != nil {
		return entity.Feature{}, err
	}
	return f, nil
}

func optionalVec(v []float32, name string) (*entity.Vec3, error) {
	if v == nil {
		return nil, nil
	}
	if len(v) != 3 {
		return nil, fmt.Errorf("%s has %d components", name, len(v))
	}
	out := entity.Vec3(v)
	return &out, nil
}
