package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/webmap/internal/entity"
)

const samplePayload = `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":5,"index":3,"color":[255,0,0,255]},"geometry":{"type":"Point","coordinates":[1.0,2.0,3.0]}}]}`

func TestDecode_Sample(t *testing.T) {
	got, err := Decode([]byte(samplePayload))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint8(5), got[0].Category)
	assert.Equal(t, int32(3), got[0].Index)
	assert.Equal(t, [4]int32{255, 0, 0, 255}, got[0].Color)
	assert.Equal(t, entity.Vec3{1, 2, 3}, got[0].Position)
	assert.Nil(t, got[0].Rotation)
	assert.Nil(t, got[0].Velocity)
}

func TestDecode_RemoteError(t *testing.T) {
	_, err := Decode([]byte(`{"status":"err","msg":"invalid obj"}`))
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "invalid obj", re.Msg)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `{"status":`, ErrMalformed},
		{"array top level", `[1,2,3]`, ErrMalformed},
		{"null", `null`, ErrMalformed},
		{"missing status", `{"type":"FeatureCollection","features":[]}`, ErrMalformed},
		{"unknown status", `{"status":"maybe"}`, ErrMalformed},
		{"wrong type", `{"status":"ok","type":"Topology","features":[]}`, ErrUnknownType},
		{"missing type", `{"status":"ok","features":[]}`, ErrUnknownType},
		{"missing features", `{"status":"ok","type":"FeatureCollection"}`, ErrMalformed},
		{"features not array", `{"status":"ok","type":"FeatureCollection","features":{}}`, ErrMalformed},
		{"short coordinates", `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":1,"index":0,"color":[0,0,0,0]},"geometry":{"type":"Point","coordinates":[1,2]}}]}`, ErrMalformed},
		{"missing index", `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":1,"color":[0,0,0,0]},"geometry":{"type":"Point","coordinates":[1,2,3]}}]}`, ErrMalformed},
		{"missing geometry", `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":1,"index":0,"color":[0,0,0,0]}}]}`, ErrMalformed},
		{"type overflow", `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":300,"index":0,"color":[0,0,0,0]},"geometry":{"type":"Point","coordinates":[1,2,3]}}]}`, ErrMalformed},
		{"bad ang", `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":1,"index":0,"color":[0,0,0,0],"ang":[1]},"geometry":{"type":"Point","coordinates":[1,2,3]}}]}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, got)
		})
	}
}

func TestDecode_SkipsNonFeatureEntries(t *testing.T) {
	payload := `{"status":"ok","type":"FeatureCollection","features":[{"type":"Marker"},{"type":"Feature","properties":{"type":2,"index":9,"color":[1,2,3,4]},"geometry":{"type":"Point","coordinates":[4,5,6]}}]}`
	got, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(9), got[0].Index)
}

func TestDecode_EmptyCollection(t *testing.T) {
	got, err := Decode([]byte(`{"status":"ok","type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEncode_RoundTripsOptionalMembers(t *testing.T) {
	rot := entity.Vec3{0, 90, 0}
	vel := entity.Vec3{1, 0, -1}
	snap := entity.Snapshot{Features: []entity.Feature{
		{Category: 12, Index: 4, Color: [4]int32{1, 2, 3, 4}, Position: entity.Vec3{1.5, -2, 3}, Rotation: &rot, Velocity: &vel, Label: "Explorer", Flags: entity.FlagShowOnMap},
		{Category: 1, Index: 5, Position: entity.Vec3{7, 8, 9}},
	}}

	var out bytes.Buffer
	require.NoError(t, Encode(&out, snap))

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &generic))
	assert.Equal(t, "ok", generic["status"])
	assert.Equal(t, "FeatureCollection", generic["type"])
	second := generic["features"].([]any)[1].(map[string]any)["properties"].(map[string]any)
	assert.NotContains(t, second, "ang")
	assert.NotContains(t, second, "vel")
	assert.NotContains(t, second, "text")
	assert.NotContains(t, second, "flags")

	got, err := Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, snap.Features, got)
}

func TestEncode_EmptySnapshotHasFeatureArray(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, entity.Snapshot{}))
	assert.JSONEq(t, `{"status":"ok","type":"FeatureCollection","features":[]}`, out.String())
}

func TestEncode_Unresolved(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, entity.Snapshot{Unresolved: true, Reason: "not found"}))
	assert.JSONEq(t, `{"status":"err","msg":"invalid obj"}`, out.String())
}
