package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/webmap/internal/entity"
)

func TestProject(t *testing.T) {
	b := WorldBounds
	tests := []struct {
		name     string
		pos      entity.Vec3
		col, row int
		ok       bool
	}{
		{"top left", entity.Vec3{-324000, -375000, 0}, 0, 0, true},
		{"bottom edge clamps", entity.Vec3{425000, 375000, 0}, 99, 49, true},
		{"middle row", entity.Vec3{60000, 0, 0}, 51, 25, true},
		{"west of map", entity.Vec3{-400000, 0, 0}, 0, 0, false},
		{"south of map", entity.Vec3{0, 400000, 0}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, ok := b.Project(tt.pos, 100, 50)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.col, col)
				assert.Equal(t, tt.row, row)
			}
		})
	}

	_, _, ok := b.Project(entity.Vec3{}, 0, 10)
	assert.False(t, ok, "empty grid")
}

func TestPlot_PlayerDrawnOnTop(t *testing.T) {
	fs := []entity.Feature{
		feature(entity.CategoryBeacon, 1, 0, 0, 0),
		feature(entity.CategoryPlayer, 2, 1, 1, 0),
		feature(entity.CategoryCrate, 3, 2, 2, 0),
		feature(entity.CategoryHub, 4, -300000, -300000, 0),
	}
	cells := plot(WorldBounds, fs, 10, 10)
	assert.Len(t, cells, 2)

	col, row, ok := WorldBounds.Project(fs[0].Position, 10, 10)
	assert.True(t, ok)
	shared := cells[row*10+col]
	assert.Equal(t, 1, shared.feature)
	assert.Equal(t, 3, shared.count)
}

func TestPlot_FirstWinsAtEqualPriority(t *testing.T) {
	fs := []entity.Feature{
		feature(entity.CategoryBeacon, 1, 0, 0, 0),
		feature(entity.CategoryCrate, 2, 0, 0, 0),
	}
	for _, c := range plot(WorldBounds, fs, 4, 4) {
		assert.Equal(t, 0, c.feature)
	}
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, '@', Glyph(entity.CategoryPlayer))
	assert.Equal(t, 'D', Glyph(entity.CategoryVehicleDockingStation))
	assert.Equal(t, '?', Glyph(200))
}
