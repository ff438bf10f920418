package mapview

import "github.com/joshuapare/webmap/internal/entity"

// Bounds is the world rectangle covered by the map.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// WorldBounds covers the playable area.
var WorldBounds = Bounds{
	MinX: -324698.832031,
	MaxX: 425301.832031,
	MinY: -375000,
	MaxY: 375000,
}

// Project maps a world position onto a cols x rows grid. ok is false when
// the position falls outside b or the grid is empty.
func (b Bounds) Project(pos entity.Vec3, cols, rows int) (col, row int, ok bool) {
	if cols <= 0 || rows <= 0 {
		return 0, 0, false
	}
	fx := (float64(pos[0]) - b.MinX) / (b.MaxX - b.MinX)
	fy := (float64(pos[1]) - b.MinY) / (b.MaxY - b.MinY)
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	col = min(int(fx*float64(cols)), cols-1)
	row = min(int(fy*float64(rows)), rows-1)
	return col, row, true
}

var glyphs = [...]rune{
	entity.CategoryDefault:               '*',
	entity.CategoryBeacon:                'b',
	entity.CategoryCrate:                 'c',
	entity.CategoryHub:                   'H',
	entity.CategoryPing:                  '!',
	entity.CategoryPlayer:                '@',
	entity.CategoryRadarTower:            'R',
	entity.CategoryResource:              'r',
	entity.CategorySpaceElevator:         'E',
	entity.CategoryStartingPod:           'P',
	entity.CategoryTrain:                 'T',
	entity.CategoryTrainStation:          'S',
	entity.CategoryVehicle:               'v',
	entity.CategoryVehicleDockingStation: 'D',
}

// Glyph returns the map character of a category.
func Glyph(category uint8) rune {
	if int(category) < len(glyphs) {
		return glyphs[category]
	}
	return '?'
}

// priority orders features sharing a cell; players are always on top.
func priority(category uint8) int {
	if category == entity.CategoryPlayer {
		return 2
	}
	return 1
}

// cell is one occupied grid position.
type cell struct {
	feature int
	count   int
}

// plot places features onto a cols x rows grid, keyed by row*cols+col.
// When several features share a cell the highest priority wins, then the
// earliest in the list.
func plot(b Bounds, features []entity.Feature, cols, rows int) map[int]cell {
	cells := make(map[int]cell, len(features))
	for i, f := range features {
		col, row, ok := b.Project(f.Position, cols, rows)
		if !ok {
			continue
		}
		k := row*cols + col
		c, taken := cells[k]
		if !taken {
			cells[k] = cell{feature: i, count: 1}
			continue
		}
		c.count++
		if priority(f.Category) > priority(features[c.feature].Category) {
			c.feature = i
		}
		cells[k] = c
	}
	return cells
}
