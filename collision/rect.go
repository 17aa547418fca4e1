// Package collision derives merged static collision rectangles from a
// terrain model and registers them as fixtures in a world's physics space.
package collision

import (
	"math"

	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/terrain"
	"github.com/milk9111/tileworlds/tile"
)

// Rect is a candidate or merged collision rectangle in tile units.
type Rect struct {
	Bounds   common.Rect
	Rotation float64
	Block    tile.BlockType
	// Interactable rectangles become sensors and may carry a door link.
	Interactable bool
}

// Singleton reports whether r must stay unmerged.
func (r Rect) Singleton() bool {
	return r.Rotation != 0 || r.Interactable
}

// Cell is the tile under the rectangle's centre.
func (r Rect) Cell() common.TilePoint {
	cx := r.Bounds.X + r.Bounds.Width/2
	cy := r.Bounds.Y + r.Bounds.Height/2
	return common.TilePoint{X: int(math.Floor(cx)), Y: int(math.Floor(cy))}
}

func classify(b tile.BlockType) (collidable, interactable bool) {
	return tile.IsCollidable(b), tile.IsInteractable(b)
}

// Candidates enumerates one rectangle per blocking cell plus one per
// blocking object or collision shape.
//
// A non-blank cell on a collisions layer always blocks. Otherwise the
// top-most blocking under-terrain or terrain tile decides, looking through
// decoration. A bridge hides everything beneath it, so water under a bridge
// stays walkable.
func Candidates(m *terrain.Model) []Rect {
	grids, marks := gridLayers(m)

	var out []Rect
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if r, ok := cellRect(m, grids, marks, x, y); ok {
				out = append(out, r)
			}
		}
	}

	for _, ly := range m.Layers() {
		switch ly.Kind {
		case terrain.KindObjects:
			for _, o := range ly.Objects {
				solid, interact := classify(o.Tile.Block)
				if !solid && !interact {
					continue
				}
				out = append(out, Rect{Bounds: o.Bounds, Rotation: o.Rotation, Block: o.Tile.Block, Interactable: interact && !solid})
			}
		case terrain.KindCollisions:
			for _, s := range ly.Shapes {
				if s.Bounds.Width <= 0 || s.Bounds.Height <= 0 {
					continue
				}
				out = append(out, Rect{Bounds: s.Bounds, Rotation: s.Rotation, Block: tile.Barrier})
			}
			for _, o := range ly.Objects {
				out = append(out, Rect{Bounds: o.Bounds, Rotation: o.Rotation, Block: o.Tile.Block})
			}
		}
	}
	return out
}

func gridLayers(m *terrain.Model) (grids, marks []*terrain.Layer) {
	for _, ly := range m.Layers() {
		if !ly.IsGrid() {
			continue
		}
		switch ly.Kind {
		case terrain.KindUnderTerrain, terrain.KindTerrain:
			grids = append(grids, ly)
		case terrain.KindCollisions:
			marks = append(marks, ly)
		}
	}
	return grids, marks
}

// Blocked reports whether grid cell (x, y) is off the map or would get a
// candidate rectangle. Objects are not considered.
func Blocked(m *terrain.Model, x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return true
	}
	grids, marks := gridLayers(m)
	_, ok := cellRect(m, grids, marks, x, y)
	return ok
}

func cellRect(m *terrain.Model, grids, marks []*terrain.Layer, x, y int) (Rect, bool) {
	i := y*m.Width + x
	at := common.Rect{X: float64(x), Y: float64(y), Width: 1, Height: 1}

	for j := len(marks) - 1; j >= 0; j-- {
		if b := marks[j].Tiles[i].Block; b != tile.Blank {
			return Rect{Bounds: at, Block: b}, true
		}
	}
	for j := len(grids) - 1; j >= 0; j-- {
		b := grids[j].Tiles[i].Block
		if b == tile.Bridge {
			return Rect{}, false
		}
		solid, interact := classify(b)
		if solid || interact {
			return Rect{Bounds: at, Block: b, Interactable: interact && !solid}, true
		}
	}
	return Rect{}, false
}

// Borders returns four rectangles fencing the map, pad tiles thick.
func Borders(width, height int, pad float64) []Rect {
	w, h := float64(width), float64(height)
	return []Rect{
		{Bounds: common.Rect{X: -pad, Y: -pad, Width: w + 2*pad, Height: pad}, Block: tile.Barrier},
		{Bounds: common.Rect{X: -pad, Y: h, Width: w + 2*pad, Height: pad}, Block: tile.Barrier},
		{Bounds: common.Rect{X: -pad, Y: 0, Width: pad, Height: h}, Block: tile.Barrier},
		{Bounds: common.Rect{X: w, Y: 0, Width: pad, Height: h}, Block: tile.Barrier},
	}
}

// Extract returns the merged rectangle set of m followed by its borders.
func Extract(m *terrain.Model, pad float64) []Rect {
	return append(Merge(Candidates(m)), Borders(m.Width, m.Height, pad)...)
}
