// Package terrain turns a parsed tile map into a depth-ordered layer model
// with flat block lookups and per-layer render geometry.
package terrain

import (
	"fmt"
	"log"
	"sort"

	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/tile"
	"github.com/milk9111/tileworlds/tmx"
)

// Model is the terrain of one world. Depth numbers are only meaningful for
// the lifetime of the model; they shift when layer visibility changes.
type Model struct {
	Name     string
	Width    int
	Height   int
	TileSize int

	Properties tmx.Properties

	layers []*Layer
	// blocks[depth][y*Width+x]; nil rows for object layers.
	blocks [][]tile.BlockType
	under  []*Layer
	over   []*Layer
}

var mapHints = map[string]bool{"type": true, "visible": true}

// New builds the layer registry of m. Unknown layers and hidden drawable
// layers are discarded; the rest get contiguous depths in authoring order.
func New(m *tmx.Map) (*Model, error) {
	ts := m.TileWidth
	if ts <= 0 {
		ts = common.TileSize
	}
	model := &Model{
		Name:       m.Name,
		Width:      m.Width,
		Height:     m.Height,
		TileSize:   ts,
		Properties: m.Properties,
	}
	warnUnknownProperties(m.Name, "map", m.Properties)

	for i := range m.Layers {
		src := &m.Layers[i]
		kind := KindOf(src.Name, src.Properties)
		if kind == KindUnknown {
			log.Printf("terrain: %s: skipping unrecognized layer %q", m.Name, src.Name)
			continue
		}
		warnUnknownProperties(m.Name, "layer "+src.Name, src.Properties)

		visible := src.Visible()
		if v, ok, err := src.Properties.Bool("visible"); err != nil {
			return nil, fmt.Errorf("terrain: %s: %w", m.Name, err)
		} else if ok {
			visible = v
		}
		if !visible && !kind.Annotation() {
			continue
		}

		ly := &Layer{
			Name:    src.Name,
			Kind:    kind,
			Depth:   len(model.layers),
			Visible: visible,
		}
		var row []tile.BlockType
		switch src.Type() {
		case tmx.LayerTiles:
			tiles, err := src.Tiles(m.Width, m.Height)
			if err != nil {
				return nil, fmt.Errorf("terrain: %s: %w", m.Name, err)
			}
			ly.Tiles = tiles
			row = make([]tile.BlockType, len(tiles))
			for j, t := range tiles {
				row[j] = t.Block
			}
		case tmx.LayerObjects:
			if err := model.addObjects(ly, src.Objects); err != nil {
				return nil, fmt.Errorf("terrain: %s: layer %q: %w", m.Name, src.Name, err)
			}
		}

		model.layers = append(model.layers, ly)
		model.blocks = append(model.blocks, row)
		if !kind.Drawable() {
			continue
		}
		if kind == KindOverTerrain {
			model.over = append(model.over, ly)
		} else {
			model.under = append(model.under, ly)
		}
	}
	return model, nil
}

func warnUnknownProperties(mapName, owner string, props tmx.Properties) {
	for _, p := range props.List {
		if !mapHints[p.Name] {
			log.Printf("terrain: %s: %s: ignoring property %q", mapName, owner, p.Name)
		}
	}
}

// addObjects converts pixel-space objects to tile units. Tile objects are
// anchored at their bottom-left corner in the map format and are moved to
// top-left here.
func (m *Model) addObjects(ly *Layer, objs []tmx.Object) error {
	ts := float64(m.TileSize)
	for _, o := range objs {
		if o.VisibleRaw != nil && *o.VisibleRaw == 0 && !ly.Kind.Annotation() {
			continue
		}
		if !o.IsTile() {
			ly.Shapes = append(ly.Shapes, Shape{
				ID:         o.ID,
				Name:       o.Name,
				Bounds:     common.Rect{X: o.X / ts, Y: o.Y / ts, Width: o.Width / ts, Height: o.Height / ts},
				Rotation:   o.Rotation,
				Properties: o.Properties,
			})
			continue
		}

		d, err := tile.Decode(o.GID)
		if err != nil {
			return fmt.Errorf("object %d: %w", o.ID, err)
		}
		w, h := o.Width, o.Height
		if w == 0 {
			w = ts
		}
		if h == 0 {
			h = ts
		}
		ly.Objects = append(ly.Objects, Object{
			ID:       o.ID,
			Tile:     d,
			Bounds:   common.Rect{X: o.X / ts, Y: (o.Y - h) / ts, Width: w / ts, Height: h / ts},
			Rotation: o.Rotation,
		})
	}
	return nil
}

func (m *Model) Layers() []*Layer { return m.layers }

// Layer returns the layer at depth, or nil.
func (m *Model) Layer(depth int) *Layer {
	if depth < 0 || depth >= len(m.layers) {
		return nil
	}
	return m.layers[depth]
}

// LayersOf returns the kept layers of kind k in depth order.
func (m *Model) LayersOf(k LayerKind) []*Layer {
	var out []*Layer
	for _, ly := range m.layers {
		if ly.Kind == k {
			out = append(out, ly)
		}
	}
	return out
}

// Under returns the drawable layers painted before entities.
func (m *Model) Under() []*Layer { return m.under }

// Over returns the layers painted after entities, such as roofs.
func (m *Model) Over() []*Layer { return m.over }

func (m *Model) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// BlockAt returns the grid block at (x, y) on the layer at depth. Object
// layers and out-of-range lookups return Blank.
func (m *Model) BlockAt(depth, x, y int) tile.BlockType {
	if depth < 0 || depth >= len(m.blocks) || !m.InBounds(x, y) {
		return tile.Blank
	}
	row := m.blocks[depth]
	if row == nil {
		return tile.Blank
	}
	return row[y*m.Width+x]
}

// Blocks exposes the flat block row of a layer.
func (m *Model) Blocks(depth int) []tile.BlockType {
	if depth < 0 || depth >= len(m.blocks) {
		return nil
	}
	return m.blocks[depth]
}

// FlipKeys returns every distinct flip key used by drawable tiles, sorted.
func (m *Model) FlipKeys() []tile.FlipKey {
	seen := make(map[tile.FlipKey]struct{})
	add := func(d tile.Decoded) {
		if !d.IsBlank() && d.Flipped {
			seen[d.FlipKey] = struct{}{}
		}
	}
	for _, ly := range m.layers {
		if !ly.Kind.Drawable() {
			continue
		}
		for _, t := range ly.Tiles {
			add(t)
		}
		for _, o := range ly.Objects {
			add(o.Tile)
		}
	}

	keys := make([]tile.FlipKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
