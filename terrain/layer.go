package terrain

import (
	"strings"

	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/tile"
	"github.com/milk9111/tileworlds/tmx"
)

// LayerKind is the closed set of roles a map layer can play.
type LayerKind int

const (
	KindUnknown LayerKind = iota
	KindUnderTerrain
	KindTerrain
	KindOverTerrain
	KindObjects
	KindCollisions
	KindBuildings
)

var kindNames = map[string]LayerKind{
	"underterrain": KindUnderTerrain,
	"under":        KindUnderTerrain,
	"terrain":      KindTerrain,
	"overterrain":  KindOverTerrain,
	"over":         KindOverTerrain,
	"objects":      KindObjects,
	"collisions":   KindCollisions,
	"buildings":    KindBuildings,
}

func (k LayerKind) String() string {
	switch k {
	case KindUnderTerrain:
		return "underterrain"
	case KindTerrain:
		return "terrain"
	case KindOverTerrain:
		return "overterrain"
	case KindObjects:
		return "objects"
	case KindCollisions:
		return "collisions"
	case KindBuildings:
		return "buildings"
	default:
		return "unknown"
	}
}

// Drawable reports whether the layer produces render geometry.
func (k LayerKind) Drawable() bool {
	switch k {
	case KindUnderTerrain, KindTerrain, KindOverTerrain, KindObjects:
		return true
	}
	return false
}

// Annotation layers carry metadata only. They are kept even when hidden in
// the authoring tool, which is how they are usually saved.
func (k LayerKind) Annotation() bool {
	return k == KindCollisions || k == KindBuildings
}

// KindOf classifies a layer by its "type" property, falling back to its name.
// Case and trailing digits are ignored, so "Terrain2" is a terrain layer.
func KindOf(name string, props tmx.Properties) LayerKind {
	if v, ok := props.Get("type"); ok {
		if k := kindFromName(v); k != KindUnknown {
			return k
		}
	}
	return kindFromName(name)
}

func kindFromName(name string) LayerKind {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimRight(n, "0123456789")
	n = strings.NewReplacer("-", "", "_", "", " ", "").Replace(n)
	return kindNames[n]
}

// Layer is one kept layer of a map. Tile layers fill Tiles, object groups
// fill Objects (tile objects) and Shapes (plain annotation shapes).
type Layer struct {
	Name    string
	Kind    LayerKind
	Depth   int
	Visible bool

	Tiles   []tile.Decoded
	Objects []Object
	Shapes  []Shape

	// Vertices holds four vertices per quad once geometry is built.
	Vertices []Vertex
}

func (l *Layer) IsGrid() bool {
	return l.Tiles != nil
}

// Object is a free-floating tile. Position and size are in tiles, with the
// origin at the top-left corner. Rotation is in degrees around the
// bottom-left corner, as authored.
type Object struct {
	ID       int
	Tile     tile.Decoded
	Bounds   common.Rect
	Rotation float64
}

// Shape is an annotation object without a tile, in tile units.
type Shape struct {
	ID         int
	Name       string
	Bounds     common.Rect
	Rotation   float64
	Properties tmx.Properties
}

// Cell returns the tile containing the shape's centre.
func (s Shape) Cell() common.TilePoint {
	cx := s.Bounds.X + s.Bounds.Width/2
	cy := s.Bounds.Y + s.Bounds.Height/2
	return common.TilePoint{X: int(cx), Y: int(cy)}
}
