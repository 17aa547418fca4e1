package terrain

import (
	"log"

	"github.com/milk9111/tileworlds/atlas"
	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/tile"
)

// Vertex is a textured corner in pixels. It mirrors the fields the renderer
// needs without tying this package to a graphics backend.
type Vertex struct {
	DstX, DstY float32
	SrcX, SrcY float32
}

// VerticesPerQuad is the stride of Layer.Vertices. Corners run clockwise
// from the top-left.
const VerticesPerQuad = 4

// BuildGeometry lays out one textured quad per non-blank tile of every
// drawable layer. It can run again after the atlas changes.
func (m *Model) BuildGeometry(a *atlas.Atlas) {
	ts := float32(m.TileSize)
	missing := make(map[tile.FlipKey]struct{})

	src := func(d tile.Decoded) [4][2]float32 {
		idx, ok := a.Index(d.FlipKey)
		if !ok {
			if _, logged := missing[d.FlipKey]; !logged {
				log.Printf("terrain: %s: warning: %s missing from atlas, drawing unflipped", m.Name, d.FlipKey)
				missing[d.FlipKey] = struct{}{}
			}
		}
		return srcCorners(a, idx, d.Rotation)
	}

	for _, ly := range m.layers {
		if !ly.Kind.Drawable() {
			continue
		}
		ly.Vertices = ly.Vertices[:0]

		for i, d := range ly.Tiles {
			if d.IsBlank() {
				continue
			}
			x := float32(i%m.Width) * ts
			y := float32(i/m.Width) * ts
			dst := [4][2]float32{{x, y}, {x + ts, y}, {x + ts, y + ts}, {x, y + ts}}
			ly.Vertices = appendQuad(ly.Vertices, dst, src(d))
		}

		for _, o := range ly.Objects {
			if o.Tile.IsBlank() {
				continue
			}
			ly.Vertices = appendQuad(ly.Vertices, objectCorners(o, m.TileSize), src(o.Tile))
		}
	}
}

func appendQuad(vs []Vertex, dst, src [4][2]float32) []Vertex {
	for i := 0; i < VerticesPerQuad; i++ {
		vs = append(vs, Vertex{DstX: dst[i][0], DstY: dst[i][1], SrcX: src[i][0], SrcY: src[i][1]})
	}
	return vs
}

// srcCorners returns the atlas corners for a tile in destination order
// (TL, TR, BR, BL). A quarter turn rotates which source corner lands where.
func srcCorners(a *atlas.Atlas, idx, rotation int) [4][2]float32 {
	r := a.TileRect(idx)
	tl := [2]float32{float32(r.Min.X), float32(r.Min.Y)}
	tr := [2]float32{float32(r.Max.X), float32(r.Min.Y)}
	br := [2]float32{float32(r.Max.X), float32(r.Max.Y)}
	bl := [2]float32{float32(r.Min.X), float32(r.Max.Y)}

	switch rotation {
	case 90:
		return [4][2]float32{bl, tl, tr, br}
	case -90:
		return [4][2]float32{tr, br, bl, tl}
	default:
		return [4][2]float32{tl, tr, br, bl}
	}
}

// objectCorners places an object quad in pixels, rotated around its
// bottom-left corner.
func objectCorners(o Object, tileSize int) [4][2]float32 {
	b := o.Bounds.Scale(float64(tileSize))
	pts := [4][2]float64{
		{b.X, b.Y},
		{b.Right(), b.Y},
		{b.Right(), b.Bottom()},
		{b.X, b.Bottom()},
	}

	var out [4][2]float32
	for i, p := range pts {
		x, y := common.RotatePoint(p[0], p[1], b.X, b.Bottom(), o.Rotation)
		out[i] = [2]float32{float32(x), float32(y)}
	}
	return out
}
