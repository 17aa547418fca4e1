// Package render draws terrain geometry and entity boxes with ebiten.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/tileworlds/atlas"
	"github.com/milk9111/tileworlds/terrain"
)

// maxQuads keeps every vertex index of a batch within uint16.
const maxQuads = (1 << 16) / terrain.VerticesPerQuad

// View maps world pixels to screen pixels: screen = (world - origin) * zoom.
type View struct {
	OriginX float64
	OriginY float64
	Zoom    float64
}

// Centred returns the view of a screen sw x sh pixels centred on (cx, cy)
// in world pixels.
func Centred(cx, cy float64, sw, sh int, zoom float64) View {
	if zoom <= 0 {
		zoom = 1
	}
	return View{
		OriginX: cx - float64(sw)/2/zoom,
		OriginY: cy - float64(sh)/2/zoom,
		Zoom:    zoom,
	}
}

func (v View) Apply(x, y float64) (float32, float32) {
	return float32((x - v.OriginX) * v.Zoom), float32((y - v.OriginY) * v.Zoom)
}

type Renderer struct {
	texture *ebiten.Image
	white   *ebiten.Image

	verts []ebiten.Vertex
	idx   []uint16
}

func New(a *atlas.Atlas) *Renderer {
	r := &Renderer{white: ebiten.NewImage(1, 1)}
	r.white.Fill(color.White)
	r.SetAtlas(a)
	return r
}

// SetAtlas uploads the atlas image as the terrain texture.
func (r *Renderer) SetAtlas(a *atlas.Atlas) {
	if r.texture != nil {
		r.texture.Deallocate()
	}
	r.texture = ebiten.NewImageFromImage(a.Image())
}

// DrawWorld draws m in depth order: under layers, then entities, then over
// layers.
func (r *Renderer) DrawWorld(dst *ebiten.Image, m *terrain.Model, v View, entities func(dst *ebiten.Image)) {
	r.DrawLayers(dst, m.Under(), v)
	if entities != nil {
		entities(dst)
	}
	r.DrawLayers(dst, m.Over(), v)
}

func (r *Renderer) DrawLayers(dst *ebiten.Image, layers []*terrain.Layer, v View) {
	for _, ly := range layers {
		for _, span := range batches(len(ly.Vertices) / terrain.VerticesPerQuad) {
			quads := ly.Vertices[span[0]*terrain.VerticesPerQuad : span[1]*terrain.VerticesPerQuad]
			r.verts, r.idx = appendBatch(r.verts[:0], r.idx[:0], quads, v)
			dst.DrawTriangles(r.verts, r.idx, r.texture, nil)
		}
	}
}

// DrawBox fills a rectangle given in world pixels.
func (r *Renderer) DrawBox(dst *ebiten.Image, x, y, w, h float64, clr color.RGBA, v View) {
	sx, sy := v.Apply(x, y)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w*v.Zoom, h*v.Zoom)
	op.GeoM.Translate(float64(sx), float64(sy))
	op.ColorScale.ScaleWithColor(clr)
	dst.DrawImage(r.white, op)
}

// batches splits n quads into [start, end) spans of at most maxQuads.
func batches(n int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += maxQuads {
		end := start + maxQuads
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// appendBatch converts quads to ebiten vertices, two triangles per quad.
func appendBatch(verts []ebiten.Vertex, idx []uint16, quads []terrain.Vertex, v View) ([]ebiten.Vertex, []uint16) {
	for i := 0; i+terrain.VerticesPerQuad <= len(quads); i += terrain.VerticesPerQuad {
		base := uint16(len(verts))
		for _, q := range quads[i : i+terrain.VerticesPerQuad] {
			dx, dy := v.Apply(float64(q.DstX), float64(q.DstY))
			verts = append(verts, ebiten.Vertex{
				DstX: dx, DstY: dy,
				SrcX: q.SrcX, SrcY: q.SrcY,
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
			})
		}
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, idx
}
