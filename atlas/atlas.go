// Package atlas bakes mirrored tile variants into a single tileset image.
//
// The base tileset is a grid of square tiles whose index equals the block
// type. Tiles that are authored with a residual mirror flag get a synthesized
// copy appended below the base rows, and the remap table points the flip key
// at the new index.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/milk9111/tileworlds/tile"
)

var (
	ErrAlreadyConverted = errors.New("atlas: already converted")
	ErrImageConsumed    = errors.New("atlas: image consumed by conversion")
	ErrBadTileset       = errors.New("atlas: bad tileset image")
)

// Builder holds the base tileset until Convert is called once.
type Builder struct {
	base      image.Image
	tileSize  int
	columns   int
	baseCount int
	converted bool
}

func NewBuilder(base image.Image, tileSize int) (*Builder, error) {
	if base == nil || tileSize <= 0 {
		return nil, fmt.Errorf("%w: nil image or tile size %d", ErrBadTileset, tileSize)
	}
	b := base.Bounds()
	if b.Dx() < tileSize || b.Dx()%tileSize != 0 || b.Dy()%tileSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d is not a grid of %dpx tiles", ErrBadTileset, b.Dx(), b.Dy(), tileSize)
	}
	cols := b.Dx() / tileSize
	return &Builder{
		base:      base,
		tileSize:  tileSize,
		columns:   cols,
		baseCount: cols * (b.Dy() / tileSize),
	}, nil
}

// Image returns the unconverted base tileset.
func (b *Builder) Image() (image.Image, error) {
	if b.converted {
		return nil, ErrImageConsumed
	}
	return b.base, nil
}

func (b *Builder) BaseCount() int { return b.baseCount }

// Convert grows the tileset by enough rows for one synthesized tile per
// distinct flipped key and returns the finished atlas. Keys without mirror
// flags need no synthesis and are ignored.
func (b *Builder) Convert(keys []tile.FlipKey) (*Atlas, error) {
	if b.converted {
		return nil, ErrAlreadyConverted
	}

	seen := make(map[tile.FlipKey]struct{}, len(keys))
	var flipped []tile.FlipKey
	for _, k := range keys {
		if !k.Flipped() {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		if int(k.Block()) >= b.baseCount {
			return nil, fmt.Errorf("%w: %s has no source tile (tileset holds %d)", ErrBadTileset, k, b.baseCount)
		}
		seen[k] = struct{}{}
		flipped = append(flipped, k)
	}
	sort.Slice(flipped, func(i, j int) bool { return flipped[i] < flipped[j] })

	total := b.baseCount + len(flipped)
	rows := (total + b.columns - 1) / b.columns
	ts := b.tileSize
	dst := image.NewRGBA(image.Rect(0, 0, b.columns*ts, rows*ts))
	draw.Copy(dst, image.Point{}, b.base, b.base.Bounds(), draw.Src, nil)

	a := &Atlas{
		img:      dst,
		tileSize: ts,
		columns:  b.columns,
		count:    total,
		remap:    make(map[tile.FlipKey]int, len(flipped)),
	}
	origin := b.base.Bounds().Min
	for i, k := range flipped {
		idx := b.baseCount + i
		src := a.TileRect(int(k.Block())).Add(origin)
		mirror(dst, a.TileRect(idx).Min, b.base, src, k.Horizontal(), k.Vertical())
		a.remap[k] = idx
	}

	b.converted = true
	b.base = nil
	log.Printf("atlas: %d base tiles, %d synthesized, %dx%d", b.baseCount, len(flipped), dst.Bounds().Dx(), dst.Bounds().Dy())
	return a, nil
}

// mirror writes the src tile into dst at at, flipped along the requested
// axes.
func mirror(dst *image.RGBA, at image.Point, src image.Image, sr image.Rectangle, h, v bool) {
	t := float64(sr.Dx())
	sx, sy := float64(sr.Min.X), float64(sr.Min.Y)
	dx, dy := float64(at.X), float64(at.Y)

	m := f64.Aff3{1, 0, dx - sx, 0, 1, dy - sy}
	if h {
		m[0], m[2] = -1, dx+sx+t
	}
	if v {
		m[4], m[5] = -1, dy+sy+t
	}
	draw.NearestNeighbor.Transform(dst, m, src, sr, draw.Src, nil)
}

// Atlas is the read-only result of a conversion.
type Atlas struct {
	img      *image.RGBA
	tileSize int
	columns  int
	count    int
	remap    map[tile.FlipKey]int
}

func (a *Atlas) Image() *image.RGBA { return a.img }
func (a *Atlas) TileSize() int      { return a.tileSize }
func (a *Atlas) Columns() int       { return a.columns }

// Len is the number of addressable tiles, base plus synthesized.
func (a *Atlas) Len() int { return a.count }

// Index resolves a flip key to an atlas tile index. Unflipped keys map to
// their block type. A flipped key that was never converted falls back to the
// unflipped tile and reports false.
func (a *Atlas) Index(k tile.FlipKey) (int, bool) {
	if !k.Flipped() {
		return int(k.Block()), true
	}
	if idx, ok := a.remap[k]; ok {
		return idx, true
	}
	return int(k.Block()), false
}

// TileRect is the pixel rectangle of tile idx inside the atlas image.
func (a *Atlas) TileRect(idx int) image.Rectangle {
	x := (idx % a.columns) * a.tileSize
	y := (idx / a.columns) * a.tileSize
	return image.Rect(x, y, x+a.tileSize, y+a.tileSize)
}
