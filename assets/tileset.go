// Package assets provides the base tileset image: a PNG from disk, or a
// generated placeholder with one flat colour per block type.
package assets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"github.com/milk9111/tileworlds/tile"
)

var palette = [tile.BlockCount]color.RGBA{
	tile.Grass:        colornames.Forestgreen,
	tile.Dirt:         colornames.Saddlebrown,
	tile.Sand:         colornames.Sandybrown,
	tile.Water:        colornames.Royalblue,
	tile.Tree:         colornames.Darkgreen,
	tile.Bush:         colornames.Olivedrab,
	tile.Rock:         colornames.Slategray,
	tile.Fence:        colornames.Burlywood,
	tile.Path:         colornames.Tan,
	tile.Floor:        colornames.Wheat,
	tile.Carpet:       colornames.Indianred,
	tile.BuildingWall: colornames.Firebrick,
	tile.Roof:         colornames.Darkred,
	tile.Window:       colornames.Lightskyblue,
	tile.SlidingDoor:  colornames.Sienna,
	tile.Table:        colornames.Peru,
	tile.Counter:      colornames.Chocolate,
	tile.Bed:          colornames.Lightpink,
	tile.Flowers:      colornames.Hotpink,
	tile.Bridge:       colornames.Goldenrod,
	tile.Stairs:       colornames.Gray,
	tile.Lamp:         colornames.Gold,
	tile.Barrier:      colornames.Black,
}

// Colour returns the placeholder colour of b. Blank is transparent.
func Colour(b tile.BlockType) color.RGBA {
	if !b.Valid() {
		return color.RGBA{}
	}
	return palette[b]
}

// Placeholder draws a tileset of columns tiles per row with one tile per
// block type. Each tile gets a dark notch in its top-left corner so mirrored
// variants can be told apart.
func Placeholder(tileSize, columns int) *image.RGBA {
	if columns <= 0 {
		columns = int(tile.BlockCount)
	}
	rows := (int(tile.BlockCount) + columns - 1) / columns
	img := image.NewRGBA(image.Rect(0, 0, columns*tileSize, rows*tileSize))

	notch := tileSize / 4
	if notch < 1 {
		notch = 1
	}
	for b := tile.Grass; b < tile.BlockCount; b++ {
		x := int(b) % columns * tileSize
		y := int(b) / columns * tileSize
		r := image.Rect(x, y, x+tileSize, y+tileSize)
		draw.Draw(img, r, image.NewUniform(palette[b]), image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(x, y, x+notch, y+notch), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)
	}
	return img
}

// LoadTileset decodes a PNG tileset from disk.
func LoadTileset(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", path, err)
	}
	return img, nil
}

// Tileset loads path, or builds the placeholder when path is empty.
func Tileset(path string, tileSize, columns int) (image.Image, error) {
	if path == "" {
		return Placeholder(tileSize, columns), nil
	}
	return LoadTileset(path)
}
