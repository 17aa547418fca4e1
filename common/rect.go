package common

// Rect is an axis-aligned rectangle. Units depend on the caller (tiles for
// terrain and collision data, pixels for rendering).
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive so adjacent rectangles never both contain a point.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Scale returns r with every coordinate multiplied by s.
func (r Rect) Scale(s float64) Rect {
	return Rect{X: r.X * s, Y: r.Y * s, Width: r.Width * s, Height: r.Height * s}
}

// TilePoint is an integer cell coordinate.
type TilePoint struct {
	X, Y int
}

// Centre returns the tile-space centre of the cell.
func (p TilePoint) Centre() (float64, float64) {
	return float64(p.X) + 0.5, float64(p.Y) + 0.5
}
