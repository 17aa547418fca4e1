package collision

import "sort"

// Merge greedily joins edge-adjacent rectangles of the same block type:
// first along rows, then the row bands along columns. Rotated and
// interactable rectangles pass through untouched, after the merged ones.
//
// Running the column pass first on raw cells can only give as many or more
// rectangles, so the pass order is fixed.
func Merge(rects []Rect) []Rect {
	var grid, singles []Rect
	for _, r := range rects {
		if r.Singleton() {
			singles = append(singles, r)
		} else {
			grid = append(grid, r)
		}
	}
	out := mergeVertical(mergeHorizontal(grid))
	return append(out, singles...)
}

func mergeHorizontal(rects []Rect) []Rect {
	sorted := append([]Rect(nil), rects...)
	sort.Slice(sorted, func(i, j int) bool { return rowLess(sorted[i], sorted[j]) })

	return sweep(sorted, func(cur, r Rect) bool {
		return r.Bounds.Y == cur.Bounds.Y &&
			r.Bounds.Height == cur.Bounds.Height &&
			r.Bounds.X == cur.Bounds.Right()
	}, func(cur *Rect, r Rect) {
		cur.Bounds.Width += r.Bounds.Width
	})
}

func mergeVertical(rects []Rect) []Rect {
	sorted := append([]Rect(nil), rects...)
	sort.Slice(sorted, func(i, j int) bool { return columnLess(sorted[i], sorted[j]) })

	return sweep(sorted, func(cur, r Rect) bool {
		return r.Bounds.X == cur.Bounds.X &&
			r.Bounds.Width == cur.Bounds.Width &&
			r.Bounds.Y == cur.Bounds.Bottom()
	}, func(cur *Rect, r Rect) {
		cur.Bounds.Height += r.Bounds.Height
	})
}

// sweep folds sorted rectangles into a running current one while adjacent
// reports a match with the same block type.
func sweep(sorted []Rect, adjacent func(cur, r Rect) bool, grow func(cur *Rect, r Rect)) []Rect {
	if len(sorted) == 0 {
		return nil
	}
	out := make([]Rect, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r.Block == cur.Block && adjacent(cur, r) {
			grow(&cur, r)
			continue
		}
		out = append(out, cur)
		cur = r
	}
	return append(out, cur)
}

func rowLess(a, b Rect) bool {
	if a.Bounds.Y != b.Bounds.Y {
		return a.Bounds.Y < b.Bounds.Y
	}
	if a.Bounds.X != b.Bounds.X {
		return a.Bounds.X < b.Bounds.X
	}
	return tieLess(a, b)
}

func columnLess(a, b Rect) bool {
	if a.Bounds.X != b.Bounds.X {
		return a.Bounds.X < b.Bounds.X
	}
	if a.Bounds.Y != b.Bounds.Y {
		return a.Bounds.Y < b.Bounds.Y
	}
	return tieLess(a, b)
}

func tieLess(a, b Rect) bool {
	if a.Block != b.Block {
		return a.Block < b.Block
	}
	if a.Bounds.Width != b.Bounds.Width {
		return a.Bounds.Width < b.Bounds.Width
	}
	return a.Bounds.Height < b.Bounds.Height
}
