// Package core holds the small geometry and drawing primitives shared by
// the simulation and the terminal renderer. It has no external
// dependencies so the simulation stays free of any UI code.
package core

// Rect is an axis-aligned box. For world rectangles Y grows upward; for
// screen rectangles it grows downward. The maths is the same either way.
type Rect struct {
	X, Y int // Corner with the smallest coordinates
	W, H int
}

// NewRect creates a rectangle.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the first x past the rectangle.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the first y past the rectangle.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains reports whether (x, y) lies inside. Right and Bottom are
// exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Viewport maps world coordinates (origin bottom-left, y up) onto a grid
// of terminal cells (origin top-left, y down).
type Viewport struct {
	World Rect
	Cols  int
	Rows  int
}

// NewViewport creates a viewport. Non-positive sizes are raised to one cell.
func NewViewport(world Rect, cols, rows int) Viewport {
	return Viewport{World: world, Cols: Max(cols, 1), Rows: Max(rows, 1)}
}

// Cell returns the terminal cell covering world point (x, y). Points
// outside the world map outside [0,Cols)x[0,Rows).
func (v Viewport) Cell(x, y int) (col, row int) {
	col = floorScale(x-v.World.X, v.Cols, v.World.W)
	row = v.Rows - 1 - floorScale(y-v.World.Y, v.Rows, v.World.H)
	return col, row
}

// ColumnX returns the world x at the centre of a terminal column.
func (v Viewport) ColumnX(col int) int {
	return v.World.X + (2*col+1)*v.World.W/(2*v.Cols)
}

// RowY returns the world y at the bottom edge of a terminal row.
func (v Viewport) RowY(row int) int {
	return v.World.Y + (v.Rows-1-row)*v.World.H/v.Rows
}

func floorScale(v, num, den int) int {
	if den <= 0 {
		return 0
	}
	p := v * num
	q := p / den
	if p%den != 0 && p < 0 {
		q--
	}
	return q
}

// Clamp restricts val to [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
