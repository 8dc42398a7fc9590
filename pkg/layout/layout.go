// Package layout computes matrix display geometry.
//
// The layout is intentionally simple: a matrix of n visible nodes is
// an n-by-n grid of uniform cells whose width-to-height ratio is fixed
// at [Aspect], fitted into a viewport. Everything downstream (hit
// testing, terminal rendering, the HTTP geometry endpoint) works from
// the [Geometry] this package produces, so layout math lives here and
// nowhere else.
package layout

// Aspect is the fixed width-to-height ratio of a matrix cell. Cells
// are wider than tall so that row labels and weights stay readable in
// character-cell mediums.
const Aspect = 1.71

// Rect is an axis-aligned rectangle in viewport coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the left/top edge are inside, points on the right/bottom
// edge are not, so adjacent cells never both claim a boundary point.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Geometry describes the fitted grid for one matrix size and viewport.
type Geometry struct {
	Size       int     `json:"size"`       // matrix dimension n
	Bounds     Rect    `json:"bounds"`     // grid placement in the viewport
	CellWidth  float64 `json:"cellWidth"`  // uniform cell width
	CellHeight float64 `json:"cellHeight"` // uniform cell height
}

// Compute fits an n-by-n grid into a w-by-h viewport.
//
// The grid fills the largest area that keeps cells at the fixed aspect
// ratio: the limiting dimension is whichever of the viewport width and
// aspect-scaled height is smaller. A degenerate request (n == 0 or a
// non-positive viewport) yields the zero Geometry.
func Compute(n int, w, h float64) Geometry {
	if n <= 0 || w <= 0 || h <= 0 {
		return Geometry{}
	}
	span := w
	if s := h * Aspect; s < span {
		span = s
	}
	cw := span / float64(n)
	ch := cw / Aspect
	return Geometry{
		Size:       n,
		Bounds:     Rect{W: cw * float64(n), H: ch * float64(n)},
		CellWidth:  cw,
		CellHeight: ch,
	}
}

// Cell returns the rectangle of cell (row, col). Coordinates outside
// the grid return a zero Rect.
func (g Geometry) Cell(row, col int) Rect {
	if row < 0 || col < 0 || row >= g.Size || col >= g.Size {
		return Rect{}
	}
	return Rect{
		X: g.Bounds.X + float64(col)*g.CellWidth,
		Y: g.Bounds.Y + float64(row)*g.CellHeight,
		W: g.CellWidth,
		H: g.CellHeight,
	}
}

// Row returns the rectangle spanning all cells of one row.
func (g Geometry) Row(row int) Rect {
	if row < 0 || row >= g.Size {
		return Rect{}
	}
	return Rect{
		X: g.Bounds.X,
		Y: g.Bounds.Y + float64(row)*g.CellHeight,
		W: g.Bounds.W,
		H: g.CellHeight,
	}
}

// Column returns the rectangle spanning all cells of one column.
func (g Geometry) Column(col int) Rect {
	if col < 0 || col >= g.Size {
		return Rect{}
	}
	return Rect{
		X: g.Bounds.X + float64(col)*g.CellWidth,
		Y: g.Bounds.Y,
		W: g.CellWidth,
		H: g.Bounds.H,
	}
}

// Locate maps a viewport point to grid coordinates. The boolean is
// false when the point falls outside the grid bounds.
func (g Geometry) Locate(x, y float64) (row, col int, ok bool) {
	if g.Size == 0 || !g.Bounds.Contains(x, y) {
		return 0, 0, false
	}
	col = int((x - g.Bounds.X) / g.CellWidth)
	row = int((y - g.Bounds.Y) / g.CellHeight)
	if col >= g.Size {
		col = g.Size - 1
	}
	if row >= g.Size {
		row = g.Size - 1
	}
	return row, col, true
}
