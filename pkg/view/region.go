package view

import "github.com/depmatrix/depmatrix/pkg/layout"

// RegionKind discriminates the interactive surfaces of a rendered
// matrix.
type RegionKind int

const (
	// RegionCell is one weight cell at (Row, Col).
	RegionCell RegionKind = iota
	// RegionRow is a row label spanning the grid width.
	RegionRow
	// RegionColumn is a column label spanning the grid height.
	RegionColumn
)

// String returns the wire name used by the hit-test API.
func (k RegionKind) String() string {
	switch k {
	case RegionCell:
		return "cell"
	case RegionRow:
		return "row"
	default:
		return "column"
	}
}

// Region identifies what an interactive surface refers to. From is the
// row node and To the column node; row and column regions carry only
// the one that applies.
type Region struct {
	Kind RegionKind `json:"kind"`
	Row  int        `json:"row"`
	Col  int        `json:"col"`
	From string     `json:"from,omitempty"`
	To   string     `json:"to,omitempty"`
}

// RegionEntry pairs a region with its viewport bounds. Renderers
// register entries in paint order; hit testing returns the first
// entry containing a point, so entries painted first win.
type RegionEntry struct {
	Region Region      `json:"region"`
	Bounds layout.Rect `json:"bounds"`
}
