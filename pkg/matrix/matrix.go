package matrix

import (
	"encoding/json"
	"fmt"
)

// Matrix is an NxN Dependency Structure Matrix: the ordered visible
// nodes define both the rows and the columns, and each cell holds the
// aggregated dependency weight from the row node's subtree to the
// column node's subtree.
//
// A Matrix is immutable once built; redraws reuse the cached instance
// until the configuration changes.
type Matrix struct {
	Nodes       []string     `json:"nodes" bson:"nodes"`
	Cells       [][]int      `json:"cells" bson:"cells"`
	Constraints []Constraint `json:"constraints,omitempty" bson:"constraints,omitempty"`
}

// Constraint is an externally supplied partition constraint: an
// ordering hint grouping strongly related nodes adjacently. The
// builder applies constraints as a stable secondary sort and otherwise
// passes them through opaquely.
type Constraint struct {
	Members []string `json:"members" bson:"members"`
}

// Size returns the number of visible nodes (rows and columns).
func (m Matrix) Size() int { return len(m.Nodes) }

// Empty reports whether the matrix has zero visible nodes. An empty
// matrix is a valid degenerate state, not an error.
func (m Matrix) Empty() bool { return len(m.Nodes) == 0 }

// Weight returns the cell weight at (row i, column j), or 0 for
// out-of-range indices.
func (m Matrix) Weight(i, j int) int {
	if i < 0 || j < 0 || i >= len(m.Cells) || j >= len(m.Cells[i]) {
		return 0
	}
	return m.Cells[i][j]
}

// Index returns the row/column index of the given node ID, or -1 if
// the node is not visible.
func (m Matrix) Index(id string) int {
	for i, n := range m.Nodes {
		if n == id {
			return i
		}
	}
	return -1
}

// Total returns the sum of all cell weights. Useful for weight
// conservation checks: the total is invariant under expansion depth.
func (m Matrix) Total() int {
	sum := 0
	for _, row := range m.Cells {
		for _, w := range row {
			sum += w
		}
	}
	return sum
}

// MarshalMatrix serializes a matrix to JSON bytes for caching and the
// HTTP API.
func MarshalMatrix(m Matrix) ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalMatrix deserializes JSON bytes into a matrix, validating
// that the cell grid is square and matches the node list.
func UnmarshalMatrix(data []byte) (Matrix, error) {
	var m Matrix
	if err := json.Unmarshal(data, &m); err != nil {
		return Matrix{}, fmt.Errorf("unmarshal matrix: %w", err)
	}
	if len(m.Cells) != len(m.Nodes) {
		return Matrix{}, fmt.Errorf("matrix has %d rows for %d nodes", len(m.Cells), len(m.Nodes))
	}
	for i, row := range m.Cells {
		if len(row) != len(m.Nodes) {
			return Matrix{}, fmt.Errorf("matrix row %d has %d columns for %d nodes", i, len(row), len(m.Nodes))
		}
	}
	return m, nil
}
