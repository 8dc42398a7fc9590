package matrix

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/depmatrix/depmatrix/pkg/graph"
)

// Builder computes matrices from configurations. It needs the
// reference graph for weight aggregation; the optimized graph is
// passed per build and threaded back to the caller.
//
// Build is deterministic given identical inputs. Its only side channel
// is synthetic group insertion into the optimized graph, which is
// itself idempotent.
type Builder struct {
	// Reference is the authoritative graph all cell weights are summed
	// from. Never mutated.
	Reference *graph.Graph

	// Threshold is the branching threshold for synthetic grouping.
	// Zero selects DefaultThreshold.
	Threshold int
}

// NewBuilder creates a builder over the reference graph.
func NewBuilder(ref *graph.Graph, threshold int) *Builder {
	return &Builder{Reference: ref, Threshold: threshold}
}

// Build computes the matrix for a configuration.
//
// Visible nodes are ordered depth-first pre-order over the optimized
// graph restricted to the visible set, with partition constraints
// applied as a stable secondary sort among siblings. Cell (i, j) sums
// the reference edge weights from visible node i's subtree to visible
// node j's subtree in one O(E) pass.
//
// The returned graph is the optimized graph, possibly extended with
// synthetic groups for expanded nodes, and must replace the caller's
// copy. A configuration with zero visible nodes yields an empty matrix
// and no error.
func (b *Builder) Build(cfg Configuration, constraints []Constraint, g *graph.Graph) (Matrix, *graph.Graph, error) {
	if len(cfg.Visible) == 0 {
		return Matrix{Constraints: constraints}, g, nil
	}

	for _, id := range slices.Sorted(maps.Keys(cfg.Expanded)) {
		g = groupChildren(g, id, b.Threshold)
	}

	if err := cfg.Validate(g); err != nil {
		return Matrix{}, g, err
	}

	order, err := b.order(cfg, constraints, g)
	if err != nil {
		return Matrix{}, g, err
	}

	owner, err := b.owners(order, g)
	if err != nil {
		return Matrix{}, g, err
	}

	n := len(order)
	cells := make([][]int, n)
	for i := range cells {
		cells[i] = make([]int, n)
	}
	for _, e := range b.Reference.Edges() {
		i, okFrom := owner[e.From]
		j, okTo := owner[e.To]
		if okFrom && okTo {
			cells[i][j] += e.Weight
		}
	}

	return Matrix{Nodes: order, Cells: cells, Constraints: constraints}, g, nil
}

// order produces the visible node ordering: a pre-order walk of the
// hierarchy that emits visible nodes and descends everywhere else,
// with siblings stably reordered by their first matching constraint.
func (b *Builder) order(cfg Configuration, constraints []Constraint, g *graph.Graph) ([]string, error) {
	visible := make(map[string]bool, len(cfg.Visible))
	for _, v := range cfg.Visible {
		visible[v] = true
	}

	rank := constraintRanks(constraints)
	var out []string
	var walk func(string)
	walk = func(id string) {
		if visible[id] {
			out = append(out, id)
			return
		}
		kids, err := g.Children(id)
		if err != nil {
			return
		}
		ordered := slices.Clone(kids)
		slices.SortStableFunc(ordered, func(a, c string) int {
			return rank(a) - rank(c)
		})
		for _, c := range ordered {
			walk(c)
		}
	}
	if g.Root() != "" {
		walk(g.Root())
	}

	if len(out) != len(cfg.Visible) {
		return nil, fmt.Errorf("%w: ordering reached %d of %d visible nodes", ErrInvalidConfiguration, len(out), len(cfg.Visible))
	}
	return out, nil
}

// owners maps every reference-graph node to the index of its nearest
// visible ancestor by walking each visible subtree once in the
// optimized graph. Synthetic group nodes contribute their contained
// real nodes; they never appear in the reference graph themselves.
func (b *Builder) owners(order []string, g *graph.Graph) (map[string]int, error) {
	owner := make(map[string]int, b.Reference.NodeCount())
	for i, v := range order {
		var claim func(string) error
		claim = func(id string) error {
			if b.Reference.Contains(id) {
				if prev, taken := owner[id]; taken && prev != i {
					return fmt.Errorf("%w: node %s owned by both %s and %s", ErrInvalidConfiguration, id, order[prev], v)
				}
				owner[id] = i
			}
			kids, err := g.Children(id)
			if err != nil {
				return err
			}
			for _, c := range kids {
				if err := claim(c); err != nil {
					return err
				}
			}
			return nil
		}
		if err := claim(v); err != nil {
			return nil, err
		}
	}
	return owner, nil
}

// constraintRanks returns a ranking function: the index of the first
// constraint containing a node's ID, or a sentinel past all
// constraints for unconstrained nodes, so the underlying sibling order
// wins among them.
func constraintRanks(constraints []Constraint) func(string) int {
	if len(constraints) == 0 {
		return func(string) int { return 0 }
	}
	idx := make(map[string]int)
	for i, c := range constraints {
		for _, m := range c.Members {
			if _, seen := idx[m]; !seen {
				idx[m] = i
			}
		}
	}
	return func(id string) int {
		if r, ok := idx[id]; ok {
			return r
		}
		return math.MaxInt
	}
}
