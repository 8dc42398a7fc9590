package matrix

import (
	"fmt"

	"github.com/depmatrix/depmatrix/pkg/graph"
)

// Focus pins anchor as the active focus and narrows the configuration
// to its dependency neighborhood. m must be the matrix freshly built
// over cfg: focusing changes which weights are even computable, so the
// caller rebuilds first and the weights of that build decide which
// outside nodes stay visible.
//
// The narrowed configuration consists of the anchor's subtree,
// re-derived from the expansion set, followed by the previously visible
// nodes outside the subtree that exchange dependency weight with it in
// the direction(s) of kind. Expansion entries that the new focus makes
// unreachable are dropped from the configuration; the action history
// keeps them, so they are not lost.
//
// Returns graph.ErrUnknownNode for an unknown anchor and
// ErrSyntheticFocus for a synthetic group anchor.
func Focus(cfg Configuration, anchor string, kind FocusKind, m Matrix, g *graph.Graph) (Configuration, error) {
	node, ok := g.Node(anchor)
	if !ok {
		return cfg, fmt.Errorf("focus: %w: %s", graph.ErrUnknownNode, anchor)
	}
	if node.IsGroup() {
		return cfg, fmt.Errorf("%w: %s", ErrSyntheticFocus, anchor)
	}

	out := cfg.Clone()
	out.Anchor = anchor
	out.Kind = kind

	for e := range out.Expanded {
		if e != anchor && !g.IsDescendant(e, anchor) {
			delete(out.Expanded, e)
		}
	}

	kids, err := g.Children(anchor)
	if err != nil {
		return cfg, err
	}
	subtree := deriveVisible(g, kids, out.Expanded)
	if len(subtree) == 0 {
		// Leaf anchor: the node itself is the whole subtree.
		subtree = []string{anchor}
	}
	out.Visible = append(subtree, focusNeighbors(cfg, anchor, kind, m, g)...)
	return out, nil
}

// focusNeighbors selects the previously visible nodes outside the
// anchor's subtree that carry nonzero aggregated weight with the
// subtree in the requested direction(s), preserving their prior order.
func focusNeighbors(cfg Configuration, anchor string, kind FocusKind, m Matrix, g *graph.Graph) []string {
	inSubtree := func(id string) bool {
		return id == anchor || g.IsDescendant(id, anchor)
	}

	var subtreeIdx []int
	for i, v := range m.Nodes {
		if inSubtree(v) {
			subtreeIdx = append(subtreeIdx, i)
		}
	}

	var out []string
	for _, v := range cfg.Visible {
		if inSubtree(v) {
			continue
		}
		j := m.Index(v)
		if j < 0 {
			continue
		}
		keep := false
		for _, i := range subtreeIdx {
			switch kind {
			case FocusOut:
				keep = m.Weight(i, j) > 0
			case FocusIn:
				keep = m.Weight(j, i) > 0
			default:
				keep = m.Weight(i, j) > 0 || m.Weight(j, i) > 0
			}
			if keep {
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}
	return out
}
