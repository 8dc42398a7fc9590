package matrix

import (
	"fmt"
	"strings"

	"github.com/depmatrix/depmatrix/pkg/graph"
)

// DefaultThreshold is the branching threshold above which an expanded
// node's children are bucketed into synthetic grouping nodes. Tunable
// via configuration.
const DefaultThreshold = 24

// Expand applies an expansion of the given node to the configuration:
// the node joins the expansion set and, wherever it is visible, its
// children take its place. If the node has more children than the
// branching threshold, synthetic grouping nodes are inserted into the
// optimized graph first (idempotently), and the groups take the
// children's place instead.
//
// The possibly-extended optimized graph is returned and must replace
// the caller's copy. Returns graph.ErrUnknownNode if the node does not
// exist in the optimized graph.
func Expand(cfg Configuration, id string, g *graph.Graph, threshold int) (Configuration, *graph.Graph, error) {
	if !g.Contains(id) {
		return cfg, g, fmt.Errorf("expand: %w: %s", graph.ErrUnknownNode, id)
	}
	g = groupChildren(g, id, threshold)

	out := cfg.Clone()
	out.Expanded[id] = true

	base, neighbors := splitVisible(g, out)
	out.Visible = append(deriveVisible(g, base, out.Expanded), neighbors...)
	return out, g, nil
}

// splitVisible partitions the current visible list into the base nodes
// the subtree walk restarts from and the carried-over focus neighbors.
//
// Without a focus the base is the root's children. With a focus the
// base is the anchor's children; visible nodes outside the anchor's
// subtree were admitted by the focus for their dependency weight and
// are carried over untouched.
func splitVisible(g *graph.Graph, cfg Configuration) (base, neighbors []string) {
	top := g.Root()
	if cfg.Focused() {
		top = cfg.Anchor
	}
	kids, err := g.Children(top)
	if err != nil {
		return nil, nil
	}
	base = kids
	if !cfg.Focused() {
		return base, nil
	}
	for _, v := range cfg.Visible {
		if v != cfg.Anchor && !g.IsDescendant(v, cfg.Anchor) {
			neighbors = append(neighbors, v)
		}
	}
	return base, neighbors
}

// groupChildren buckets the children of parent into synthetic groups
// when their count exceeds the branching threshold. Children sharing a
// naming prefix one separator segment below the parent are absorbed
// into one group; buckets with a single member stay direct children.
// The operation is idempotent because group insertion is.
func groupChildren(g *graph.Graph, parent string, threshold int) *graph.Graph {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	kids, err := g.Children(parent)
	if err != nil || len(kids) <= threshold {
		return g
	}

	parentNode, _ := g.Node(parent)
	buckets := make(map[string]int)
	var order []string
	for _, c := range kids {
		child, ok := g.Node(c)
		if !ok || child.IsGroup() {
			continue
		}
		prefix := groupPrefix(parentNode.DisplayLabel(), child.DisplayLabel())
		if prefix == "" {
			continue
		}
		if buckets[prefix] == 0 {
			order = append(order, prefix)
		}
		buckets[prefix]++
	}

	for _, prefix := range order {
		if buckets[prefix] < 2 {
			continue
		}
		// Idempotent; failure here only means the bucket stays ungrouped.
		_, _ = g.InsertSyntheticGroup(parent, prefix)
	}
	return g
}

// groupPrefix computes the grouping prefix for a child label one
// segment below the parent label, e.g. parent "a" and child "a/b/c.go"
// yield "a/b". Returns "" when the child has no further segment to
// group on.
func groupPrefix(parentLabel, childLabel string) string {
	rel := childLabel
	base := ""
	for _, sep := range []string{"/", "."} {
		if strings.HasPrefix(rel, parentLabel+sep) {
			base = parentLabel + sep
			rel = rel[len(base):]
			break
		}
	}
	idx := strings.IndexAny(rel, "/.")
	if idx <= 0 {
		return ""
	}
	return base + rel[:idx]
}
