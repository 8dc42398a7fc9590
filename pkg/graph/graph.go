package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by lookups and mutations that reference
	// a node not present in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownParent is returned by [Graph.AddNode] when the declared
	// parent does not exist. Nodes must be added parents-first.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrMultipleRoots is returned by [Graph.AddNode] when a second node
	// without a parent is added. The hierarchy has exactly one root.
	ErrMultipleRoots = errors.New("hierarchy already has a root")

	// ErrNoRoot is returned by [Graph.Validate] for a graph without any
	// root node.
	ErrNoRoot = errors.New("hierarchy has no root")

	// ErrNegativeWeight is returned by [Graph.AddDependency] for a
	// negative edge weight. Weights are non-negative use counts.
	ErrNegativeWeight = errors.New("edge weight must be non-negative")
)

// NodeKind distinguishes real code entities from synthetic grouping
// nodes inserted into the optimized graph.
type NodeKind int

const (
	// NodeKindRegular represents a real code entity from the ingested graph.
	NodeKindRegular NodeKind = iota
	// NodeKindGroup represents a synthetic grouping node covering a naming
	// prefix, inserted to bound the number of visible children.
	NodeKindGroup
)

// Node represents a code entity in the hierarchy tree.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID     string   // Unique identifier (typically a path, e.g. "internal/cli")
	Label  string   // Display label (defaults to ID)
	Parent string   // Parent node ID; empty only for the root
	Kind   NodeKind // Regular entity or synthetic group
	Prefix string   // Naming prefix covered by a group node (groups only)
}

// IsGroup reports whether the node is a synthetic grouping node.
// Group nodes exist only in the optimized graph and are never focus targets.
func (n Node) IsGroup() bool { return n.Kind == NodeKindGroup }

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed, weighted dependency between two nodes.
// Multiple dependencies between the same pair are pre-aggregated into
// a single edge whose weight is the total use count.
type Edge struct {
	From   string
	To     string
	Weight int
}

// Graph is a hierarchy tree over code entities plus aggregated weighted
// dependency edges between them.
//
// The zero value is not usable - use New to create a valid instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string       // nodeID -> child IDs, insertion order
	edges    []Edge                    // aggregated, first-insertion order
	edgeIdx  map[string]map[string]int // from -> to -> index into edges
	root     string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		edgeIdx:  make(map[string]map[string]int),
	}
}

// AddNode adds a node to the hierarchy. Nodes must be added
// parents-first: the declared parent has to exist already, except for
// the single root node, which has an empty Parent.
//
// Returns ErrInvalidNodeID for an empty ID, ErrDuplicateNodeID if the
// ID is taken, ErrUnknownParent if the parent is missing, or
// ErrMultipleRoots for a second parentless node.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Parent == "" {
		if g.root != "" {
			return fmt.Errorf("%w: %s and %s", ErrMultipleRoots, g.root, n.ID)
		}
		g.root = n.ID
	} else {
		if _, ok := g.nodes[n.Parent]; !ok {
			return fmt.Errorf("%w: %s (child %s)", ErrUnknownParent, n.Parent, n.ID)
		}
		g.children[n.Parent] = append(g.children[n.Parent], n.ID)
	}
	node := n
	g.nodes[node.ID] = &node
	return nil
}

// AddDependency records a directed dependency from one node to another.
// Repeated calls for the same pair aggregate into a single edge by
// summing weights. Zero-weight calls are accepted and create (or leave)
// an edge with weight 0, which EdgeWeight treats the same as absent.
//
// Returns ErrUnknownNode if either endpoint is missing, or
// ErrNegativeWeight for a negative weight.
func (g *Graph) AddDependency(from, to string, weight int) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if weight < 0 {
		return fmt.Errorf("%w: %s -> %s (%d)", ErrNegativeWeight, from, to, weight)
	}
	if idx, ok := g.edgeIdx[from][to]; ok {
		g.edges[idx].Weight += weight
		return nil
	}
	if g.edgeIdx[from] == nil {
		g.edgeIdx[from] = make(map[string]int)
	}
	g.edgeIdx[from][to] = len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Weight: weight})
	return nil
}

// Root returns the root node ID, or the empty string for an empty graph.
func (g *Graph) Root() string { return g.root }

// Node returns the node with the given ID and true, or nil and false if
// not found. The returned pointer refers to the node stored in the
// graph; callers must not modify it.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Contains reports whether a node with the given ID exists.
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Children returns the IDs of the node's hierarchy children in
// insertion order. Returns ErrUnknownNode if the node does not exist;
// a leaf yields an empty slice and no error.
//
// The returned slice is a read-only view and must not be modified.
func (g *Graph) Children(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return g.children[id], nil
}

// Parent returns the node's parent ID and true, or "" and false for the
// root or an unknown node.
func (g *Graph) Parent(id string) (string, bool) {
	n, ok := g.nodes[id]
	if !ok || n.Parent == "" {
		return "", false
	}
	return n.Parent, true
}

// EdgeWeight returns the aggregated dependency weight from a to b,
// or 0 if no edge exists (including when either node is unknown).
func (g *Graph) EdgeWeight(a, b string) int {
	if idx, ok := g.edgeIdx[a][b]; ok {
		return g.edges[idx].Weight
	}
	return 0
}

// Edges returns a copy of all aggregated dependency edges in
// first-insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of aggregated dependency edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Descendants returns the full descendant set of the node in
// depth-first pre-order, excluding the node itself. Returns nil for an
// unknown node or a leaf.
func (g *Graph) Descendants(id string) []string {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	var out []string
	var walk func(string)
	walk = func(cur string) {
		for _, c := range g.children[cur] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// IsDescendant reports whether id lies strictly below ancestor in the
// hierarchy. A node is not its own descendant.
func (g *Graph) IsDescendant(id, ancestor string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for n.Parent != "" {
		if n.Parent == ancestor {
			return true
		}
		n = g.nodes[n.Parent]
	}
	return false
}

// Clone returns a deep copy of the graph. Mutations of the copy,
// including synthetic group insertion, do not affect the original.
func (g *Graph) Clone() *Graph {
	out := New()
	out.root = g.root
	for id, n := range g.nodes {
		node := *n
		out.nodes[id] = &node
	}
	for id, kids := range g.children {
		out.children[id] = slices.Clone(kids)
	}
	out.edges = slices.Clone(g.edges)
	for from, targets := range g.edgeIdx {
		m := make(map[string]int, len(targets))
		for to, idx := range targets {
			m[to] = idx
		}
		out.edgeIdx[from] = m
	}
	return out
}

// InsertSyntheticGroup creates a grouping node under parent covering
// the given naming prefix, and reparents every child of parent whose
// display label starts with the prefix beneath it. The group takes the
// hierarchy position of the first child it absorbs, so sibling order is
// stable.
//
// The operation is idempotent: calling it again with the same arguments
// returns the existing group node and leaves the graph unchanged.
//
// Returns ErrUnknownNode if parent does not exist.
func (g *Graph) InsertSyntheticGroup(parent, prefix string) (string, error) {
	if _, ok := g.nodes[parent]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, parent)
	}
	id := GroupID(parent, prefix)
	if existing, ok := g.nodes[id]; ok {
		if existing.IsGroup() && existing.Parent == parent && existing.Prefix == prefix {
			return id, nil
		}
		return "", fmt.Errorf("%w: %s", ErrDuplicateNodeID, id)
	}

	kids := g.children[parent]
	var absorbed []string
	insertAt := -1
	for i, c := range kids {
		child := g.nodes[c]
		if child.IsGroup() || !PrefixCovers(prefix, child.DisplayLabel()) {
			continue
		}
		if insertAt == -1 {
			insertAt = i
		}
		absorbed = append(absorbed, c)
	}

	group := &Node{ID: id, Label: prefix, Parent: parent, Kind: NodeKindGroup, Prefix: prefix}
	g.nodes[id] = group

	if insertAt == -1 {
		// Nothing to absorb; the group still exists as an empty bucket.
		g.children[parent] = append(kids, id)
		return id, nil
	}

	remaining := make([]string, 0, len(kids)-len(absorbed)+1)
	for i, c := range kids {
		if i == insertAt {
			remaining = append(remaining, id)
		}
		if slices.Contains(absorbed, c) {
			continue
		}
		remaining = append(remaining, c)
	}
	g.children[parent] = remaining

	for _, c := range absorbed {
		g.nodes[c].Parent = id
	}
	g.children[id] = absorbed
	return id, nil
}

// GroupID returns the deterministic identifier of the synthetic group
// node covering prefix under parent. The "::" separator keeps group IDs
// disjoint from path-like entity IDs.
func GroupID(parent, prefix string) string {
	return parent + "::" + prefix
}

// PrefixCovers reports whether a naming prefix covers a label: the
// label either equals the prefix or continues it at a separator
// boundary, so "a/b" covers "a/b/c.go" but not "a/bcd".
func PrefixCovers(prefix, label string) bool {
	if label == prefix {
		return true
	}
	if !strings.HasPrefix(label, prefix) || len(label) == len(prefix) {
		return false
	}
	switch label[len(prefix)] {
	case '/', '.', '_', '-':
		return true
	}
	return false
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that a root exists, that the hierarchy is an acyclic tree
// reaching every node, and that all edges reference existing nodes.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return nil
	}
	if g.root == "" {
		return ErrNoRoot
	}
	seen := make(map[string]bool, len(g.nodes))
	var walk func(string) error
	walk = func(id string) error {
		if seen[id] {
			return fmt.Errorf("hierarchy cycle at %s", id)
		}
		seen[id] = true
		for _, c := range g.children[id] {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(g.root); err != nil {
		return err
	}
	if len(seen) != len(g.nodes) {
		return fmt.Errorf("hierarchy does not reach %d of %d nodes", len(g.nodes)-len(seen), len(g.nodes))
	}
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return fmt.Errorf("%w: edge source %s", ErrUnknownNode, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return fmt.Errorf("%w: edge target %s", ErrUnknownNode, e.To)
		}
	}
	return nil
}
