package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// =============================================================================
// Document - Dependency Graph Serialization
// =============================================================================

// Document is the canonical serialization format for dependency graphs.
// Used for CLI input/output, the HTTP API, and caching.
//
// The format is human-readable and designed for round-trip fidelity:
// ingest → explore → export → re-ingest produces identical results.
// Synthetic grouping nodes are never serialized; they are rebuilt on
// demand during exploration.
type Document struct {
	Nodes []NodeDoc `json:"nodes" bson:"nodes"`
	Edges []EdgeDoc `json:"edges" bson:"edges"`
}

// NodeDoc is the serialized form of a hierarchy node.
type NodeDoc struct {
	ID     string `json:"id" bson:"id"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`   // Display label (defaults to ID)
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"` // Empty only for the root
}

// EdgeDoc is the serialized form of an aggregated dependency edge.
type EdgeDoc struct {
	From   string `json:"from" bson:"from"`
	To     string `json:"to" bson:"to"`
	Weight int    `json:"weight" bson:"weight"`
}

// =============================================================================
// Graph ↔ Document Conversion
// =============================================================================

// FromGraph converts a graph to its serialization format.
// Nodes are sorted by ID for deterministic output; synthetic group
// nodes are skipped and their children are re-attached to the group's
// parent so the document always describes the reference hierarchy.
func FromGraph(g *Graph) Document {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := Document{Edges: make([]EdgeDoc, 0, len(g.edges))}
	for _, id := range ids {
		n := g.nodes[id]
		if n.IsGroup() {
			continue
		}
		parent := n.Parent
		for parent != "" {
			p, ok := g.nodes[parent]
			if !ok || !p.IsGroup() {
				break
			}
			parent = p.Parent
		}
		out.Nodes = append(out.Nodes, NodeDoc{ID: n.ID, Label: n.Label, Parent: parent})
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, EdgeDoc{From: e.From, To: e.To, Weight: e.Weight})
	}
	return out
}

// ToGraph converts a document to a graph.
// Node order in the document is arbitrary; parents are resolved
// iteratively. Returns an error if the structure violates hierarchy or
// edge constraints.
func ToGraph(d Document) (*Graph, error) {
	g := New()
	pending := slices.Clone(d.Nodes)
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, nd := range pending {
			if nd.Parent != "" && !g.Contains(nd.Parent) {
				rest = append(rest, nd)
				continue
			}
			if err := g.AddNode(Node{ID: nd.ID, Label: nd.Label, Parent: nd.Parent}); err != nil {
				return nil, fmt.Errorf("add node %s: %w", nd.ID, err)
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, rest[0].Parent)
		}
		pending = rest
	}

	for _, ed := range d.Edges {
		if err := g.AddDependency(ed.From, ed.To, ed.Weight); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ed.From, ed.To, err)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// =============================================================================
// File and Byte Helpers
// =============================================================================

// MarshalGraph serializes a graph to pretty-printed JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	return json.MarshalIndent(FromGraph(g), "", "  ")
}

// UnmarshalGraph deserializes JSON bytes to a graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	return ToGraph(d)
}

// ReadGraphFile reads a graph from a JSON file.
func ReadGraphFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	g, err := UnmarshalGraph(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

// WriteGraphFile writes a graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
