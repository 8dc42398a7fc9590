package graph

import (
	"errors"
	"slices"
	"testing"
)

// buildTree creates the standard test hierarchy:
//
//	root
//	├── a
//	│   ├── a/x
//	│   └── a/y
//	└── b
//
// with edges a/x→b (3) and a/y→b (2).
func buildTree(t *testing.T) *Graph {
	t.Helper()
	g := New()
	nodes := []Node{
		{ID: "root"},
		{ID: "a", Parent: "root"},
		{ID: "b", Parent: "root"},
		{ID: "a/x", Parent: "a"},
		{ID: "a/y", Parent: "a"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	if err := g.AddDependency("a/x", "b", 3); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := g.AddDependency("a/y", "b", 2); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	return g
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantErr error
	}{
		{
			name:  "SingleRoot",
			nodes: []Node{{ID: "root"}},
		},
		{
			name:    "EmptyID",
			nodes:   []Node{{ID: ""}},
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "Duplicate",
			nodes:   []Node{{ID: "root"}, {ID: "root"}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "SecondRoot",
			nodes:   []Node{{ID: "root"}, {ID: "other"}},
			wantErr: ErrMultipleRoots,
		},
		{
			name:    "OrphanChild",
			nodes:   []Node{{ID: "root"}, {ID: "x", Parent: "missing"}},
			wantErr: ErrUnknownParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			var err error
			for _, n := range tt.nodes {
				if err = g.AddNode(n); err != nil {
					break
				}
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHierarchyLookups(t *testing.T) {
	g := buildTree(t)

	kids, err := g.Children("a")
	if err != nil {
		t.Fatalf("Children(a): %v", err)
	}
	if !slices.Equal(kids, []string{"a/x", "a/y"}) {
		t.Errorf("Children(a) = %v, want [a/x a/y]", kids)
	}

	if _, err := g.Children("nope"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Children(nope) error = %v, want ErrUnknownNode", err)
	}

	if p, ok := g.Parent("a/x"); !ok || p != "a" {
		t.Errorf("Parent(a/x) = %q, %v", p, ok)
	}
	if _, ok := g.Parent("root"); ok {
		t.Error("root should have no parent")
	}

	if !g.IsDescendant("a/x", "root") {
		t.Error("a/x should be a descendant of root")
	}
	if g.IsDescendant("b", "a") {
		t.Error("b should not be a descendant of a")
	}
	if g.IsDescendant("a", "a") {
		t.Error("a node is not its own descendant")
	}

	desc := g.Descendants("root")
	if !slices.Equal(desc, []string{"a", "a/x", "a/y", "b"}) {
		t.Errorf("Descendants(root) = %v", desc)
	}
}

func TestDependencyAggregation(t *testing.T) {
	g := buildTree(t)

	if w := g.EdgeWeight("a/x", "b"); w != 3 {
		t.Errorf("EdgeWeight(a/x, b) = %d, want 3", w)
	}
	if w := g.EdgeWeight("b", "a/x"); w != 0 {
		t.Errorf("EdgeWeight(b, a/x) = %d, want 0", w)
	}

	// Repeated edges aggregate into one.
	if err := g.AddDependency("a/x", "b", 4); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if w := g.EdgeWeight("a/x", "b"); w != 7 {
		t.Errorf("aggregated weight = %d, want 7", w)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}

	if err := g.AddDependency("a/x", "missing", 1); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("error = %v, want ErrUnknownNode", err)
	}
	if err := g.AddDependency("a/x", "b", -1); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("error = %v, want ErrNegativeWeight", err)
	}
}

func TestInsertSyntheticGroup(t *testing.T) {
	g := buildTree(t)

	id, err := g.InsertSyntheticGroup("a", "a")
	if err != nil {
		t.Fatalf("InsertSyntheticGroup: %v", err)
	}
	n, ok := g.Node(id)
	if !ok || !n.IsGroup() {
		t.Fatalf("group node %s missing or not a group", id)
	}

	kids, _ := g.Children("a")
	if !slices.Equal(kids, []string{id}) {
		t.Errorf("Children(a) = %v, want [%s]", kids, id)
	}
	grouped, _ := g.Children(id)
	if !slices.Equal(grouped, []string{"a/x", "a/y"}) {
		t.Errorf("Children(%s) = %v, want [a/x a/y]", id, grouped)
	}
	if p, _ := g.Parent("a/x"); p != id {
		t.Errorf("Parent(a/x) = %s, want %s", p, id)
	}

	// Idempotence: same arguments return the same node, node count unchanged.
	before := g.NodeCount()
	again, err := g.InsertSyntheticGroup("a", "a")
	if err != nil {
		t.Fatalf("second InsertSyntheticGroup: %v", err)
	}
	if again != id {
		t.Errorf("second insert returned %s, want %s", again, id)
	}
	if g.NodeCount() != before {
		t.Errorf("node count changed on idempotent insert: %d -> %d", before, g.NodeCount())
	}

	if _, err := g.InsertSyntheticGroup("missing", "p"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("error = %v, want ErrUnknownNode", err)
	}
}

func TestCloneIsolation(t *testing.T) {
	g := buildTree(t)
	c := g.Clone()

	if _, err := c.InsertSyntheticGroup("a", "a"); err != nil {
		t.Fatalf("InsertSyntheticGroup on clone: %v", err)
	}
	if err := c.AddDependency("a/y", "b", 10); err != nil {
		t.Fatalf("AddDependency on clone: %v", err)
	}

	if g.NodeCount() != 5 {
		t.Errorf("original node count changed: %d", g.NodeCount())
	}
	if w := g.EdgeWeight("a/y", "b"); w != 2 {
		t.Errorf("original weight changed: %d", w)
	}
	if p, _ := g.Parent("a/x"); p != "a" {
		t.Errorf("original hierarchy changed: Parent(a/x) = %s", p)
	}
}

func TestStoreSeparation(t *testing.T) {
	ref := buildTree(t)
	s := NewStore(ref)

	opt := s.Optimized()
	if _, err := opt.InsertSyntheticGroup("a", "a"); err != nil {
		t.Fatalf("InsertSyntheticGroup: %v", err)
	}
	if s.Reference().Contains(GroupID("a", "a")) {
		t.Error("reference graph gained a synthetic node")
	}

	s.SetOptimized(opt)
	if s.Optimized() != opt {
		t.Error("SetOptimized did not install the new graph")
	}
	s.SetOptimized(nil)
	if s.Optimized() != opt {
		t.Error("SetOptimized(nil) should be a no-op")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g := buildTree(t)
	// Synthetic nodes must not leak into serialized documents.
	if _, err := g.InsertSyntheticGroup("a", "a"); err != nil {
		t.Fatalf("InsertSyntheticGroup: %v", err)
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}

	if back.NodeCount() != 5 {
		t.Errorf("round-trip node count = %d, want 5", back.NodeCount())
	}
	if back.Contains(GroupID("a", "a")) {
		t.Error("synthetic node survived serialization")
	}
	if p, _ := back.Parent("a/x"); p != "a" {
		t.Errorf("round-trip Parent(a/x) = %s, want a", p)
	}
	if w := back.EdgeWeight("a/x", "b"); w != 3 {
		t.Errorf("round-trip weight = %d, want 3", w)
	}
}

func TestToGraphOutOfOrder(t *testing.T) {
	d := Document{
		Nodes: []NodeDoc{
			{ID: "a/x", Parent: "a"},
			{ID: "a", Parent: "root"},
			{ID: "root"},
		},
	}
	g, err := ToGraph(d)
	if err != nil {
		t.Fatalf("ToGraph: %v", err)
	}
	if g.Root() != "root" {
		t.Errorf("root = %s", g.Root())
	}
	if !g.IsDescendant("a/x", "root") {
		t.Error("hierarchy not reconstructed")
	}

	bad := Document{Nodes: []NodeDoc{{ID: "root"}, {ID: "x", Parent: "ghost"}}}
	if _, err := ToGraph(bad); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("error = %v, want ErrUnknownParent", err)
	}
}
