package matrix

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/depmatrix/depmatrix/pkg/graph"
)

// demoGraph builds the small tree used throughout these tests:
//
//	root
//	├── a
//	│   ├── a/x
//	│   └── a/y
//	└── b
//
// with reference edges a/x -> b (3) and a/y -> b (2).
func demoGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	mustAdd := func(id, parent string) {
		t.Helper()
		if err := g.AddNode(graph.Node{ID: id, Parent: parent}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	mustAdd("root", "")
	mustAdd("a", "root")
	mustAdd("b", "root")
	mustAdd("a/x", "a")
	mustAdd("a/y", "a")
	if err := g.AddDependency("a/x", "b", 3); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := g.AddDependency("a/y", "b", 2); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	return g
}

func TestBuildBasic(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)

	cfg := Basic(ref)
	m, _, err := b.Build(cfg, nil, ref.Clone())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := m.Nodes; !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("nodes = %v, want [a b]", got)
	}
	if w := m.Weight(m.Index("a"), m.Index("b")); w != 5 {
		t.Errorf("a -> b = %d, want aggregated 5", w)
	}
	if w := m.Weight(m.Index("b"), m.Index("a")); w != 0 {
		t.Errorf("b -> a = %d, want 0", w)
	}
}

func TestBuildFocusThenExpand(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)
	opt := ref.Clone()

	cfg := Basic(ref)
	m, opt, err := b.Build(cfg, nil, opt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cfg, err = Focus(cfg, "root", FocusBoth, m, opt)
	if err != nil {
		t.Fatalf("Focus: %v", err)
	}
	cfg, opt, err = Expand(cfg, "a", opt, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	m, _, err = b.Build(cfg, nil, opt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := m.Nodes; !slices.Equal(got, []string{"a/x", "a/y", "b"}) {
		t.Fatalf("nodes = %v, want [a/x a/y b]", got)
	}
	if w := m.Weight(m.Index("a/x"), m.Index("b")); w != 3 {
		t.Errorf("a/x -> b = %d, want 3", w)
	}
	if w := m.Weight(m.Index("a/y"), m.Index("b")); w != 2 {
		t.Errorf("a/y -> b = %d, want 2", w)
	}
}

// Total weight must be conserved across any configuration whose visible
// set covers every edge endpoint.
func TestBuildWeightConservation(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)

	basic, _, err := b.Build(Basic(ref), nil, ref.Clone())
	if err != nil {
		t.Fatalf("Build basic: %v", err)
	}

	cfg, opt, err := Expand(Basic(ref), "a", ref.Clone(), 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	expanded, _, err := b.Build(cfg, nil, opt)
	if err != nil {
		t.Fatalf("Build expanded: %v", err)
	}

	if basic.Total() != expanded.Total() {
		t.Errorf("total weight changed across expansion: %d vs %d", basic.Total(), expanded.Total())
	}
}

func TestBuildEmptyConfiguration(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)

	m, _, err := b.Build(Configuration{}, nil, ref.Clone())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !m.Empty() || m.Size() != 0 {
		t.Errorf("expected empty matrix, got %d nodes", m.Size())
	}
}

func TestBuildConstraintOrdering(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)

	constraints := []Constraint{{Members: []string{"b"}}, {Members: []string{"a"}}}
	m, _, err := b.Build(Basic(ref), constraints, ref.Clone())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := m.Nodes; !slices.Equal(got, []string{"b", "a"}) {
		t.Fatalf("nodes = %v, want constraint order [b a]", got)
	}
	// Weights follow the nodes, not the positions.
	if w := m.Weight(m.Index("a"), m.Index("b")); w != 5 {
		t.Errorf("a -> b = %d after reorder, want 5", w)
	}
}

func TestBuildInvalidVisible(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)

	cfg := Configuration{Visible: []string{"a", "a/x"}, Expanded: map[string]bool{}}
	_, _, err := b.Build(cfg, nil, ref.Clone())
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestFocusDirectionNeighbors(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)

	tests := []struct {
		kind FocusKind
		want []string
	}{
		{FocusOut, []string{"a/x", "a/y", "b"}}, // a depends on b
		{FocusIn, []string{"a/x", "a/y"}},       // nothing depends on a
		{FocusBoth, []string{"a/x", "a/y", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			opt := ref.Clone()
			cfg := Basic(ref)
			m, opt, err := b.Build(cfg, nil, opt)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			cfg, err = Focus(cfg, "a", tt.kind, m, opt)
			if err != nil {
				t.Fatalf("Focus: %v", err)
			}
			if !slices.Equal(cfg.Visible, tt.want) {
				t.Errorf("visible = %v, want %v", cfg.Visible, tt.want)
			}
		})
	}
}

func TestFocusLeafAnchor(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)
	opt := ref.Clone()

	cfg := Basic(ref)
	m, opt, err := b.Build(cfg, nil, opt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cfg, err = Focus(cfg, "b", FocusIn, m, opt)
	if err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if !slices.Equal(cfg.Visible, []string{"b", "a"}) {
		t.Errorf("visible = %v, want [b a]", cfg.Visible)
	}
}

func TestFocusSyntheticGroupRejected(t *testing.T) {
	ref := demoGraph(t)
	opt := ref.Clone()
	gid, err := opt.InsertSyntheticGroup("a", "a")
	if err != nil {
		t.Fatalf("InsertSyntheticGroup: %v", err)
	}

	_, err = Focus(Basic(ref), gid, FocusBoth, Matrix{}, opt)
	if !errors.Is(err, ErrSyntheticFocus) {
		t.Fatalf("err = %v, want ErrSyntheticFocus", err)
	}
}

func TestFocusDropsUnreachableExpansions(t *testing.T) {
	ref := demoGraph(t)
	b := NewBuilder(ref, 0)
	opt := ref.Clone()

	cfg, opt, err := Expand(Basic(ref), "a", opt, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	m, opt, err := b.Build(cfg, nil, opt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cfg, err = Focus(cfg, "b", FocusBoth, m, opt)
	if err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if cfg.Expanded["a"] {
		t.Error("expansion of a should be dropped when focus moves to b")
	}
}

// Expanding a node with many same-prefix children inserts synthetic
// groups and keeps the expansion threshold-stable: expanding twice
// yields the same visible set.
func TestExpandGroupingThreshold(t *testing.T) {
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "root"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(graph.Node{ID: "pkg", Parent: "root"}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("pkg/util/f%d", i)
		if err := g.AddNode(graph.Node{ID: id, Parent: "pkg"}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("pkg/net/g%d", i)
		if err := g.AddNode(graph.Node{ID: id, Parent: "pkg"}); err != nil {
			t.Fatal(err)
		}
	}

	cfg, opt, err := Expand(Basic(g), "pkg", g.Clone(), 4)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{graph.GroupID("pkg", "pkg/util"), graph.GroupID("pkg", "pkg/net")}
	if !slices.Equal(cfg.Visible, want) {
		t.Fatalf("visible = %v, want groups %v", cfg.Visible, want)
	}

	again, _, err := Expand(Basic(g), "pkg", opt, 4)
	if err != nil {
		t.Fatalf("Expand again: %v", err)
	}
	if !slices.Equal(again.Visible, cfg.Visible) {
		t.Errorf("second expand visible = %v, want %v", again.Visible, cfg.Visible)
	}
}

func TestConfigurationHashStability(t *testing.T) {
	a := Configuration{Visible: []string{"x", "y"}, Expanded: map[string]bool{"x": true}}
	b := Configuration{Visible: []string{"x", "y"}, Expanded: map[string]bool{"x": true}}
	if a.Hash() != b.Hash() {
		t.Error("identical configurations hash differently")
	}
	c := a.Clone()
	c.Anchor = "x"
	if a.Hash() == c.Hash() {
		t.Error("anchored configuration hashes identically to unanchored")
	}
}
