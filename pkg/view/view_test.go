package view

import (
	"context"
	"slices"
	"testing"

	"github.com/depmatrix/depmatrix/pkg/cache"
	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/matrix"
	"github.com/depmatrix/depmatrix/pkg/path"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	g := graph.New()
	for _, n := range []struct{ id, parent string }{
		{"root", ""},
		{"a", "root"},
		{"b", "root"},
		{"a/x", "a"},
		{"a/y", "a"},
	} {
		if err := g.AddNode(graph.Node{ID: n.id, Parent: n.parent}); err != nil {
			t.Fatalf("AddNode(%s): %v", n.id, err)
		}
	}
	if err := g.AddDependency("a/x", "b", 3); err != nil {
		t.Fatal(err)
	}
	if err := g.AddDependency("a/y", "b", 2); err != nil {
		t.Fatal(err)
	}
	return NewModel(graph.NewStore(g), nil, nil, nil)
}

func TestUpdateProducesConsistentState(t *testing.T) {
	m := testModel(t)

	s, err := m.Update(context.Background(), []path.Action{path.NewExpand("a")}, 900, 600)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !slices.Equal(s.Matrix.Nodes, []string{"a/x", "a/y", "b"}) {
		t.Fatalf("matrix nodes = %v", s.Matrix.Nodes)
	}
	if s.Geometry.Size != s.Matrix.Size() {
		t.Errorf("geometry size %d != matrix size %d", s.Geometry.Size, s.Matrix.Size())
	}
	if got := m.State(); got.Config.Hash() != s.Config.Hash() {
		t.Error("State() does not match returned snapshot")
	}
}

func TestUpdateFailureKeepsPriorState(t *testing.T) {
	m := testModel(t)

	good, err := m.Update(context.Background(), nil, 900, 600)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	m.SetRegions(DefaultRegions(good))

	// A focus on a synthetic group is the one action the fold rejects
	// outright rather than skipping.
	opt := m.store.Optimized()
	gid, err := opt.InsertSyntheticGroup("a", "a")
	if err != nil {
		t.Fatalf("InsertSyntheticGroup: %v", err)
	}
	_, err = m.Update(context.Background(), []path.Action{path.NewFocus(gid, matrix.FocusBoth)}, 900, 600)
	if err == nil {
		t.Fatal("expected update to fail")
	}

	if got := m.State(); got.Config.Hash() != good.Config.Hash() {
		t.Error("failed update replaced state")
	}
	if len(m.Regions()) == 0 {
		t.Error("failed update cleared regions")
	}
}

func TestUpdateInvalidatesRegions(t *testing.T) {
	m := testModel(t)

	s, err := m.Update(context.Background(), nil, 900, 600)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	m.SetRegions(DefaultRegions(s))
	if len(m.Regions()) == 0 {
		t.Fatal("regions not registered")
	}

	if _, err := m.Update(context.Background(), []path.Action{path.NewExpand("a")}, 900, 600); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(m.Regions()) != 0 {
		t.Error("update should clear stale regions")
	}
}

func TestResolvePointDeterministic(t *testing.T) {
	m := testModel(t)

	s, err := m.Update(context.Background(), nil, 900, 600)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	m.SetRegions(DefaultRegions(s))

	// Center of cell (0, 1) must resolve to that cell, not the row or
	// column overlapping it.
	c := s.Geometry.Cell(0, 1)
	hit, ok := m.ResolvePoint(c.X+c.W/2, c.Y+c.H/2)
	if !ok {
		t.Fatal("no region hit")
	}
	if hit.Region.Kind != RegionCell || hit.Region.From != "a" || hit.Region.To != "b" {
		t.Errorf("hit = %+v, want cell a -> b", hit.Region)
	}

	// Repeated queries return the same entry.
	again, ok := m.ResolvePoint(c.X+c.W/2, c.Y+c.H/2)
	if !ok || again != hit {
		t.Errorf("hit changed across queries: %+v vs %+v", hit, again)
	}

	if _, ok := m.ResolvePoint(-5, -5); ok {
		t.Error("point outside all regions should miss")
	}
}

func TestUpdateUsesMatrixCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "root"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(graph.Node{ID: "a", Parent: "root"}); err != nil {
		t.Fatal(err)
	}
	m := NewModel(graph.NewStore(g), c, cache.NewDefaultKeyer(), nil)

	first, err := m.Update(context.Background(), nil, 100, 100)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	second, err := m.Update(context.Background(), nil, 100, 100)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !slices.Equal(first.Matrix.Nodes, second.Matrix.Nodes) {
		t.Errorf("cached matrix differs: %v vs %v", first.Matrix.Nodes, second.Matrix.Nodes)
	}
}
