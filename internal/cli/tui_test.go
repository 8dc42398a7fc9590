package cli

import (
	"context"
	"slices"
	"testing"

	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/matrix"
	"github.com/depmatrix/depmatrix/pkg/path"
	"github.com/depmatrix/depmatrix/pkg/session"
	"github.com/depmatrix/depmatrix/pkg/view"
)

func TestExplorerUndoRestoresPreviousState(t *testing.T) {
	s := testServer(t)
	sess := session.New("demo", s.model.GraphHash())
	m := newExplorerModel(context.Background(), s.model, sess, s.viewport)
	if err := m.refresh(); err != nil {
		t.Fatalf("initial resolve: %v", err)
	}

	m = m.apply(path.NewExpand("a"))
	if m.failed {
		t.Fatalf("expand rejected: %s", m.status)
	}
	if want := []string{"a/x", "a/y", "b"}; !slices.Equal(m.state.Matrix.Nodes, want) {
		t.Fatalf("nodes after expand = %v, want %v", m.state.Matrix.Nodes, want)
	}

	m = m.undo()
	if m.failed {
		t.Fatalf("undo failed: %s", m.status)
	}
	if want := []string{"a", "b"}; !slices.Equal(m.state.Matrix.Nodes, want) {
		t.Errorf("nodes after undo = %v, want %v", m.state.Matrix.Nodes, want)
	}
	if len(m.sess.Actions) != 0 {
		t.Errorf("path after undo = %v, want empty", m.sess.Actions)
	}

	m = m.undo()
	if m.status != "nothing to undo" {
		t.Errorf("undo on empty path: status %q", m.status)
	}
}

func TestExplorerRollbackAndReset(t *testing.T) {
	g := graph.New()
	for _, n := range []struct{ id, parent string }{
		{"root", ""},
		{"lib", "root"},
		{"other", "root"},
		{"lib/p/q", "lib"},
		{"lib/p/r", "lib"},
		{"lib/s", "lib"},
	} {
		if err := g.AddNode(graph.Node{ID: n.id, Parent: n.parent}); err != nil {
			t.Fatalf("AddNode(%s): %v", n.id, err)
		}
	}
	vm := view.NewModel(graph.NewStore(g), nil, nil, nil)
	vm.Resolver().Threshold = 2
	sess := session.New("demo", vm.GraphHash())
	m := newExplorerModel(context.Background(), vm, sess, ViewportConfig{Width: 1200, Height: 800})
	if err := m.refresh(); err != nil {
		t.Fatalf("initial resolve: %v", err)
	}

	m = m.apply(path.NewExpand("lib"))
	if m.failed {
		t.Fatalf("expand rejected: %s", m.status)
	}
	before := len(m.sess.Actions)

	// Focusing a grouping node is rejected; the path must roll back to
	// exactly the accepted actions.
	m = m.apply(path.NewFocus(graph.GroupID("lib", "lib/p"), matrix.FocusBoth))
	if !m.failed {
		t.Fatal("focus on a grouping node should be rejected")
	}
	if len(m.sess.Actions) != before {
		t.Errorf("path after rejected action = %v, want %d entries", m.sess.Actions, before)
	}

	m = m.reset()
	if m.failed {
		t.Fatalf("reset failed: %s", m.status)
	}
	if len(m.sess.Actions) != 0 {
		t.Errorf("path after reset = %v, want empty", m.sess.Actions)
	}
	if want := []string{"lib", "other"}; !slices.Equal(m.state.Matrix.Nodes, want) {
		t.Errorf("nodes after reset = %v, want %v", m.state.Matrix.Nodes, want)
	}
}
