package path

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/matrix"
	"github.com/depmatrix/depmatrix/pkg/observability"
)

// Resolver folds exploration paths into configurations against a graph
// store. It is stateless apart from the store's optimized graph, which
// it extends with synthetic groups as expansions demand them.
//
// A Resolver is safe for use by a single goroutine at a time; callers
// that share one across goroutines must serialize Resolve, because the
// optimized graph in the store is replaced on every fold.
type Resolver struct {
	Store   *graph.Store
	Builder *matrix.Builder
	Logger  *log.Logger

	// Threshold is the synthetic grouping threshold forwarded to
	// expansions. Zero selects the default.
	Threshold int
}

// NewResolver creates a resolver over the store. The builder aggregates
// against the store's reference graph.
func NewResolver(store *graph.Store, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		Store:   store,
		Builder: matrix.NewBuilder(store.Reference(), 0),
		Logger:  logger,
	}
}

// Repair rewrites a path into canonical form without changing its
// meaning: every trailing expand is moved directly before the nearest
// enclosing focus whose subtree still contains the expanded node, so
// that a fold always accumulates expansions before the narrowing they
// belong to. An expand already followed by a focus keeps its place, as
// do focus actions relative to each other, which makes Repair a
// fixpoint: repairing a repaired path changes nothing. Reachability is
// judged against g, the optimized graph at resolution time. Repair
// never drops an action.
func Repair(actions []Action, g *graph.Graph) []Action {
	lastFocus := -1
	for i, a := range actions {
		if a.Type == ActionFocus {
			lastFocus = i
		}
	}
	out := make([]Action, 0, len(actions))
	for i, a := range actions {
		if a.Type == ActionFocus || i < lastFocus {
			out = append(out, a)
			continue
		}
		out = slices.Insert(out, expandPoint(out, a.Node, g), a)
	}
	return out
}

// expandPoint locates where a trailing expand belongs in the repaired
// prefix. Walking backward over focus boundaries, the expand lands
// directly before the first focus whose subtree contains the node. A
// stale expand, one unreachable from the most recent anchor, is thereby
// re-scoped before the focus that cut it off. Without any focus the
// expand stays at the end.
func expandPoint(out []Action, node string, g *graph.Graph) int {
	pos := len(out)
	i := len(out)
	for {
		for i > 0 && out[i-1].Type == ActionExpand {
			i--
		}
		if i == 0 {
			return pos
		}
		pos = i - 1
		if anchor := out[i-1].Node; node == anchor || g.IsDescendant(node, anchor) {
			return pos
		}
		i--
	}
}

// Resolve repairs the path and folds it into a configuration.
//
// The fold starts from the basic configuration of the store's
// optimized graph. Expands accumulate the expansion set; each focus
// triggers a matrix build over the configuration so far, because the
// weights of that build decide which outside neighbors survive the
// narrowing. Actions naming nodes the graph no longer contains are
// skipped with a log entry; the path itself is never modified.
//
// The fold works on a copy of the optimized graph. Only on success is
// the fold's (possibly group-extended) graph installed in the store; a
// failed fold leaves the store exactly as it was.
func (r *Resolver) Resolve(ctx context.Context, actions []Action) (matrix.Configuration, error) {
	start := time.Now()
	observability.Resolver().OnResolveStart(ctx, len(actions))

	cfg, err := r.fold(ctx, Repair(actions, r.Store.Optimized()))
	observability.Resolver().OnResolveComplete(ctx, len(cfg.Visible), time.Since(start), err)
	if err != nil {
		return matrix.Configuration{}, err
	}
	return cfg, nil
}

func (r *Resolver) fold(ctx context.Context, actions []Action) (matrix.Configuration, error) {
	g := r.Store.Optimized().Clone()
	cfg := matrix.Basic(g)

	for _, a := range actions {
		var err error
		switch a.Type {
		case ActionExpand:
			cfg, g, err = matrix.Expand(cfg, a.Node, g, r.Threshold)
		case ActionFocus:
			var m matrix.Matrix
			m, g, err = r.build(ctx, cfg, g)
			if err == nil {
				cfg, err = matrix.Focus(cfg, a.Node, a.Direction, m, g)
			}
		}
		if errors.Is(err, graph.ErrUnknownNode) {
			r.Logger.Warn("skipping action for missing node", "action", a.Type, "node", a.Node)
			observability.Resolver().OnActionSkipped(ctx, string(a.Type), a.Node)
			continue
		}
		if err != nil {
			return matrix.Configuration{}, err
		}
	}

	r.Store.SetOptimized(g)
	return cfg, nil
}

// build runs one instrumented matrix build during a fold.
func (r *Resolver) build(ctx context.Context, cfg matrix.Configuration, g *graph.Graph) (matrix.Matrix, *graph.Graph, error) {
	start := time.Now()
	observability.Builder().OnBuildStart(ctx, len(cfg.Visible))
	m, g, err := r.Builder.Build(cfg, nil, g)
	observability.Builder().OnBuildComplete(ctx, m.Size(), time.Since(start), err)
	return m, g, err
}
