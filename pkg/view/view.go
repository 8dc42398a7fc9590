// Package view holds the presentable state of a matrix exploration:
// the resolved configuration, the built matrix, its display geometry,
// and the interactive regions renderers register against it.
//
// The view model is the single synchronization point between input
// (actions appended to the path) and output (renderers and hit
// testing). State replacement is atomic: a failed update leaves the
// previous state fully intact, and every successful update invalidates
// the registered regions because their coordinates no longer apply.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depmatrix/depmatrix/pkg/cache"
	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/layout"
	"github.com/depmatrix/depmatrix/pkg/matrix"
	"github.com/depmatrix/depmatrix/pkg/observability"
	"github.com/depmatrix/depmatrix/pkg/path"
)

// State is one consistent snapshot of the exploration. Snapshots are
// values; renderers can hold one while the model moves on.
type State struct {
	Config   matrix.Configuration
	Matrix   matrix.Matrix
	Geometry layout.Geometry
}

// Model owns the current state and region registry.
type Model struct {
	store    *graph.Store
	resolver *path.Resolver
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger

	// graphHash keys cached matrices; computed once since the reference
	// graph is immutable for the lifetime of the model.
	graphHash string

	mu      sync.RWMutex
	state   State
	regions []RegionEntry
}

// NewModel creates a view model over the store. A nil cache disables
// matrix caching.
func NewModel(store *graph.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Model {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	m := &Model{
		store:    store,
		resolver: path.NewResolver(store, logger),
		cache:    c,
		keyer:    keyer,
		logger:   logger,
	}
	if data, err := graph.MarshalGraph(store.Reference()); err == nil {
		m.graphHash = cache.Hash(data)
	}
	return m
}

// GraphHash returns the digest of the reference graph.
func (m *Model) GraphHash() string { return m.graphHash }

// Resolver exposes the model's resolver for callers that need repair
// semantics without an update, such as session replay checks.
func (m *Model) Resolver() *path.Resolver { return m.resolver }

// Update resolves the path, builds the matrix, fits it to the
// viewport, and atomically replaces the state. On any error the prior
// state and regions are untouched. The region registry is cleared on
// success; renderers re-register after repainting.
func (m *Model) Update(ctx context.Context, actions []path.Action, viewportW, viewportH float64) (State, error) {
	cfg, err := m.resolver.Resolve(ctx, actions)
	if err != nil {
		return State{}, err
	}

	mx, err := m.buildCached(ctx, cfg)
	if err != nil {
		return State{}, err
	}

	next := State{
		Config:   cfg,
		Matrix:   mx,
		Geometry: layout.Compute(mx.Size(), viewportW, viewportH),
	}

	m.mu.Lock()
	m.state = next
	m.regions = nil
	m.mu.Unlock()
	return next, nil
}

// buildCached returns the matrix for cfg, consulting the cache first.
// Cache failures degrade to a plain build.
func (m *Model) buildCached(ctx context.Context, cfg matrix.Configuration) (matrix.Matrix, error) {
	key := m.keyer.MatrixKey(m.graphHash, cfg.Hash())

	if data, hit, err := m.cache.Get(ctx, key); err == nil && hit {
		if mx, err := matrix.UnmarshalMatrix(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "matrix")
			return mx, nil
		}
	} else if err != nil {
		m.logger.Warn("matrix cache read failed", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "matrix")

	start := time.Now()
	observability.Builder().OnBuildStart(ctx, len(cfg.Visible))
	mx, g, err := m.resolver.Builder.Build(cfg, nil, m.store.Optimized().Clone())
	observability.Builder().OnBuildComplete(ctx, mx.Size(), time.Since(start), err)
	if err != nil {
		return matrix.Matrix{}, err
	}
	m.store.SetOptimized(g)

	if data, err := matrix.MarshalMatrix(mx); err == nil {
		if err := m.cache.Set(ctx, key, data, time.Hour); err != nil {
			m.logger.Warn("matrix cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "matrix", len(data))
		}
	}
	return mx, nil
}

// State returns the current snapshot.
func (m *Model) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetRegions replaces the region registry. Renderers call this after
// painting the current state.
func (m *Model) SetRegions(entries []RegionEntry) {
	m.mu.Lock()
	m.regions = entries
	m.mu.Unlock()
}

// Regions returns the registered entries in registration order.
func (m *Model) Regions() []RegionEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regions
}

// ResolvePoint maps a viewport point to the first registered region
// containing it. Registration order decides overlaps, so the result is
// deterministic for any registry.
func (m *Model) ResolvePoint(x, y float64) (RegionEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.regions {
		if e.Bounds.Contains(x, y) {
			return e, true
		}
	}
	return RegionEntry{}, false
}

// DefaultRegions derives the standard region set for a state: row
// labels, column labels, then weight cells, in the grid positions of
// the state's geometry. Renderers with custom chrome build their own.
func DefaultRegions(s State) []RegionEntry {
	g := s.Geometry
	if g.Size == 0 {
		return nil
	}
	// Cells first: rows and columns overlap them, and the first
	// registered entry wins a hit.
	entries := make([]RegionEntry, 0, g.Size*(g.Size+2))
	for i, from := range s.Matrix.Nodes {
		for j, to := range s.Matrix.Nodes {
			entries = append(entries, RegionEntry{
				Region: Region{Kind: RegionCell, Row: i, Col: j, From: from, To: to},
				Bounds: g.Cell(i, j),
			})
		}
	}
	for i, id := range s.Matrix.Nodes {
		entries = append(entries, RegionEntry{
			Region: Region{Kind: RegionRow, Row: i, From: id},
			Bounds: g.Row(i),
		})
		entries = append(entries, RegionEntry{
			Region: Region{Kind: RegionColumn, Col: i, To: id},
			Bounds: g.Column(i),
		})
	}
	return entries
}
