package graph

// Store owns the two graph representations for a session: the immutable
// reference graph and the optimized graph that accumulates synthetic
// grouping nodes.
//
// The optimized graph is threaded as an explicit value through matrix
// builds: callers hand a Clone of Optimized to the builder, which
// returns the (possibly extended) graph for installation back via
// SetOptimized. The graph held by the Store is never mutated in place,
// so a failed build cannot leave it half-extended.
type Store struct {
	ref *Graph
	opt *Graph
}

// NewStore creates a store around the ingested reference graph.
// The optimized graph starts as a deep copy of the reference graph.
func NewStore(ref *Graph) *Store {
	return &Store{ref: ref, opt: ref.Clone()}
}

// Reference returns the authoritative, immutable graph.
// Callers must not mutate it.
func (s *Store) Reference() *Graph { return s.ref }

// Optimized returns the current optimized graph. Callers that extend
// it must work on a Clone and install the result with SetOptimized.
func (s *Store) Optimized() *Graph { return s.opt }

// SetOptimized installs the optimized graph returned by a matrix
// build. Passing nil is a no-op.
func (s *Store) SetOptimized(g *Graph) {
	if g != nil {
		s.opt = g
	}
}
