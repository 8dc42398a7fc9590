package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The server uses this to keep per-session matrix entries from
// colliding when sessions explore the same graph with different
// grouping thresholds.
//
// Example usage:
//
//	// Session-specific keys
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
//
//	// Shared keys for read-only graphs
//	sharedKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for graph document caching.
func (k *ScopedKeyer) GraphKey(source string) string {
	return k.prefix + k.inner.GraphKey(source)
}

// MatrixKey generates a prefixed key for matrix caching.
func (k *ScopedKeyer) MatrixKey(graphHash, configHash string) string {
	return k.prefix + k.inner.MatrixKey(graphHash, configHash)
}
