// Package cache provides pluggable byte caches for expensive artifacts.
//
// Matrix builds are cheap for small graphs but grow with graph size, and
// serialized graphs themselves can be large. The cache sits in front of
// both: graph documents keyed by their source, matrices keyed by the
// graph and configuration hashes that fully determine them.
//
// Three backends are provided: a file cache for CLI usage, a Redis cache
// for the HTTP server, and a null cache that disables caching entirely.
// All backends store opaque bytes; serialization stays with the caller.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface all backends implement.
//
// Get reports a miss with found == false and a nil error; errors are
// reserved for backend failures. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value. found is false on a miss.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from the inputs that determine an artifact.
// Implementations must be deterministic: equal inputs, equal keys.
type Keyer interface {
	// GraphKey keys a serialized graph document by its source identity.
	GraphKey(source string) string

	// MatrixKey keys a built matrix. A matrix is fully determined by the
	// reference graph and the configuration it was built over.
	MatrixKey(graphHash, configHash string) string
}

// DefaultKeyer is the standard key derivation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for graph document caching.
func (k *DefaultKeyer) GraphKey(source string) string {
	return hashKey("graph", source)
}

// MatrixKey generates a key for matrix caching.
func (k *DefaultKeyer) MatrixKey(graphHash, configHash string) string {
	return hashKey("matrix", graphHash, configHash)
}
