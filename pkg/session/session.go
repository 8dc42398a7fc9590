// Package session provides persistence for exploration sessions.
//
// A session pairs a graph with the action path a user has built while
// exploring it. Storing the path rather than the derived configuration
// keeps sessions small and replayable: the resolver re-derives the
// configuration on load, skipping actions the current graph can no
// longer satisfy.
//
// # Backends
//
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI usage (~/.config/depmatrix/sessions/)
//   - mongo: MongoDB-backed storage for server deployments
//
// # Usage
//
// Create and persist a session:
//
//	sess := session.New("my exploration", graphHash)
//	sess.Append(path.NewExpand("core"))
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
// Load and replay:
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	cfg, err := resolver.Resolve(ctx, sess.Actions)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/depmatrix/depmatrix/pkg/path"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrGraphMismatch is returned when a session is replayed against a
	// graph other than the one it was recorded for.
	ErrGraphMismatch = errors.New("session graph mismatch")
)

// Session is one recorded exploration.
type Session struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name,omitempty" bson:"name,omitempty"`
	GraphHash string        `json:"graph_hash" bson:"graph_hash"`
	Actions   []path.Action `json:"actions" bson:"-"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// New creates a session for the graph identified by graphHash.
func New(name, graphHash string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		GraphHash: graphHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds an action to the session path and bumps UpdatedAt.
func (s *Session) Append(a path.Action) {
	s.Actions = append(s.Actions, a)
	s.UpdatedAt = time.Now().UTC()
}

// Truncate shortens the path to its first n actions and bumps
// UpdatedAt. Undo truncates to one short of the current length, reset
// truncates to zero. Truncating to the current length or beyond is a
// no-op.
func (s *Session) Truncate(n int) {
	if n >= len(s.Actions) {
		return
	}
	if n <= 0 {
		s.Actions = nil
	} else {
		s.Actions = s.Actions[:n]
	}
	s.UpdatedAt = time.Now().UTC()
}

// CheckGraph verifies the session was recorded against the graph with
// the given hash.
func (s *Session) CheckGraph(graphHash string) error {
	if s.GraphHash != graphHash {
		return ErrGraphMismatch
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any previous version.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all sessions ordered by most recently updated.
	List(ctx context.Context) ([]*Session, error)

	// Close releases backend resources.
	Close() error
}
