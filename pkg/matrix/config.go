package matrix

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/depmatrix/depmatrix/pkg/graph"
)

// ErrInvalidConfiguration is returned when a configuration violates the
// visibility/ancestry invariant. This is unreachable given correct
// resolver logic; seeing it means a programming error upstream, not a
// recoverable runtime condition.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrSyntheticFocus is returned when a focus targets a synthetic
// grouping node. Group nodes exist only in the optimized graph and can
// be expanded but never pinned as an anchor.
var ErrSyntheticFocus = errors.New("cannot focus a synthetic group node")

// FocusKind distinguishes which dependency direction a focus anchor is
// interested in.
type FocusKind int

const (
	// FocusBoth keeps neighbors the anchor's subtree depends on as well as
	// neighbors depending on it.
	FocusBoth FocusKind = iota
	// FocusIn keeps only neighbors that depend on the anchor's subtree.
	FocusIn
	// FocusOut keeps only neighbors the anchor's subtree depends on.
	FocusOut
)

// String returns the serialized form used in action specs and session
// documents.
func (k FocusKind) String() string {
	switch k {
	case FocusIn:
		return "in"
	case FocusOut:
		return "out"
	default:
		return "both"
	}
}

// ParseFocusKind parses the serialized form of a focus kind.
func ParseFocusKind(s string) (FocusKind, error) {
	switch s {
	case "in":
		return FocusIn, nil
	case "out":
		return FocusOut, nil
	case "both", "":
		return FocusBoth, nil
	}
	return FocusBoth, fmt.Errorf("unknown focus kind %q", s)
}

// Configuration is the canonical derived state of an exploration: the
// visible nodes in order, the expansion set, and zero-or-one focus
// anchor with its direction kind.
//
// Configurations are values. Operations like [Expand] and [Focus]
// return new configurations and never mutate their input.
type Configuration struct {
	Visible  []string        // currently-visible nodes, canonical order
	Expanded map[string]bool // nodes shown as their children instead of one row
	Anchor   string          // focus anchor; empty means no focus
	Kind     FocusKind       // direction of interest for the anchor
}

// Basic returns the starting configuration for a graph: no focus,
// nothing expanded, only the root's immediate children visible.
func Basic(g *graph.Graph) Configuration {
	cfg := Configuration{Expanded: make(map[string]bool)}
	if g.Root() == "" {
		return cfg
	}
	kids, err := g.Children(g.Root())
	if err == nil {
		cfg.Visible = slices.Clone(kids)
	}
	return cfg
}

// Clone returns an independent copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := c
	out.Visible = slices.Clone(c.Visible)
	out.Expanded = maps.Clone(c.Expanded)
	if out.Expanded == nil {
		out.Expanded = make(map[string]bool)
	}
	return out
}

// Focused reports whether an anchor is active.
func (c Configuration) Focused() bool { return c.Anchor != "" }

// Hash returns a stable digest of the configuration, suitable as a
// cache key component. Two configurations with the same visible order,
// expansion set, anchor and kind hash identically.
func (c Configuration) Hash() string {
	var b strings.Builder
	b.WriteString("v:")
	b.WriteString(strings.Join(c.Visible, "\x1f"))
	b.WriteString("|e:")
	b.WriteString(strings.Join(slices.Sorted(maps.Keys(c.Expanded)), "\x1f"))
	b.WriteString("|a:")
	b.WriteString(c.Anchor)
	b.WriteString("|k:")
	b.WriteString(c.Kind.String())
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Validate checks the configuration invariants against the optimized
// graph: every visible node exists, visible nodes are pairwise
// non-overlapping in the hierarchy, and under an active focus every
// expansion entry lies inside the anchor's subtree.
//
// A violation is reported as ErrInvalidConfiguration.
func (c Configuration) Validate(g *graph.Graph) error {
	for _, v := range c.Visible {
		if !g.Contains(v) {
			return fmt.Errorf("%w: visible node %s not in graph", ErrInvalidConfiguration, v)
		}
	}
	for _, v := range c.Visible {
		for _, w := range c.Visible {
			if v != w && g.IsDescendant(v, w) {
				return fmt.Errorf("%w: visible node %s nested under visible node %s", ErrInvalidConfiguration, v, w)
			}
		}
	}
	if c.Anchor != "" {
		if !g.Contains(c.Anchor) {
			return fmt.Errorf("%w: anchor %s not in graph", ErrInvalidConfiguration, c.Anchor)
		}
		for e := range c.Expanded {
			if e != c.Anchor && !g.IsDescendant(e, c.Anchor) {
				return fmt.Errorf("%w: expansion of %s unreachable from anchor %s", ErrInvalidConfiguration, e, c.Anchor)
			}
		}
	}
	return nil
}

// deriveVisible recomputes the subtree part of the visible set from
// the expansion set: a depth-first walk from the base nodes that
// descends into expanded nodes and emits everything else as a single
// visible entry. Nodes carried over from outside the base subtrees
// (focus neighbors) are not touched here.
func deriveVisible(g *graph.Graph, base []string, expanded map[string]bool) []string {
	var out []string
	var walk func(string)
	walk = func(id string) {
		kids, err := g.Children(id)
		if expanded[id] && err == nil && len(kids) > 0 {
			for _, c := range kids {
				walk(c)
			}
			return
		}
		out = append(out, id)
	}
	for _, id := range base {
		walk(id)
	}
	return out
}
