// Package path implements exploration paths: ordered action histories
// that resolve deterministically into matrix configurations.
//
// A path is the durable record of an exploration. Individual actions
// (focus a node, expand a node) are appended as the user navigates;
// the resolver repairs the path into canonical form and folds it into
// a Configuration on every change. Storing the path instead of the
// configuration keeps histories replayable against newer graphs:
// actions whose nodes have disappeared are skipped, everything else
// still applies.
package path

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/depmatrix/depmatrix/pkg/matrix"
)

// ActionType discriminates the two navigation actions.
type ActionType string

const (
	// ActionFocus pins a node as the focus anchor.
	ActionFocus ActionType = "focus"
	// ActionExpand replaces a node with its children.
	ActionExpand ActionType = "expand"
)

// Action is one navigation step in an exploration path. Direction is
// meaningful only for focus actions.
type Action struct {
	Type      ActionType
	Node      string
	Direction matrix.FocusKind
}

// NewFocus returns a focus action on node with the given direction.
func NewFocus(node string, kind matrix.FocusKind) Action {
	return Action{Type: ActionFocus, Node: node, Direction: kind}
}

// NewExpand returns an expand action on node.
func NewExpand(node string) Action {
	return Action{Type: ActionExpand, Node: node}
}

// String renders the compact spec form, e.g. "focus:out:core" or
// "expand:core/db".
func (a Action) String() string {
	if a.Type == ActionFocus {
		return fmt.Sprintf("focus:%s:%s", a.Direction, a.Node)
	}
	return fmt.Sprintf("expand:%s", a.Node)
}

// actionDoc is the wire form shared by JSON and BSON serialization.
type actionDoc struct {
	Type      string `json:"type" bson:"type"`
	Node      string `json:"node" bson:"node"`
	Direction string `json:"direction,omitempty" bson:"direction,omitempty"`
}

// MarshalJSON emits {"type":"expand","node":"a"} for expands and adds
// a "direction" field for focuses.
func (a Action) MarshalJSON() ([]byte, error) {
	doc := actionDoc{Type: string(a.Type), Node: a.Node}
	if a.Type == ActionFocus {
		doc.Direction = a.Direction.String()
	}
	return json.Marshal(doc)
}

// UnmarshalJSON parses the wire form. A focus without a direction
// defaults to both.
func (a *Action) UnmarshalJSON(data []byte) error {
	var doc actionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return a.fromDoc(doc)
}

func (a *Action) fromDoc(doc actionDoc) error {
	switch ActionType(doc.Type) {
	case ActionFocus:
		kind, err := matrix.ParseFocusKind(doc.Direction)
		if err != nil {
			return err
		}
		*a = NewFocus(doc.Node, kind)
	case ActionExpand:
		*a = NewExpand(doc.Node)
	default:
		return fmt.Errorf("unknown action type %q", doc.Type)
	}
	if a.Node == "" {
		return fmt.Errorf("%s action without a node", doc.Type)
	}
	return nil
}

// ParseAction parses the compact spec form used on the command line:
//
//	expand:NODE
//	focus:DIRECTION:NODE
//	focus:NODE              (direction defaults to both)
//
// Node IDs may themselves contain colons (synthetic group IDs do), so
// only the leading tokens are split off.
func ParseAction(spec string) (Action, error) {
	typ, rest, ok := strings.Cut(spec, ":")
	if !ok || rest == "" {
		return Action{}, fmt.Errorf("invalid action spec %q", spec)
	}
	switch ActionType(typ) {
	case ActionExpand:
		return NewExpand(rest), nil
	case ActionFocus:
		if dir, node, ok := strings.Cut(rest, ":"); ok {
			if kind, err := matrix.ParseFocusKind(dir); err == nil && node != "" {
				return NewFocus(node, kind), nil
			}
		}
		return NewFocus(rest, matrix.FocusBoth), nil
	}
	return Action{}, fmt.Errorf("unknown action type %q in spec %q", typ, spec)
}

// ParseActions parses a list of compact specs in order.
func ParseActions(specs []string) ([]Action, error) {
	out := make([]Action, 0, len(specs))
	for _, s := range specs {
		a, err := ParseAction(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
