// Package diff implements the action algebra of the sync engine: an
// ordered, append-only log of structural edits between two trees,
// plus the identifier-rewriting Map operation that turns a Diff
// computed on one side's ids into a Plan expressed in the other
// side's coordinate system.
package diff

import "github.com/whjimmortal/floccus/tree"

// ActionType names one of the five edit kinds the engine supports.
type ActionType int

const (
	CREATE ActionType = iota
	UPDATE
	MOVE
	REMOVE
	REORDER
)

func (t ActionType) String() string {
	switch t {
	case CREATE:
		return "CREATE"
	case UPDATE:
		return "UPDATE"
	case MOVE:
		return "MOVE"
	case REMOVE:
		return "REMOVE"
	case REORDER:
		return "REORDER"
	default:
		return "UNKNOWN"
	}
}

// Action is a single structural edit. Payload is always the item's
// post-state (or, for REORDER, the parent folder whose children were
// reordered). OldItem is populated for MOVE and UPDATE and holds the
// item's pre-state; its id is stable across the action. Order is
// populated only for REORDER and carries the authoritative child
// order.
type Action struct {
	Type     ActionType
	Payload  tree.Item
	OldItem  tree.Item
	Order    []tree.OrderEntry
	Index    int
	OldIndex int
}

// ID returns the stable identifier this action concerns: Payload's id
// for every type except REORDER, where it is the reordered folder's id.
func (a Action) ID() string {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.ID()
}

// Kind returns the variant of item this action concerns.
func (a Action) Kind() tree.Kind {
	if a.Payload == nil {
		return tree.KindFolder
	}
	return a.Payload.Kind()
}
