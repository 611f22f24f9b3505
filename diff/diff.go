package diff

import (
	"sync"

	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// Diff is an ordered, append-only log of Actions. Commit is O(1);
// Actions(type...) is a linear filter and callers must not assume it
// reflects later commits.
type Diff struct {
	mu      sync.Mutex
	actions []Action
}

// New returns an empty Diff.
func New() *Diff {
	return &Diff{}
}

// Commit appends action to the log.
func (d *Diff) Commit(a Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, a)
}

// Actions returns a copy of the logged actions. When types is
// non-empty, only actions whose Type is in types are returned; log
// order is preserved either way.
func (d *Diff) Actions(types ...ActionType) []Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(types) == 0 {
		out := make([]Action, len(d.actions))
		copy(out, d.actions)
		return out
	}

	want := make(map[ActionType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	var out []Action
	for _, a := range d.actions {
		if want[a.Type] {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of committed actions.
func (d *Diff) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.actions)
}

// Map returns a new Diff in which every action not excluded by filter
// has its Payload/OldItem ids and parentIds translated through m in
// the given direction. Actions for which filter returns false are
// copied through unmodified, in their original coordinate system --
// used to keep certain identifiers in the source coordinate system,
// e.g. MOVE payloads during normal-sync mapping.
// Ids with no mapping entry pass through unchanged, since they name
// items newly created on the opposite side.
func (d *Diff) Map(m mapping.Snapshot, toServer bool, filter func(Action) bool) *Diff {
	d.mu.Lock()
	actions := make([]Action, len(d.actions))
	copy(actions, d.actions)
	d.mu.Unlock()

	dir := mapping.ServerToLocal
	if toServer {
		dir = mapping.LocalToServer
	}

	out := New()
	for _, a := range actions {
		if filter != nil && !filter(a) {
			out.Commit(a)
			continue
		}
		out.Commit(mapAction(a, m, dir))
	}
	return out
}

func mapAction(a Action, m mapping.Snapshot, dir mapping.Side) Action {
	mapped := a
	if a.Payload != nil {
		mapped.Payload = TranslateItem(a.Payload, m, dir)
	}
	if a.OldItem != nil {
		mapped.OldItem = TranslateItem(a.OldItem, m, dir)
	}
	if a.Type == REORDER {
		mapped.Order = make([]tree.OrderEntry, len(a.Order))
		for i, e := range a.Order {
			mapped.Order[i] = tree.OrderEntry{
				Kind: e.Kind,
				ID:   m.Translate(dir, e.Kind, e.ID),
			}
		}
	}
	return mapped
}

// TranslateItem returns a clone of item with its id and parentId
// rewritten through m in the given direction. For folders, only the
// folder's own id/parentId are rewritten -- children are addressed by
// separate actions in the log, so their ids are translated when their
// own actions are mapped. Exported for the reconciler's use on MOVE
// actions, which its Diff.Map filter leaves untranslated (see Map's doc
// comment).
func TranslateItem(item tree.Item, m mapping.Snapshot, dir mapping.Side) tree.Item {
	clone := shallowClone(item)
	clone.SetID(m.Translate(dir, item.Kind(), item.ID()))
	if item.ParentID() != tree.RootID && item.ParentID() != "" {
		clone.SetParentID(m.Translate(dir, tree.KindFolder, item.ParentID()))
	}
	return clone
}

// shallowClone copies an item's fields without recursing into a
// folder's children, so a translated folder payload carries no
// children even when the original payload held its full subtree.
func shallowClone(item tree.Item) tree.Item {
	switch v := item.(type) {
	case *tree.Bookmark:
		return tree.NewBookmark(v.ID(), v.ParentID(), v.Title(), v.URL())
	case *tree.Folder:
		f := tree.NewFolder(v.ID(), v.ParentID(), v.Title())
		f.SetHash(v.Hash())
		f.SetLoaded(v.Loaded())
		return f
	default:
		return item
	}
}
