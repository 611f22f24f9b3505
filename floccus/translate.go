package floccus

import (
	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// translateTree deep-clones root with every node's own id and parentId
// rewritten through snap in the given direction, recursing into
// folders (diff.TranslateItem itself only rewrites a folder's own
// id/parentId, per its doc comment). The result stands in for "what
// the other side last saw of this tree": the mapping table is the
// engine's only persisted state, so the counterpart's current tree
// translated into this side's ids is the closest available stand-in
// for a last-synced baseline.
func translateTree(item tree.Item, snap mapping.Snapshot, dir mapping.Side) tree.Item {
	translated := diff.TranslateItem(item, snap, dir)
	of, ok := item.(*tree.Folder)
	if !ok {
		return translated
	}
	tf := translated.(*tree.Folder)
	children := make([]tree.Item, len(of.Children()))
	for i, c := range of.Children() {
		children[i] = translateTree(c, snap, dir)
	}
	tf.SetChildren(children)
	return tf
}

// translateIDs maps a set of folder ids from one coordinate system
// into the other, dropping any id with no pairing (used to turn one
// Reorder call's authoritative result into the other call's skip set).
func translateIDs(ids map[string]bool, snap mapping.Snapshot, dir mapping.Side) map[string]bool {
	out := make(map[string]bool, len(ids))
	for id := range ids {
		var translated string
		var ok bool
		if dir == mapping.LocalToServer {
			translated, ok = snap.ToServer(tree.KindFolder, id)
		} else {
			translated, ok = snap.ToLocal(tree.KindFolder, id)
		}
		if ok {
			out[translated] = true
		}
	}
	return out
}
