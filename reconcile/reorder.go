package reconcile

import (
	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// Reorder appends REORDER actions to targetPlan for every folder
// touched by one of targetPlan's CREATE/MOVE actions. sourceTree holds
// the authoritative child order to copy; sourceTree's ids are
// translated into target coordinates through snap in the given
// direction. skip names target folder ids that a prior, authoritative
// Reorder call on the opposite side has already claimed; pass nil
// when this call is itself the authoritative one. It returns the set
// of folder ids it reordered, so the caller can pass it as skip to
// the non-authoritative call.
func Reorder(targetPlan *diff.Diff, targetTree, sourceTree *tree.Folder, snap mapping.Snapshot, dir mapping.Side, skip map[string]bool) map[string]bool {
	touched := touchedFolders(targetPlan)
	removed := removedFolders(targetPlan)
	reordered := map[string]bool{}

	reverse := mapping.ServerToLocal
	if dir == mapping.ServerToLocal {
		reverse = mapping.LocalToServer
	}

	for id := range touched {
		if skip[id] || removed[id] {
			continue
		}

		targetFolder := targetTree.FindFolder(id)
		if targetFolder == nil {
			// Newly created on the target side by this very plan: its
			// CREATE action already establishes its children's order.
			continue
		}

		sourceID := snap.Translate(reverse, tree.KindFolder, id)
		sourceFolder := sourceTree.FindFolder(sourceID)
		if sourceFolder == nil {
			continue
		}

		order := translatedOrder(sourceFolder, snap, dir)
		if sameTargetOrder(targetFolder, order) {
			continue
		}

		targetPlan.Commit(diff.Action{
			Type:    diff.REORDER,
			Payload: tree.NewFolder(id, targetFolder.ParentID(), targetFolder.Title()),
			Order:   order,
		})
		reordered[id] = true
	}

	return reordered
}

// touchedFolders collects the parent folder id of every CREATE/MOVE
// payload in plan, plus the pre-move parent of every MOVE (both ends
// of a move see their listing change).
func touchedFolders(plan *diff.Diff) map[string]bool {
	touched := map[string]bool{}
	for _, a := range plan.Actions(diff.CREATE, diff.MOVE) {
		if a.Payload != nil {
			touched[a.Payload.ParentID()] = true
		}
		if a.Type == diff.MOVE && a.OldItem != nil {
			touched[a.OldItem.ParentID()] = true
		}
	}
	return touched
}

// removedFolders collects the ids of folders targeted by a REMOVE in
// plan: REORDERs referring to them are suppressed.
func removedFolders(plan *diff.Diff) map[string]bool {
	removed := map[string]bool{}
	for _, a := range plan.Actions(diff.REMOVE) {
		if a.Kind() == tree.KindFolder && a.Payload != nil {
			removed[a.Payload.ID()] = true
		}
	}
	return removed
}

func translatedOrder(sourceFolder *tree.Folder, snap mapping.Snapshot, dir mapping.Side) []tree.OrderEntry {
	var order []tree.OrderEntry
	for _, c := range sourceFolder.Children() {
		var id string
		var ok bool
		if dir == mapping.LocalToServer {
			id, ok = snap.ToServer(c.Kind(), c.ID())
		} else {
			id, ok = snap.ToLocal(c.Kind(), c.ID())
		}
		if !ok {
			// Skip ids with no mapping rather than guess their position.
			continue
		}
		order = append(order, tree.OrderEntry{Kind: c.Kind(), ID: id})
	}
	return order
}

func sameTargetOrder(targetFolder *tree.Folder, order []tree.OrderEntry) bool {
	children := targetFolder.Children()
	if len(children) != len(order) {
		return false
	}
	for i, c := range children {
		if c.Kind() != order[i].Kind || c.ID() != order[i].ID {
			return false
		}
	}
	return true
}
