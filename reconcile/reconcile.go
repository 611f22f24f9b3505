// Package reconcile implements the normal-sync and first-sync (merge)
// reconcilers, and the reorder post-processor: it turns two Diffs plus
// a mapping snapshot into two Plans.
package reconcile

import (
	"context"
	"fmt"

	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/internal/errors"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// Reconcile runs the normal-sync reconciler: local wins on content
// conflicts, hierarchy-reversal between concurrent folder moves is
// detected and compensated on the server side, and REMOVE/REORDER
// actions are dropped from both plans.
func Reconcile(ctx context.Context, localTree, serverTree *tree.Folder, localDiff, serverDiff *diff.Diff, snap mapping.Snapshot, pending mapping.PendingWriter) (localPlan, serverPlan *diff.Diff, err error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	localIdx := buildParentIndex(localTree)
	serverIdx := buildParentIndex(serverTree)

	rawServerPlan, err := buildPlan(passCtx{
		toServer: true,
		source:   localDiff, opposing: serverDiff,
		sourceIdx: localIdx, opposingIdx: serverIdx,
		snap: snap, pending: pending,
	})
	if err != nil {
		return nil, nil, err
	}

	rawLocalPlan, err := buildPlan(passCtx{
		toServer: false,
		source:   serverDiff, opposing: localDiff,
		sourceIdx: serverIdx, opposingIdx: localIdx,
		snap: snap, pending: pending,
	})
	if err != nil {
		return nil, nil, err
	}

	notMoveOrReorder := func(a diff.Action) bool { return a.Type != diff.REORDER && a.Type != diff.MOVE }
	serverPlan = rawServerPlan.Map(snap, true, notMoveOrReorder)
	localPlan = rawLocalPlan.Map(snap, false, notMoveOrReorder)
	return localPlan, serverPlan, nil
}

// passCtx holds the state needed to turn one Diff into one raw Plan
// (still carrying source-side ids for every action type Map will later
// translate; MOVE actions are translated inline since Map skips them).
type passCtx struct {
	toServer           bool
	source, opposing   *diff.Diff
	sourceIdx, opposingIdx parentIndex
	snap               mapping.Snapshot
	pending            mapping.PendingWriter
}

// dir translates an id expressed in source coordinates into opposing
// coordinates.
func (p passCtx) dir() mapping.Side {
	if p.toServer {
		return mapping.LocalToServer
	}
	return mapping.ServerToLocal
}

func buildPlan(p passCtx) (*diff.Diff, error) {
	out := diff.New()
	opposingMoves := p.opposing.Actions(diff.MOVE)
	opposingUpdates := p.opposing.Actions(diff.UPDATE)
	opposingCreates := p.opposing.Actions(diff.CREATE)

	for _, a := range p.source.Actions() {
		switch a.Type {
		case diff.REMOVE, diff.REORDER:
			continue

		case diff.CREATE:
			if conflict := findCreateConflict(a, opposingCreates, p); conflict != nil {
				localItem, serverItem := a.Payload, conflict.Payload
				if !p.toServer {
					localItem, serverItem = conflict.Payload, a.Payload
				}
				if err := subScan(localItem, serverItem, p.pending); err != nil {
					return nil, err
				}
				continue
			}
			out.Commit(a)

		case diff.UPDATE:
			if !p.toServer && hasActionFor(opposingUpdates, p.snap.Translate(p.dir(), a.Kind(), a.ID())) {
				continue
			}
			out.Commit(a)

		case diff.MOVE:
			if a.Kind() != tree.KindFolder {
				out.Commit(diff.Action{Type: diff.MOVE, Payload: diff.TranslateItem(a.Payload, p.snap, p.dir()), OldItem: diff.TranslateItem(a.OldItem, p.snap, p.dir())})
				continue
			}

			conflictB, isReversal := findHierarchyReversal(a, opposingMoves, p)
			if !isReversal {
				out.Commit(diff.Action{Type: diff.MOVE, Payload: diff.TranslateItem(a.Payload, p.snap, p.dir()), OldItem: diff.TranslateItem(a.OldItem, p.snap, p.dir())})
				continue
			}

			if !p.toServer {
				// Server pass producing localPlan: local wins, drop
				// the conflicting server move with no compensation.
				continue
			}

			if err := compensate(out, p, conflictB); err != nil {
				return nil, err
			}
			out.Commit(diff.Action{Type: diff.MOVE, Payload: diff.TranslateItem(a.Payload, p.snap, p.dir()), OldItem: diff.TranslateItem(a.OldItem, p.snap, p.dir())})

		default:
			out.Commit(a)
		}
	}

	return out, nil
}

func hasActionFor(actions []diff.Action, id string) bool {
	for _, a := range actions {
		if a.ID() == id {
			return true
		}
	}
	return false
}

// findCreateConflict reports the opposing CREATE, if any, whose parent
// maps to a's parent and whose payload can merge with a's payload.
func findCreateConflict(a diff.Action, opposingCreates []diff.Action, p passCtx) *diff.Action {
	translatedParent := p.snap.Translate(p.dir(), tree.KindFolder, a.Payload.ParentID())
	for i := range opposingCreates {
		oc := opposingCreates[i]
		if oc.Kind() != a.Kind() {
			continue
		}
		if oc.Payload.ParentID() != translatedParent {
			continue
		}
		if a.Payload.CanMergeWith(oc.Payload) {
			return &opposingCreates[i]
		}
	}
	return nil
}

// findHierarchyReversal reports the opposing folder MOVE, if any, that
// forms a hierarchy reversal with a.
func findHierarchyReversal(a diff.Action, opposingMoves []diff.Action, p passCtx) (*diff.Action, bool) {
	for i := range opposingMoves {
		b := opposingMoves[i]
		if b.Kind() != tree.KindFolder {
			continue
		}
		var reversal bool
		if p.toServer {
			reversal = isHierarchyReversal(a, b, p.sourceIdx, p.opposingIdx, p.snap)
		} else {
			reversal = isHierarchyReversal(b, a, p.opposingIdx, p.sourceIdx, p.snap)
		}
		if reversal {
			return &opposingMoves[i], true
		}
	}
	return nil, false
}

// isHierarchyReversal reports whether a local folder MOVE (localMove,
// to parent P_L) and a server folder MOVE (serverMove, to parent P_S)
// would leave each side's destination folder nested inside the
// other's, a cycle that cannot be applied on either side as-is.
func isHierarchyReversal(localMove, serverMove diff.Action, localIdx, serverIdx parentIndex, snap mapping.Snapshot) bool {
	s := serverMove.Payload.ID()
	l := localMove.Payload.ID()

	cond1 := false
	for _, a := range ancestorsOrSelf(localIdx, localMove.Payload.ParentID()) {
		sid, ok := snap.ToServer(tree.KindFolder, a)
		if ok && isDescendantOrSelf(serverIdx, s, sid) {
			cond1 = true
			break
		}
	}
	if !cond1 {
		return false
	}

	for _, b := range ancestorsOrSelf(serverIdx, serverMove.Payload.ParentID()) {
		lid, ok := snap.ToLocal(tree.KindFolder, b)
		if ok && isDescendantOrSelf(localIdx, l, lid) {
			return true
		}
	}
	return false
}

// compensate appends to out a MOVE that reverts conflictB's folder to
// its pre-move location, guarding against duplicates already present
// in out or in the local source diff.
func compensate(out *diff.Diff, p passCtx, conflictB *diff.Action) error {
	revertedID := conflictB.Payload.ID()

	if localID, ok := p.snap.ToLocal(tree.KindFolder, revertedID); ok {
		if hasActionFor(out.Actions(diff.MOVE), revertedID) || hasActionFor(p.source.Actions(diff.MOVE), localID) {
			return nil
		}
	} else if hasActionFor(out.Actions(diff.MOVE), revertedID) {
		return nil
	}

	revertPayload := conflictB.OldItem.Clone(true)
	revertOldItem := diff.TranslateItem(conflictB.Payload, p.snap, mapping.ServerToLocal)

	if revertPayload.ParentID() == revertPayload.ID() {
		return fmt.Errorf("%w: compensating move for folder %s would parent it under itself", errors.ErrHierarchyReversalUnresolvable, revertPayload.ID())
	}

	out.Commit(diff.Action{Type: diff.MOVE, Payload: revertPayload, OldItem: revertOldItem})
	return nil
}
