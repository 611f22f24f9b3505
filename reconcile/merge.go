package reconcile

import (
	"context"
	"fmt"

	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/scanner"
	"github.com/whjimmortal/floccus/tree"
)

// ReconcileFirstSync runs the merge reconciler used when the mapping
// table is empty. It discovers candidate pairings by a depth-first,
// CanMergeWith-driven walk of both trees, persists them, then diffs
// each tree against an empty root (everything is a CREATE) and
// delegates conflict resolution to the same engine Reconcile uses.
//
// A bidirectional Scanner-with-mergeFn invocation for pairing
// discovery is folded into the single subScan walk below: that walk's
// only observable effect is the mappings it records, and the Diffs
// those Scanner calls would otherwise produce are never consumed by
// the merge reconciler (see DESIGN.md).
func ReconcileFirstSync(ctx context.Context, localTree, serverTree *tree.Folder, store mapping.Store) (localPlan, serverPlan *diff.Diff, err error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	if err := subScan(localTree, serverTree, store); err != nil {
		return nil, nil, fmt.Errorf("first-sync pairing discovery: %w", err)
	}
	snap := store.Snapshot()

	localDiff, err := scanner.Scan(ctx, tree.NewRoot(), localTree, nil, scanner.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("first-sync local scan: %w", err)
	}
	serverDiff, err := scanner.Scan(ctx, tree.NewRoot(), serverTree, nil, scanner.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("first-sync server scan: %w", err)
	}

	return Reconcile(ctx, localTree, serverTree, localDiff, serverDiff, snap, store)
}
