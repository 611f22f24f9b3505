package floccus

import (
	"context"
	"fmt"

	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// bulkImportThreshold is the minimum subtree size (descendants of a
// freshly created folder) worth offering to Provider.BulkImportFolder
// instead of creating each item individually.
const bulkImportThreshold = 20

// applyPlan applies plan's actions, in log order, to provider. side
// names which coordinate system provider's ids live in (LocalToServer
// when provider is the server, ServerToLocal when it is local), and
// is also the side new mappings discovered along the way are queued
// under, via pending.
//
// CREATE payloads for brand-new items still carry the *source* side's
// id (Diff.Map leaves unmapped ids unchanged, per its own doc
// comment); applyPlan tracks the ids actually minted by provider and
// rewrites every later ParentID reference that points at one of them.
func applyPlan(ctx context.Context, provider tree.Provider, plan *diff.Diff, side mapping.Side, pending mapping.PendingWriter) error {
	created := map[tree.Kind]map[string]string{
		tree.KindFolder:   {},
		tree.KindBookmark: {},
	}
	skipSubtree := map[string]bool{}

	resolveParent := func(parentID string) string {
		if resolved, ok := created[tree.KindFolder][parentID]; ok {
			return resolved
		}
		return parentID
	}

	for _, a := range plan.Actions() {
		if skipSubtree[a.ID()] {
			continue
		}

		switch a.Type {
		case diff.CREATE:
			if f, ok := a.Payload.(*tree.Folder); ok {
				if f.Count()-1 >= bulkImportThreshold {
					ok, err := provider.BulkImportFolder(ctx, resolveParent(f.ParentID()), f)
					if err != nil {
						return fmt.Errorf("bulk importing folder %q: %w", f.Title(), err)
					}
					if ok {
						markSubtree(skipSubtree, f)
						continue
					}
				}
				newID, err := provider.CreateFolder(ctx, tree.NewFolder(f.ID(), resolveParent(f.ParentID()), f.Title()))
				if err != nil {
					return fmt.Errorf("creating folder %q: %w", f.Title(), err)
				}
				created[tree.KindFolder][f.ID()] = newID
				if err := pending.AddMapping(side, tree.KindFolder, f.ID(), newID); err != nil {
					return fmt.Errorf("recording folder mapping: %w", err)
				}
				continue
			}

			b := a.Payload.(*tree.Bookmark)
			newID, err := provider.CreateBookmark(ctx, tree.NewBookmark(b.ID(), resolveParent(b.ParentID()), b.Title(), b.URL()))
			if err != nil {
				return fmt.Errorf("creating bookmark %q: %w", b.Title(), err)
			}
			created[tree.KindBookmark][b.ID()] = newID
			if err := pending.AddMapping(side, tree.KindBookmark, b.ID(), newID); err != nil {
				return fmt.Errorf("recording bookmark mapping: %w", err)
			}

		case diff.UPDATE:
			if f, ok := a.Payload.(*tree.Folder); ok {
				if err := provider.UpdateFolder(ctx, f); err != nil {
					return fmt.Errorf("updating folder %s: %w", f.ID(), err)
				}
				continue
			}
			b := a.Payload.(*tree.Bookmark)
			if err := provider.UpdateBookmark(ctx, b); err != nil {
				return fmt.Errorf("updating bookmark %s: %w", b.ID(), err)
			}

		case diff.MOVE:
			if f, ok := a.Payload.(*tree.Folder); ok {
				if err := provider.UpdateFolder(ctx, tree.NewFolder(f.ID(), resolveParent(f.ParentID()), f.Title())); err != nil {
					return fmt.Errorf("moving folder %s: %w", f.ID(), err)
				}
				continue
			}
			b := a.Payload.(*tree.Bookmark)
			if err := provider.UpdateBookmark(ctx, tree.NewBookmark(b.ID(), resolveParent(b.ParentID()), b.Title(), b.URL())); err != nil {
				return fmt.Errorf("moving bookmark %s: %w", b.ID(), err)
			}

		case diff.REORDER:
			entries := make([]tree.OrderEntry, len(a.Order))
			for i, e := range a.Order {
				id := e.ID
				if e.Kind == tree.KindFolder {
					id = resolveParent(id)
				} else if resolved, ok := created[tree.KindBookmark][id]; ok {
					id = resolved
				}
				entries[i] = tree.OrderEntry{Kind: e.Kind, ID: id}
			}
			if err := provider.OrderFolder(ctx, a.ID(), entries); err != nil {
				return fmt.Errorf("reordering folder %s: %w", a.ID(), err)
			}
		}
	}

	return nil
}

// markSubtree records that every descendant of f (already covered by
// a successful bulk import) should be skipped when its own CREATE
// action is encountered later in the same plan.
func markSubtree(skip map[string]bool, f *tree.Folder) {
	for _, c := range f.Children() {
		skip[c.ID()] = true
		if cf, ok := c.(*tree.Folder); ok {
			markSubtree(skip, cf)
		}
	}
}
