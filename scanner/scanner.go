// Package scanner implements the two-tree differ: it computes the
// ordered log of Actions that transforms an old tree into a new tree,
// given a merge predicate for pairing items that are not related by
// id.
package scanner

import (
	"context"
	"fmt"

	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/tree"
)

// MergeFunc decides whether a pair of items not related by id should
// be treated as the same node. Returning true suppresses the
// otherwise-emitted CREATE/REMOVE pair in favor of pairing the two
// (with an UPDATE when their content differs); candidates are only
// looked for among the same folder's old children, so such a pairing
// never produces a MOVE. In cached/normal sync this always returns false; in
// first-sync merge it applies Item.CanMergeWith.
type MergeFunc func(old, new tree.Item) bool

// Loader fetches the children of a sparsely-loaded folder on demand,
// matching the adapter's loadFolderChildren contract.
type Loader func(ctx context.Context, id string) (*tree.Folder, error)

// Options configures one Scan call.
type Options struct {
	// PreserveOrder, when true, emits a REORDER action for any folder
	// whose surviving children's relative order differs between the
	// two trees.
	PreserveOrder bool
	// CheckHashes, when true, skips recursing into a folder whose
	// precomputed content hash matches on both sides.
	CheckHashes bool
	// Loader is consulted when a folder on the new side is present
	// but not yet Loaded(). May be nil if newRoot's tree is known to
	// be fully loaded already.
	Loader Loader
}

// located pairs an item with the folder that directly contains it, so
// MOVE detection can report (and later reconcile) the pre-move parent.
type located struct {
	item   tree.Item
	parent *tree.Folder
}

func indexTree(root *tree.Folder) map[tree.Kind]map[string]located {
	idx := map[tree.Kind]map[string]located{
		tree.KindFolder:   {root.ID(): {item: root, parent: nil}},
		tree.KindBookmark: {},
	}
	var walk func(f *tree.Folder)
	walk = func(f *tree.Folder) {
		for _, c := range f.Children() {
			idx[c.Kind()][c.ID()] = located{item: c, parent: f}
			if cf, ok := c.(*tree.Folder); ok {
				walk(cf)
			}
		}
	}
	walk(root)
	return idx
}

type key struct {
	kind tree.Kind
	id   string
}

func keyOf(item tree.Item) key { return key{kind: item.Kind(), id: item.ID()} }

type state struct {
	oldIdx map[tree.Kind]map[string]located
	newIdx map[tree.Kind]map[string]located
	merge  MergeFunc
	opts   Options
	d      *diff.Diff
	// consumedOld/consumedNew record ids that have already been
	// accounted for by an UPDATE/MOVE/matched pairing, so the final
	// only-in-old sweep does not also emit a spurious REMOVE, and a
	// mergeFn match is not reused for two different new items.
	consumedOld map[key]bool
	consumedNew map[key]bool
}

// Scan computes the Diff that transforms oldRoot into newRoot.
func Scan(ctx context.Context, oldRoot, newRoot *tree.Folder, mergeFn MergeFunc, opts Options) (*diff.Diff, error) {
	if mergeFn == nil {
		mergeFn = func(tree.Item, tree.Item) bool { return false }
	}
	s := &state{
		oldIdx:      indexTree(oldRoot),
		newIdx:      indexTree(newRoot),
		merge:       mergeFn,
		opts:        opts,
		d:           diff.New(),
		consumedOld: map[key]bool{},
		consumedNew: map[key]bool{},
	}
	if err := s.scanFolder(ctx, oldRoot, newRoot); err != nil {
		return nil, err
	}
	return s.d, nil
}

func findChild(f *tree.Folder, k key) tree.Item {
	for _, c := range f.Children() {
		if c.Kind() == k.kind && c.ID() == k.id {
			return c
		}
	}
	return nil
}

func (s *state) scanFolder(ctx context.Context, oldFolder, newFolder *tree.Folder) error {
	if s.opts.CheckHashes && oldFolder.Hash() != "" && oldFolder.Hash() == newFolder.Hash() {
		return nil
	}

	if !newFolder.Loaded() {
		if s.opts.Loader == nil {
			return fmt.Errorf("scanner: folder %s is not loaded and no Loader was supplied", newFolder.ID())
		}
		loaded, err := s.opts.Loader(ctx, newFolder.ID())
		if err != nil {
			return fmt.Errorf("scanner: loading children of folder %s: %w", newFolder.ID(), err)
		}
		newFolder = loaded
		s.newIdx[tree.KindFolder][newFolder.ID()] = located{item: newFolder, parent: nil}
		for _, c := range newFolder.Children() {
			s.newIdx[c.Kind()][c.ID()] = located{item: c, parent: newFolder}
		}
	}

	for _, nc := range newFolder.Children() {
		if err := s.handleNewChild(ctx, oldFolder, newFolder, nc); err != nil {
			return err
		}
	}

	for _, oc := range oldFolder.Children() {
		k := keyOf(oc)
		if s.consumedOld[k] {
			continue
		}
		if _, foundNew := s.newIdx[k.kind][k.id]; foundNew {
			// Exists somewhere in the new tree but was not visited as
			// a MOVE destination from here: it was matched via mergeFn
			// at another folder, or moved without our having reached
			// its destination yet in this DFS order. Either way it is
			// not a removal.
			continue
		}
		s.removeSubtree(oc)
	}

	if s.opts.PreserveOrder {
		s.emitReorderIfNeeded(oldFolder, newFolder)
	}

	return nil
}

func (s *state) handleNewChild(ctx context.Context, oldFolder, newFolder *tree.Folder, nc tree.Item) error {
	k := keyOf(nc)
	if s.consumedNew[k] {
		return nil
	}

	if oc := findChild(oldFolder, k); oc != nil {
		s.consumedOld[k] = true
		s.consumedNew[k] = true
		return s.matched(ctx, oc, nc)
	}

	if loc, ok := s.oldIdx[k.kind][k.id]; ok {
		s.consumedOld[k] = true
		s.consumedNew[k] = true
		s.d.Commit(diff.Action{Type: diff.MOVE, Payload: nc.Clone(true), OldItem: loc.item.Clone(true)})
		if ncf, ok := nc.(*tree.Folder); ok {
			oldParentFolder, _ := loc.item.(*tree.Folder)
			if oldParentFolder == nil {
				oldParentFolder = tree.NewFolder(nc.ID(), loc.parent.ID(), nc.Title())
			}
			return s.scanFolder(ctx, oldParentFolder, ncf)
		}
		return nil
	}

	if match := s.findMergeCandidate(oldFolder, nc); match != nil {
		mk := keyOf(match)
		s.consumedOld[mk] = true
		s.consumedNew[k] = true
		return s.matched(ctx, match, nc)
	}

	s.consumedNew[k] = true
	if ncf, ok := nc.(*tree.Folder); ok {
		// Recurse against an empty stand-in so each child is matched on
		// its own: one that exists elsewhere in the old tree becomes a
		// MOVE, and an unloaded folder goes through the Loader.
		s.d.Commit(diff.Action{Type: diff.CREATE, Payload: nc.Clone(true)})
		return s.scanFolder(ctx, tree.NewFolder(ncf.ID(), ncf.ParentID(), ncf.Title()), ncf)
	}
	s.createSubtree(nc)
	return nil
}

// matched handles a pair known to correspond to the same logical item
// (same id at this folder, id found elsewhere and moved here, or
// mergeFn-paired). Emits UPDATE if content differs, and recurses into
// folders.
func (s *state) matched(ctx context.Context, oc, nc tree.Item) error {
	if changed, ok := diffContent(oc, nc); ok && changed {
		s.d.Commit(diff.Action{Type: diff.UPDATE, Payload: nc.Clone(true), OldItem: oc.Clone(true)})
	}
	ocf, ok1 := oc.(*tree.Folder)
	ncf, ok2 := nc.(*tree.Folder)
	if ok1 && ok2 {
		return s.scanFolder(ctx, ocf, ncf)
	}
	return nil
}

// findMergeCandidate looks for an old child of oldFolder, not yet
// consumed, for which mergeFn(old, nc) is true. Scoped to the current
// folder's children.
func (s *state) findMergeCandidate(oldFolder *tree.Folder, nc tree.Item) tree.Item {
	for _, oc := range oldFolder.Children() {
		if oc.Kind() != nc.Kind() {
			continue
		}
		k := keyOf(oc)
		if s.consumedOld[k] {
			continue
		}
		if s.merge(oc, nc) {
			return oc
		}
	}
	return nil
}

// diffContent reports whether old and new item variants agree (ok) and,
// if so, whether any observable field (title; bookmark URL) differs.
func diffContent(oldItem, newItem tree.Item) (changed, ok bool) {
	if oldItem.Kind() != newItem.Kind() {
		return false, false
	}
	if oldItem.Kind() == tree.KindBookmark {
		ob, _ := oldItem.(*tree.Bookmark)
		nb, _ := newItem.(*tree.Bookmark)
		return !ob.Equal(nb), true
	}
	return oldItem.Title() != newItem.Title(), true
}

// createSubtree emits CREATE for item and, if it is a folder, for
// every descendant in preorder: the folder is created before its
// contents.
func (s *state) createSubtree(item tree.Item) {
	s.d.Commit(diff.Action{Type: diff.CREATE, Payload: item.Clone(true)})
	f, ok := item.(*tree.Folder)
	if !ok {
		return
	}
	for _, c := range f.Children() {
		s.consumedNew[keyOf(c)] = true
		s.createSubtree(c)
	}
}

// removeSubtree emits REMOVE for every descendant of item in
// postorder, then for item itself: children are removed before their
// parent.
func (s *state) removeSubtree(item tree.Item) {
	if f, ok := item.(*tree.Folder); ok {
		for _, c := range f.Children() {
			k := keyOf(c)
			if s.consumedOld[k] {
				continue
			}
			if _, foundNew := s.newIdx[k.kind][k.id]; foundNew {
				continue
			}
			s.removeSubtree(c)
		}
	}
	s.d.Commit(diff.Action{Type: diff.REMOVE, Payload: item.Clone(true)})
}

// emitReorderIfNeeded compares the relative order of children common
// to both folders (ignoring create/remove/move churn) and, if it
// differs, commits a REORDER carrying newFolder's authoritative order.
func (s *state) emitReorderIfNeeded(oldFolder, newFolder *tree.Folder) {
	newKeys := make(map[key]bool, len(newFolder.Children()))
	for _, c := range newFolder.Children() {
		newKeys[keyOf(c)] = true
	}

	var oldCommon, newCommon []key
	for _, c := range oldFolder.Children() {
		k := keyOf(c)
		if newKeys[k] {
			oldCommon = append(oldCommon, k)
		}
	}
	oldKeys := make(map[key]bool, len(oldFolder.Children()))
	for _, c := range oldFolder.Children() {
		oldKeys[keyOf(c)] = true
	}
	for _, c := range newFolder.Children() {
		k := keyOf(c)
		if oldKeys[k] {
			newCommon = append(newCommon, k)
		}
	}

	if sameOrder(oldCommon, newCommon) {
		return
	}

	order := make([]tree.OrderEntry, len(newFolder.Children()))
	for i, c := range newFolder.Children() {
		order[i] = tree.OrderEntry{Kind: c.Kind(), ID: c.ID()}
	}
	s.d.Commit(diff.Action{Type: diff.REORDER, Payload: newFolder.Clone(true), Order: order})
}

func sameOrder(a, b []key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
