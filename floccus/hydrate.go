package floccus

import (
	"context"
	"fmt"

	"github.com/whjimmortal/floccus/tree"
)

// hydrate walks root and replaces every folder with Loaded()==false by
// the result of provider.LoadFolderChildren, recursing into the
// result, then stamps every folder with its current content hash
// (bottom-up, so a change anywhere in a subtree propagates to every
// ancestor's hash). The reconciliation pipeline needs a fully
// materialized tree on both sides before it can build the translated
// baseline trees scanning diffs against (see translateTree); this
// trades the Scanner's lazy per-folder loading for a simpler upfront
// pass, in exchange for giving every folder a real hash for the
// Scanner's checkHashes fast path to compare against.
func hydrate(ctx context.Context, provider tree.Provider, root *tree.Folder) (*tree.Folder, error) {
	if !root.Loaded() {
		loaded, err := provider.LoadFolderChildren(ctx, root.ID())
		if err != nil {
			return nil, fmt.Errorf("loading children of folder %s: %w", root.ID(), err)
		}
		root = loaded
	}

	children := make([]tree.Item, len(root.Children()))
	for i, c := range root.Children() {
		cf, ok := c.(*tree.Folder)
		if !ok {
			children[i] = c
			continue
		}
		hydrated, err := hydrate(ctx, provider, cf)
		if err != nil {
			return nil, err
		}
		children[i] = hydrated
	}
	root.SetChildren(children)
	root.SetHash(tree.HashFolder(root))
	return root, nil
}
