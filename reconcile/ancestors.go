package reconcile

import "github.com/whjimmortal/floccus/tree"

// parentIndex maps a folder id to its parent folder id, for every
// folder in the tree; the root maps to the empty string. It exists so
// the hierarchy-reversal detector can walk ancestor chains by
// iterative lookup rather than by holding owning references into the
// tree.
type parentIndex map[string]string

func buildParentIndex(root *tree.Folder) parentIndex {
	idx := parentIndex{root.ID(): ""}
	var walk func(f *tree.Folder)
	walk = func(f *tree.Folder) {
		for _, c := range f.Children() {
			if cf, ok := c.(*tree.Folder); ok {
				idx[cf.ID()] = f.ID()
				walk(cf)
			}
		}
	}
	walk(root)
	return idx
}

// ancestorsOrSelf returns id followed by every ancestor up to and
// including the root, in that order.
func ancestorsOrSelf(idx parentIndex, id string) []string {
	chain := []string{id}
	cur := id
	for {
		parent, ok := idx[cur]
		if !ok || parent == "" {
			return chain
		}
		chain = append(chain, parent)
		cur = parent
	}
}

// isDescendantOrSelf reports whether ancestorID appears in
// candidateID's ancestor-or-self chain.
func isDescendantOrSelf(idx parentIndex, ancestorID, candidateID string) bool {
	for _, a := range ancestorsOrSelf(idx, candidateID) {
		if a == ancestorID {
			return true
		}
	}
	return false
}
