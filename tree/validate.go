package tree

import (
	"fmt"

	"github.com/whjimmortal/floccus/internal/errors"
)

// Validate checks that a tree is acyclic, that every non-root node's
// ParentID agrees with its actual parent's id, and that ids are unique
// within each kind.
func Validate(root *Folder) error {
	seen := map[Kind]map[string]bool{
		KindFolder:   {root.ID(): true},
		KindBookmark: {},
	}
	visiting := map[string]bool{root.ID(): true}

	return validateFolder(root, seen, visiting)
}

func validateFolder(f *Folder, seen map[Kind]map[string]bool, visiting map[string]bool) error {
	for _, c := range f.Children() {
		if c.ParentID() != f.ID() {
			return fmt.Errorf("%w: item %s has parentId %s but lives under folder %s",
				errors.ErrInconsistentTree, c.ID(), c.ParentID(), f.ID())
		}
		if seen[c.Kind()][c.ID()] {
			return fmt.Errorf("%w: duplicate %s id %s", errors.ErrInconsistentTree, c.Kind(), c.ID())
		}
		seen[c.Kind()][c.ID()] = true

		cf, ok := c.(*Folder)
		if !ok {
			continue
		}
		if visiting[cf.ID()] {
			return fmt.Errorf("%w: cycle detected at folder %s", errors.ErrInconsistentTree, cf.ID())
		}
		visiting[cf.ID()] = true
		if err := validateFolder(cf, seen, visiting); err != nil {
			return err
		}
		delete(visiting, cf.ID())
	}
	return nil
}
