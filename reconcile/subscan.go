package reconcile

import (
	"fmt"

	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// subScan recursively pairs localItem and serverItem's children by
// CanMergeWith and records a mapping for every matched pair: given two
// subtrees believed to correspond, their children are paired
// recursively, and the pairing for the two roots themselves is
// recorded unconditionally. Ties among candidate server children are
// broken by preferring the pairing encountered first in local's child
// order (a depth-first walk rooted at localItem).
func subScan(localItem, serverItem tree.Item, pending mapping.PendingWriter) error {
	if err := pending.AddMapping(mapping.LocalToServer, localItem.Kind(), localItem.ID(), serverItem.ID()); err != nil {
		return fmt.Errorf("sub-scan: recording pairing %s<->%s: %w", localItem.ID(), serverItem.ID(), err)
	}

	lf, ok1 := localItem.(*tree.Folder)
	sf, ok2 := serverItem.(*tree.Folder)
	if !ok1 || !ok2 {
		return nil
	}

	type serverKey struct {
		kind tree.Kind
		id   string
	}
	consumed := make(map[serverKey]bool, len(sf.Children()))

	for _, lc := range lf.Children() {
		for _, sc := range sf.Children() {
			k := serverKey{kind: sc.Kind(), id: sc.ID()}
			if consumed[k] || sc.Kind() != lc.Kind() {
				continue
			}
			if !lc.CanMergeWith(sc) {
				continue
			}
			consumed[k] = true
			if err := subScan(lc, sc, pending); err != nil {
				return err
			}
			break
		}
	}
	return nil
}
