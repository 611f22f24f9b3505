package localfs

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// newID mints the next local id from the document's monotonic
// counter. The local side owns its own id space; the server adapter
// mints ids independently, and the mapping table is what correlates
// the two.
func newID(counter *uint64) string {
	id := fmt.Sprintf("local-%d", *counter)
	*counter++
	return id
}

// normalizeTitle collapses non-breaking space variants to plain
// spaces and applies NFC normalization: titles arriving from different OSes or other
// bookmark managers can carry visually identical but byte-distinct
// Unicode forms, which would otherwise defeat CanMergeWith's exact
// string comparison during first-sync pairing.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, " ", " ")
	title = strings.ReplaceAll(title, " ", " ")
	return norm.NFC.String(title)
}
