// Package errors defines the sentinel error kinds the sync engine
// raises. Callers wrap these with fmt.Errorf("...: %w") and match
// them with errors.Is/errors.As.
package errors

import "errors"

// Tree and mapping errors.
var (
	// ErrInconsistentTree means a tree violates an invariant: a cycle,
	// an orphaned parent pointer, or a duplicate id. Fatal: abort sync.
	ErrInconsistentTree = errors.New("inconsistent tree")

	// ErrInconsistentMapping means a mapping snapshot references an id
	// that is not present in either tree when its presence is
	// required. Recoverable: drop the stale mapping and continue.
	ErrInconsistentMapping = errors.New("inconsistent mapping")

	// ErrHierarchyReversalUnresolvable means compensating for a
	// hierarchy-reversal conflict would itself create a cycle. Fatal:
	// abort the reconcile.
	ErrHierarchyReversalUnresolvable = errors.New("hierarchy reversal unresolvable")
)

// ErrAdapter wraps any error surfaced by an external collaborator
// (tree provider, mapping persistence). Passed through unchanged
// except for wrapping.
var ErrAdapter = errors.New("adapter error")
