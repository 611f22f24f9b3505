package tree

import "context"

// OrderEntry names one child of a REORDER payload by kind and id, in
// the coordinate system of the side the order will be applied to.
type OrderEntry struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Provider is the external interface a tree-side (local or server)
// adapter implements. The core borrows a Provider's tree read-only
// during scanning and reconciliation, and calls the mutating methods
// only while applying an already-computed plan.
type Provider interface {
	// GetTree loads the full tree. A server adapter may return a
	// sparse tree in which some folders carry Hash() but Loaded()
	// false; the caller must call LoadFolderChildren before
	// recursing into such folders.
	GetTree(ctx context.Context) (*Folder, error)

	// LoadFolderChildren fetches and returns the children of the
	// folder with the given id, for sparse trees.
	LoadFolderChildren(ctx context.Context, id string) (*Folder, error)

	CreateFolder(ctx context.Context, f *Folder) (id string, err error)
	UpdateFolder(ctx context.Context, f *Folder) error
	RemoveFolder(ctx context.Context, id string) error
	OrderFolder(ctx context.Context, id string, order []OrderEntry) error

	CreateBookmark(ctx context.Context, b *Bookmark) (id string, err error)
	UpdateBookmark(ctx context.Context, b *Bookmark) error
	RemoveBookmark(ctx context.Context, id string) error

	// BulkImportFolder is an optional fast path for uploading a large
	// CREATE subtree in one round trip. ok is false when the adapter
	// does not support it or the subtree exceeds a provider-defined
	// item count; callers must fall back to per-item creation.
	BulkImportFolder(ctx context.Context, parentID string, f *Folder) (ok bool, err error)
}
