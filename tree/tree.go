// Package tree implements the bookmark tree data model: folders and
// bookmarks arranged in a hierarchy, with the indices and invariant
// checks the rest of the sync engine relies on.
package tree

// Kind distinguishes the two item variants a tree node can be.
type Kind int

const (
	KindFolder Kind = iota
	KindBookmark
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "bookmark"
}

// RootID is the sentinel id every tree's root folder carries, by
// convention, in both the local and server coordinate systems.
const RootID = "-1"

// Item is a node in a tree: either a *Folder or a *Bookmark. All
// operations dispatch on Kind rather than through a type switch on the
// concrete type, since there are exactly two variants.
type Item interface {
	ID() string
	SetID(id string)
	ParentID() string
	SetParentID(id string)
	Title() string
	SetTitle(title string)
	Kind() Kind

	// CanMergeWith reports whether other is identity-neutral-content
	// equal to this item: same variant, and for bookmarks the same
	// URL, for folders the same title. Used only by the first-sync
	// heuristic pairing.
	CanMergeWith(other Item) bool

	// Clone returns a deep copy of the item. When withHash is set on
	// a folder, the copy preserves the folder's content-hash
	// annotation used by sparse loading; bookmarks ignore withHash.
	Clone(withHash bool) Item
}

// base holds the fields common to both variants.
type base struct {
	id       string
	parentID string
	title    string
}

func (b *base) ID() string           { return b.id }
func (b *base) SetID(id string)      { b.id = id }
func (b *base) ParentID() string     { return b.parentID }
func (b *base) SetParentID(id string) { b.parentID = id }
func (b *base) Title() string        { return b.title }
func (b *base) SetTitle(t string)    { b.title = t }
