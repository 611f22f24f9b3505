package tree

// Folder is a container item holding an ordered sequence of children.
type Folder struct {
	base
	children []Item
	hash     string
	loaded   bool
	index    *Index
}

// NewFolder constructs an empty folder with the given id, parent and title.
func NewFolder(id, parentID, title string) *Folder {
	return &Folder{
		base:   base{id: id, parentID: parentID, title: title},
		loaded: true,
	}
}

// NewRoot constructs the sentinel root folder for a tree.
func NewRoot() *Folder {
	return NewFolder(RootID, "", "")
}

func (f *Folder) Kind() Kind { return KindFolder }

// Children returns the folder's children in order. Callers must not
// mutate the returned slice directly; use InsertChild/RemoveChild/
// MoveChild/ReorderChildren so any attached Index stays consistent.
func (f *Folder) Children() []Item { return f.children }

// SetChildren replaces the folder's children wholesale. Used by
// adapters constructing a tree from scratch (e.g. JSON unmarshalling);
// does not touch any attached index -- call BuildIndex afterwards.
func (f *Folder) SetChildren(items []Item) {
	f.children = items
	for _, c := range items {
		c.SetParentID(f.id)
	}
}

// Hash returns the folder's precomputed content hash, used by the
// Scanner's checkHashes fast path and by sparse server loading.
func (f *Folder) Hash() string { return f.hash }

// SetHash sets the folder's precomputed content hash.
func (f *Folder) SetHash(h string) { f.hash = h }

// Loaded reports whether this folder's children have actually been
// fetched. A sparse server tree may return Loaded()==false folders
// carrying only a Hash; the Scanner must call the caller-supplied
// Loader before recursing into such a folder.
func (f *Folder) Loaded() bool { return f.loaded }

// SetLoaded marks whether this folder's children are populated.
func (f *Folder) SetLoaded(v bool) { f.loaded = v }

// CanMergeWith reports true iff other is a folder with the same title.
func (f *Folder) CanMergeWith(other Item) bool {
	of, ok := other.(*Folder)
	if !ok {
		return false
	}
	return f.title == of.title
}

// Clone returns a deep copy of the folder and all its descendants. When
// withHash is set, the hash and loaded annotations are preserved on
// every folder in the copy; otherwise they are zeroed (a fresh tree
// built from adapter data has no precomputed hash yet).
func (f *Folder) Clone(withHash bool) Item {
	clone := &Folder{
		base: base{id: f.id, parentID: f.parentID, title: f.title},
	}
	if withHash {
		clone.hash = f.hash
		clone.loaded = f.loaded
	} else {
		clone.loaded = true
	}
	clone.children = make([]Item, len(f.children))
	for i, c := range f.children {
		clone.children[i] = c.Clone(withHash)
	}
	return clone
}

// FindItem searches this folder's subtree (including itself, for
// folders) for an item of the given kind with the given id.
func (f *Folder) FindItem(kind Kind, id string) Item {
	if kind == KindFolder && f.id == id {
		return f
	}
	for _, c := range f.children {
		if c.Kind() == kind && c.ID() == id {
			return c
		}
		if cf, ok := c.(*Folder); ok {
			if found := cf.FindItem(kind, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindFolder is a convenience wrapper over FindItem for folders.
func (f *Folder) FindFolder(id string) *Folder {
	item := f.FindItem(KindFolder, id)
	if item == nil {
		return nil
	}
	folder, _ := item.(*Folder)
	return folder
}

// Count returns the number of items in the subtree rooted at f,
// including f itself but not counting the sentinel root.
func (f *Folder) Count() int {
	count := 0
	if f.id != RootID {
		count = 1
	}
	for _, c := range f.children {
		if cf, ok := c.(*Folder); ok {
			count += cf.Count()
			continue
		}
		count++
	}
	return count
}
