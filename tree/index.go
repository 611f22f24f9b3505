package tree

import "sync"

// Index is a process-local id -> node lookup for a tree, kept
// consistent by every mutation helper in this package (InsertChild,
// RemoveChild, MoveChild, ReorderChildren). It holds non-owning
// handles: the tree itself, via parent pointers, is the sole owner of
// its nodes.
type Index struct {
	mu    sync.RWMutex
	byID  map[Kind]map[string]Item
	root  *Folder
}

// BuildIndex walks root and returns a populated Index. Attaches itself
// to root so subsequent mutation helpers on this tree keep it in sync.
func BuildIndex(root *Folder) *Index {
	idx := &Index{
		byID: map[Kind]map[string]Item{
			KindFolder:   make(map[string]Item),
			KindBookmark: make(map[string]Item),
		},
		root: root,
	}
	idx.walk(root)
	root.index = idx
	return idx
}

func (idx *Index) walk(f *Folder) {
	idx.byID[KindFolder][f.ID()] = f
	for _, c := range f.Children() {
		if cf, ok := c.(*Folder); ok {
			cf.index = idx
			idx.walk(cf)
			continue
		}
		idx.byID[KindBookmark][c.ID()] = c
	}
}

// Get returns the item of the given kind and id, or nil.
func (idx *Index) Get(kind Kind, id string) Item {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.byID[kind][id]
}

func (idx *Index) add(item Item) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byID[item.Kind()][item.ID()] = item
	if f, ok := item.(*Folder); ok {
		f.index = idx
		for _, c := range f.Children() {
			idx.addLocked(c)
		}
	}
}

func (idx *Index) addLocked(item Item) {
	idx.byID[item.Kind()][item.ID()] = item
	if f, ok := item.(*Folder); ok {
		f.index = idx
		for _, c := range f.Children() {
			idx.addLocked(c)
		}
	}
}

func (idx *Index) remove(item Item) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(item)
}

func (idx *Index) removeLocked(item Item) {
	delete(idx.byID[item.Kind()], item.ID())
	if f, ok := item.(*Folder); ok {
		for _, c := range f.Children() {
			idx.removeLocked(c)
		}
	}
}

// attachedIndex returns the Index attached to f, or nil if none is.
func attachedIndex(f *Folder) *Index {
	return f.index
}

// InsertChild appends item as the last child of parent (or inserts at
// pos if pos >= 0 and within range), updating parent's attached Index
// if any.
func InsertChild(parent *Folder, item Item, pos int) {
	item.SetParentID(parent.ID())
	if pos < 0 || pos > len(parent.children) {
		parent.children = append(parent.children, item)
	} else {
		parent.children = append(parent.children, nil)
		copy(parent.children[pos+1:], parent.children[pos:])
		parent.children[pos] = item
	}
	if idx := attachedIndex(parent); idx != nil {
		idx.add(item)
	}
}

// RemoveChild removes the child with the given id and kind from parent,
// updating parent's attached Index if any. Reports whether a child was
// removed.
func RemoveChild(parent *Folder, kind Kind, id string) bool {
	for i, c := range parent.children {
		if c.Kind() == kind && c.ID() == id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			if idx := attachedIndex(parent); idx != nil {
				idx.remove(c)
			}
			return true
		}
	}
	return false
}

// MoveChild removes item from its current parent (found among
// oldParent's direct children) and inserts it into newParent at pos.
func MoveChild(oldParent, newParent *Folder, kind Kind, id string, pos int) Item {
	var moved Item
	for _, c := range oldParent.children {
		if c.Kind() == kind && c.ID() == id {
			moved = c
			break
		}
	}
	if moved == nil {
		return nil
	}
	RemoveChild(oldParent, kind, id)
	InsertChild(newParent, moved, pos)
	return moved
}

// ReorderChildren reorders parent's children to match order, by
// (kind, id). Entries in order that name no current child are ignored;
// children not named in order keep their relative order and follow
// the listed ones.
func ReorderChildren(parent *Folder, order []OrderKey) {
	byKey := make(map[OrderKey]Item, len(parent.children))
	for _, c := range parent.children {
		byKey[OrderKey{Kind: c.Kind(), ID: c.ID()}] = c
	}
	reordered := make([]Item, 0, len(order))
	for _, k := range order {
		if item, ok := byKey[k]; ok {
			reordered = append(reordered, item)
			delete(byKey, k)
		}
	}
	// Any children not named in order (shouldn't normally happen)
	// are appended in their original relative order.
	for _, c := range parent.children {
		key := OrderKey{Kind: c.Kind(), ID: c.ID()}
		if _, stillThere := byKey[key]; stillThere {
			reordered = append(reordered, c)
		}
	}
	parent.children = reordered
}

// OrderKey identifies a child by kind and id, used by REORDER payloads.
type OrderKey struct {
	Kind Kind
	ID   string
}
