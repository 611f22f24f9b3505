package localfs

import (
	"context"
	"fmt"
	"sync"

	"github.com/whjimmortal/floccus/tree"
)

// Provider implements tree.Provider against a Store-backed JSON
// document. Unlike the remote adapter, the local tree is never sparse:
// the whole document is loaded into memory and kept there, guarded by
// mu, with every mutating call persisting the updated document before
// returning.
type Provider struct {
	store *Store

	mu      sync.Mutex
	root    *tree.Folder
	idx     *tree.Index
	nextID  uint64
	loaded  bool
}

// New returns a Provider backed by store.
func New(store *Store) *Provider {
	return &Provider{store: store}
}

func (p *Provider) ensureLoaded() error {
	if p.loaded {
		return nil
	}
	root, nextID, err := p.store.Load()
	if err != nil {
		return err
	}
	p.root = root
	p.idx = tree.BuildIndex(root)
	p.nextID = nextID
	p.loaded = true
	return nil
}

func (p *Provider) persist() error {
	return p.store.Save(p.root, p.nextID)
}

// Invalidate drops the in-memory tree so the next call re-reads the
// document from disk, used after the watcher reports an external
// change to the document.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
}

func (p *Provider) GetTree(ctx context.Context) (*tree.Folder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return nil, fmt.Errorf("loading local tree: %w", err)
	}
	return p.root, nil
}

// LoadFolderChildren is a no-op sparse-load hook on the local side:
// the whole tree is always resident in memory, so every folder is
// already loaded.
func (p *Provider) LoadFolderChildren(ctx context.Context, id string) (*tree.Folder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return nil, fmt.Errorf("loading local tree: %w", err)
	}
	f := p.root.FindFolder(id)
	if f == nil {
		return nil, fmt.Errorf("local folder %s not found", id)
	}
	return f, nil
}

func (p *Provider) CreateFolder(ctx context.Context, f *tree.Folder) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return "", err
	}
	parent := p.root.FindFolder(f.ParentID())
	if parent == nil {
		return "", fmt.Errorf("creating folder %q: parent %s not found", f.Title(), f.ParentID())
	}
	id := newID(&p.nextID)
	created := tree.NewFolder(id, parent.ID(), normalizeTitle(f.Title()))
	tree.InsertChild(parent, created, -1)
	if err := p.persist(); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) UpdateFolder(ctx context.Context, f *tree.Folder) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return err
	}
	existing := p.root.FindFolder(f.ID())
	if existing == nil {
		return fmt.Errorf("updating folder %s: not found", f.ID())
	}
	if f.ParentID() != existing.ParentID() {
		oldParent := p.root.FindFolder(existing.ParentID())
		if oldParent == nil {
			return fmt.Errorf("updating folder %s: old parent %s not found", f.ID(), existing.ParentID())
		}
		newParent := p.root.FindFolder(f.ParentID())
		if newParent == nil {
			return fmt.Errorf("updating folder %s: new parent %s not found", f.ID(), f.ParentID())
		}
		if tree.MoveChild(oldParent, newParent, tree.KindFolder, f.ID(), -1) == nil {
			return fmt.Errorf("updating folder %s: move failed", f.ID())
		}
	}
	existing.SetTitle(normalizeTitle(f.Title()))
	return p.persist()
}

func (p *Provider) RemoveFolder(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return err
	}
	target := p.root.FindFolder(id)
	if target == nil {
		return nil
	}
	parent := p.root.FindFolder(target.ParentID())
	if parent == nil {
		return fmt.Errorf("removing folder %s: parent %s not found", id, target.ParentID())
	}
	tree.RemoveChild(parent, tree.KindFolder, id)
	return p.persist()
}

func (p *Provider) OrderFolder(ctx context.Context, id string, order []tree.OrderEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return err
	}
	folder := p.root.FindFolder(id)
	if folder == nil {
		return fmt.Errorf("ordering folder %s: not found", id)
	}
	keys := make([]tree.OrderKey, len(order))
	for i, e := range order {
		keys[i] = tree.OrderKey{Kind: e.Kind, ID: e.ID}
	}
	tree.ReorderChildren(folder, keys)
	return p.persist()
}

func (p *Provider) CreateBookmark(ctx context.Context, b *tree.Bookmark) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return "", err
	}
	parent := p.root.FindFolder(b.ParentID())
	if parent == nil {
		return "", fmt.Errorf("creating bookmark %q: parent %s not found", b.Title(), b.ParentID())
	}
	id := newID(&p.nextID)
	created := tree.NewBookmark(id, parent.ID(), normalizeTitle(b.Title()), b.URL())
	tree.InsertChild(parent, created, -1)
	if err := p.persist(); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) UpdateBookmark(ctx context.Context, b *tree.Bookmark) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return err
	}
	item := p.root.FindItem(tree.KindBookmark, b.ID())
	existing, ok := item.(*tree.Bookmark)
	if !ok {
		return fmt.Errorf("updating bookmark %s: not found", b.ID())
	}
	if b.ParentID() != existing.ParentID() {
		oldParent := p.root.FindFolder(existing.ParentID())
		if oldParent == nil {
			return fmt.Errorf("updating bookmark %s: old parent %s not found", b.ID(), existing.ParentID())
		}
		newParent := p.root.FindFolder(b.ParentID())
		if newParent == nil {
			return fmt.Errorf("updating bookmark %s: new parent %s not found", b.ID(), b.ParentID())
		}
		if tree.MoveChild(oldParent, newParent, tree.KindBookmark, b.ID(), -1) == nil {
			return fmt.Errorf("updating bookmark %s: move failed", b.ID())
		}
	}
	existing.SetTitle(normalizeTitle(b.Title()))
	existing.SetURL(b.URL())
	return p.persist()
}

func (p *Provider) RemoveBookmark(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLoaded(); err != nil {
		return err
	}
	item := p.root.FindItem(tree.KindBookmark, id)
	bm, ok := item.(*tree.Bookmark)
	if !ok {
		return nil
	}
	parent := p.root.FindFolder(bm.ParentID())
	if parent == nil {
		return fmt.Errorf("removing bookmark %s: parent %s not found", id, bm.ParentID())
	}
	tree.RemoveChild(parent, tree.KindBookmark, id)
	return p.persist()
}

// BulkImportFolder is unsupported on the local side: writing the whole
// document back out is already a single operation, so there is no
// round-trip cost for the per-item path to amortize.
func (p *Provider) BulkImportFolder(ctx context.Context, parentID string, f *tree.Folder) (bool, error) {
	return false, nil
}
