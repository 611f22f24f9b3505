package remote

import (
	"context"
	"fmt"

	"github.com/whjimmortal/floccus/tree"
)

// Provider implements tree.Provider against a remote bookmark API.
type Provider struct {
	client *Client
}

// New returns a Provider backed by client.
func New(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) GetTree(ctx context.Context) (*tree.Folder, error) {
	var w wireItem
	if err := p.client.get(ctx, "/tree", &w); err != nil {
		return nil, fmt.Errorf("fetching remote tree: %w", err)
	}
	root, ok := fromWire(w).(*tree.Folder)
	if !ok {
		return nil, fmt.Errorf("remote tree root is not a folder")
	}
	return root, nil
}

func (p *Provider) LoadFolderChildren(ctx context.Context, id string) (*tree.Folder, error) {
	var w wireItem
	if err := p.client.get(ctx, "/folders/"+id+"/children", &w); err != nil {
		return nil, fmt.Errorf("loading children of folder %s: %w", id, err)
	}
	f, ok := fromWire(w).(*tree.Folder)
	if !ok {
		return nil, fmt.Errorf("folder %s response is not a folder", id)
	}
	return f, nil
}

func (p *Provider) CreateFolder(ctx context.Context, f *tree.Folder) (string, error) {
	var resp createResponse
	if err := p.client.post(ctx, "/folders", toWire(f), &resp); err != nil {
		return "", fmt.Errorf("creating folder %q: %w", f.Title(), err)
	}
	return resp.ID, nil
}

func (p *Provider) UpdateFolder(ctx context.Context, f *tree.Folder) error {
	if err := p.client.put(ctx, "/folders/"+f.ID(), toWire(f)); err != nil {
		return fmt.Errorf("updating folder %s: %w", f.ID(), err)
	}
	return nil
}

func (p *Provider) RemoveFolder(ctx context.Context, id string) error {
	if err := p.client.delete(ctx, "/folders/"+id); err != nil {
		return fmt.Errorf("removing folder %s: %w", id, err)
	}
	return nil
}

func (p *Provider) OrderFolder(ctx context.Context, id string, order []tree.OrderEntry) error {
	if err := p.client.put(ctx, "/folders/"+id+"/order", orderRequest{Order: order}); err != nil {
		return fmt.Errorf("ordering folder %s: %w", id, err)
	}
	return nil
}

func (p *Provider) CreateBookmark(ctx context.Context, b *tree.Bookmark) (string, error) {
	var resp createResponse
	if err := p.client.post(ctx, "/bookmarks", toWire(b), &resp); err != nil {
		return "", fmt.Errorf("creating bookmark %q: %w", b.Title(), err)
	}
	return resp.ID, nil
}

func (p *Provider) UpdateBookmark(ctx context.Context, b *tree.Bookmark) error {
	if err := p.client.put(ctx, "/bookmarks/"+b.ID(), toWire(b)); err != nil {
		return fmt.Errorf("updating bookmark %s: %w", b.ID(), err)
	}
	return nil
}

func (p *Provider) RemoveBookmark(ctx context.Context, id string) error {
	if err := p.client.delete(ctx, "/bookmarks/"+id); err != nil {
		return fmt.Errorf("removing bookmark %s: %w", id, err)
	}
	return nil
}

// BulkImportFolder asks the server to import an entire subtree in one
// round trip. The server is free to reject it (ok=false) if the
// subtree exceeds its configured item limit, in which case the caller
// must fall back to per-item creation.
func (p *Provider) BulkImportFolder(ctx context.Context, parentID string, f *tree.Folder) (bool, error) {
	var resp bulkImportResponse
	err := p.client.post(ctx, "/folders/bulk-import", bulkImportRequest{ParentID: parentID, Folder: toWire(f)}, &resp)
	if err != nil {
		return false, fmt.Errorf("bulk importing folder %q: %w", f.Title(), err)
	}
	return resp.OK, nil
}
