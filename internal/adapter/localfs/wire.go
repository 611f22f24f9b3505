package localfs

import "github.com/whjimmortal/floccus/tree"

// wireItem is the on-disk JSON representation of a tree.Item, kept
// distinct from the remote adapter's wire type even though the shape
// is identical: the two adapters evolve independently and never
// share wire types with each other.
type wireItem struct {
	Kind     tree.Kind  `json:"kind"`
	ID       string     `json:"id"`
	ParentID string     `json:"parentId"`
	Title    string     `json:"title"`
	URL      string     `json:"url,omitempty"`
	Hash     string     `json:"hash,omitempty"`
	Children []wireItem `json:"children,omitempty"`
}

func toWire(item tree.Item) wireItem {
	switch v := item.(type) {
	case *tree.Bookmark:
		return wireItem{Kind: tree.KindBookmark, ID: v.ID(), ParentID: v.ParentID(), Title: v.Title(), URL: v.URL()}
	case *tree.Folder:
		w := wireItem{Kind: tree.KindFolder, ID: v.ID(), ParentID: v.ParentID(), Title: v.Title(), Hash: v.Hash()}
		for _, c := range v.Children() {
			w.Children = append(w.Children, toWire(c))
		}
		return w
	default:
		return wireItem{}
	}
}

func fromWire(w wireItem) tree.Item {
	if w.Kind == tree.KindBookmark {
		return tree.NewBookmark(w.ID, w.ParentID, w.Title, w.URL)
	}
	f := tree.NewFolder(w.ID, w.ParentID, w.Title)
	f.SetHash(w.Hash)
	f.SetLoaded(true)
	var children []tree.Item
	for _, c := range w.Children {
		children = append(children, fromWire(c))
	}
	f.SetChildren(children)
	return f
}
