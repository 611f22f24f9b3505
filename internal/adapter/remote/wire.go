package remote

import "github.com/whjimmortal/floccus/tree"

// wireItem is the JSON-wire representation of a tree.Item. Kind
// discriminates which of the optional fields apply, mirroring how a
// bookmark-sync server's flat API payload tags folders vs bookmarks
// rather than using Go's tagged-interface dispatch on the wire.
type wireItem struct {
	Kind     tree.Kind  `json:"kind"`
	ID       string     `json:"id"`
	ParentID string     `json:"parentId"`
	Title    string     `json:"title"`
	URL      string     `json:"url,omitempty"`
	Hash     string     `json:"hash,omitempty"`
	Loaded   bool       `json:"loaded,omitempty"`
	Children []wireItem `json:"children,omitempty"`
}

func toWire(item tree.Item) wireItem {
	switch v := item.(type) {
	case *tree.Bookmark:
		return wireItem{Kind: tree.KindBookmark, ID: v.ID(), ParentID: v.ParentID(), Title: v.Title(), URL: v.URL()}
	case *tree.Folder:
		w := wireItem{Kind: tree.KindFolder, ID: v.ID(), ParentID: v.ParentID(), Title: v.Title(), Hash: v.Hash(), Loaded: v.Loaded()}
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
	f.SetLoaded(w.Loaded)
	var children []tree.Item
	for _, c := range w.Children {
		children = append(children, fromWire(c))
	}
	f.SetChildren(children)
	return f
}

type orderRequest struct {
	Order []tree.OrderEntry `json:"order"`
}

type createResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error string `json:"error"`
}

type bulkImportRequest struct {
	ParentID string   `json:"parentId"`
	Folder   wireItem `json:"folder"`
}

type bulkImportResponse struct {
	OK bool `json:"ok"`
}
