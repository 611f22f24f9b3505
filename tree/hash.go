package tree

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashFolder computes f's content hash: a digest over every descendant's
// kind, id, title and (for bookmarks) URL, in child order, so the result
// changes whenever a descendant is added, removed, reordered, renamed or
// re-pointed. Folders require their children to already be loaded; call
// this bottom-up, after a folder's subtree is fully materialized, the
// same way a file's bytes are hashed once they are read off disk.
func HashFolder(f *Folder) string {
	h := sha256.New()
	hashInto(h, f)
	return hex.EncodeToString(h.Sum(nil))
}

func hashInto(h io.Writer, f *Folder) {
	for _, c := range f.Children() {
		h.Write([]byte{byte(c.Kind())})
		h.Write([]byte(c.ID()))
		h.Write([]byte{0})
		h.Write([]byte(c.Title()))
		h.Write([]byte{0})
		if b, ok := c.(*Bookmark); ok {
			h.Write([]byte(b.URL()))
		}
		h.Write([]byte{0})
		if cf, ok := c.(*Folder); ok {
			hashInto(h, cf)
		}
	}
}
