// Package localfs implements a tree.Provider backed by a single JSON
// document on disk, with the same locking and atomic-write discipline
// as a directory-backed vault but simplified to one file rather than a
// directory tree of markdown notes. The document's path is fixed by
// the Store's own dir, never caller-supplied, so there is no relative
// path to guard against escaping it.
package localfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/whjimmortal/floccus/tree"
)

const documentFile = "bookmarks.json"

// document is the on-disk JSON shape: a single folder tree plus the
// id-minting counter used by newID.
type document struct {
	Root   wireItem `json:"root"`
	NextID uint64   `json:"nextId"`
}

// Store provides thread-safe access to the bookmark document rooted at
// dir. All writes are serialized by an exclusive lock and written
// atomically (temp file + rename).
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store rooted at dir. dir must exist or be
// creatable by the caller before Load/Save are used.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, documentFile)
}

// Load reads the document, returning an empty root and a fresh id
// counter if no document exists yet (first run).
func (s *Store) Load() (*tree.Folder, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return tree.NewRoot(), 1, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading bookmark document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parsing bookmark document: %w", err)
	}

	root, ok := fromWire(doc.Root).(*tree.Folder)
	if !ok {
		return nil, 0, fmt.Errorf("bookmark document root is not a folder")
	}
	if doc.NextID == 0 {
		doc.NextID = 1
	}
	return root, doc.NextID, nil
}

// Save atomically writes root and nextID to the document file.
func (s *Store) Save(root *tree.Folder, nextID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating local vault directory: %w", err)
	}

	data, err := json.MarshalIndent(document{Root: toWire(root), NextID: nextID}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling bookmark document: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+documentFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing bookmark document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path()); err != nil {
		return fmt.Errorf("replacing bookmark document: %w", err)
	}
	tmpPath = ""
	return nil
}
