package mapping

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/whjimmortal/floccus/tree"
	bolt "go.etcd.io/bbolt"
)

const (
	// storeDirPerm keeps the state directory private to the owning
	// user.
	storeDirPerm = fs.FileMode(0o700)
	// storeFilePerm keeps the state database file private to the
	// owning user.
	storeFilePerm = fs.FileMode(0o600)
	// storeOpenTimeout bounds how long BoltStore waits for the file
	// lock before giving up.
	storeOpenTimeout = 5 * time.Second
)

// bucket returns the bbolt bucket name for one (side, kind) pair, one
// bucket per concern rather than one bucket with composite keys.
func bucket(side Side, kind tree.Kind) []byte {
	sideName := "l2s"
	if side == ServerToLocal {
		sideName = "s2l"
	}
	return []byte(fmt.Sprintf("mapping:%s:%s", sideName, kind))
}

var allBuckets = func() [][]byte {
	var out [][]byte
	for _, side := range []Side{LocalToServer, ServerToLocal} {
		for _, kind := range []tree.Kind{tree.KindFolder, tree.KindBookmark} {
			out = append(out, bucket(side, kind))
		}
	}
	return out
}()

// pendingWrite is one queued AddMapping/RemoveMapping call, held in
// FIFO order until Flush applies them in a single bolt.Tx: in-flight
// additions go through a queue and are applied to the persistent
// store only once the plan that produced them has been applied.
type pendingWrite struct {
	remove bool
	side   Side
	kind   tree.Kind
	oldID  string
	newID  string
}

// BoltStore persists the mapping table into a bbolt database, one
// bucket per (side, kind) pair. Open takes the database path, so tests
// point it at a scratch file and the CLI at the configured path.
type BoltStore struct {
	db *bolt.DB

	mu      sync.Mutex
	pending []pendingWrite
}

// Open opens (creating if needed) a bbolt-backed mapping store at path.
func Open(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating mapping store directory: %w", err)
	}

	db, err := bolt.Open(path, storeFilePerm, &bolt.Options{Timeout: storeOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening mapping store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing mapping store: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Snapshot returns a deep structural copy of the persisted table, plus
// any writes already queued but not yet flushed -- reconciliation must
// see its own in-flight additions as it reads the snapshot.
func (s *BoltStore) Snapshot() Snapshot {
	snap := newEmptySnapshot()

	_ = s.db.View(func(tx *bolt.Tx) error {
		for _, side := range []Side{LocalToServer, ServerToLocal} {
			for _, kind := range []tree.Kind{tree.KindFolder, tree.KindBookmark} {
				b := tx.Bucket(bucket(side, kind))
				if b == nil {
					continue
				}
				_ = b.ForEach(func(k, v []byte) error {
					if side == LocalToServer {
						snap.put(kind, string(k), string(v))
					} else {
						snap.put(kind, string(v), string(k))
					}
					return nil
				})
			}
		}
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.pending {
		if w.remove {
			snap.remove(w.side, w.kind, w.oldID)
			continue
		}
		if w.side == LocalToServer {
			snap.put(w.kind, w.oldID, w.newID)
		} else {
			snap.put(w.kind, w.newID, w.oldID)
		}
	}

	return snap
}

// AddMapping queues a new pairing. It is not visible to other readers
// of the persisted bbolt buckets until Flush is called, though it is
// reflected in Snapshot() immediately (see above).
func (s *BoltStore) AddMapping(side Side, kind tree.Kind, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pendingWrite{side: side, kind: kind, oldID: oldID, newID: newID})
	return nil
}

// RemoveMapping queues removal of the pairing rooted at oldID.
func (s *BoltStore) RemoveMapping(side Side, kind tree.Kind, oldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pendingWrite{remove: true, side: side, kind: kind, oldID: oldID})
	return nil
}

// Flush applies queued writes, in FIFO order, to the persistent store
// in a single transaction. Call this after a plan action has been
// confirmed applied to its target side.
func (s *BoltStore) Flush() error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, w := range batch {
			lb := tx.Bucket(bucket(LocalToServer, w.kind))
			sb := tx.Bucket(bucket(ServerToLocal, w.kind))

			if w.remove {
				if w.side == LocalToServer {
					if serverID := lb.Get([]byte(w.oldID)); serverID != nil {
						_ = sb.Delete(serverID)
					}
					_ = lb.Delete([]byte(w.oldID))
				} else {
					if localID := sb.Get([]byte(w.oldID)); localID != nil {
						_ = lb.Delete(localID)
					}
					_ = sb.Delete([]byte(w.oldID))
				}
				continue
			}

			localID, serverID := w.oldID, w.newID
			if w.side == ServerToLocal {
				localID, serverID = w.newID, w.oldID
			}
			if err := lb.Put([]byte(localID), []byte(serverID)); err != nil {
				return err
			}
			if err := sb.Put([]byte(serverID), []byte(localID)); err != nil {
				return err
			}
		}
		return nil
	})
}
