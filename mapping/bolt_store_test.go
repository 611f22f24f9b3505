package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whjimmortal/floccus/tree"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStore_AddMapping_VisibleBeforeFlush(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))

	snap := store.Snapshot()
	serverID, ok := snap.ToServer(tree.KindFolder, "local-1")
	require.True(t, ok)
	assert.Equal(t, "server-1", serverID)
}

func TestBoltStore_Flush_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindBookmark, "local-9", "server-9"))
	require.NoError(t, store.Flush())
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	snap := reopened.Snapshot()
	localID, ok := snap.ToLocal(tree.KindBookmark, "server-9")
	require.True(t, ok)
	assert.Equal(t, "local-9", localID)
}

func TestBoltStore_Flush_EmptyBatchIsNoop(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Flush())
}

func TestBoltStore_RemoveMapping_QueuedThenFlushed(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))
	require.NoError(t, store.Flush())

	require.NoError(t, store.RemoveMapping(LocalToServer, tree.KindFolder, "local-1"))
	snap := store.Snapshot()
	_, ok := snap.ToServer(tree.KindFolder, "local-1")
	assert.False(t, ok, "pending removal should already be reflected in Snapshot")

	require.NoError(t, store.Flush())
	snapAfterFlush := store.Snapshot()
	_, ok = snapAfterFlush.ToServer(tree.KindFolder, "local-1")
	assert.False(t, ok)
}
