package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whjimmortal/floccus/tree"
)

func TestMemStore_EmptyInitially(t *testing.T) {
	store := NewMemStore()
	assert.True(t, store.Snapshot().Empty())
}

func TestMemStore_AddMapping_LocalToServer(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))

	snap := store.Snapshot()
	assert.False(t, snap.Empty())

	serverID, ok := snap.ToServer(tree.KindFolder, "local-1")
	require.True(t, ok)
	assert.Equal(t, "server-1", serverID)

	localID, ok := snap.ToLocal(tree.KindFolder, "server-1")
	require.True(t, ok)
	assert.Equal(t, "local-1", localID)
}

func TestMemStore_AddMapping_ServerToLocal(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(ServerToLocal, tree.KindBookmark, "server-9", "local-9"))

	snap := store.Snapshot()
	serverID, ok := snap.ToServer(tree.KindBookmark, "local-9")
	require.True(t, ok)
	assert.Equal(t, "server-9", serverID)
}

func TestSnapshot_Translate_UnmappedPassesThrough(t *testing.T) {
	store := NewMemStore()
	snap := store.Snapshot()
	assert.Equal(t, "local-1", snap.Translate(LocalToServer, tree.KindFolder, "local-1"))
}

func TestSnapshot_Translate_MappedResolves(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))
	snap := store.Snapshot()

	assert.Equal(t, "server-1", snap.Translate(LocalToServer, tree.KindFolder, "local-1"))
	assert.Equal(t, "local-1", snap.Translate(ServerToLocal, tree.KindFolder, "server-1"))
}

func TestMemStore_AddMapping_DuplicateOverwritesReversePairing(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-2"))

	snap := store.Snapshot()
	serverID, ok := snap.ToServer(tree.KindFolder, "local-1")
	require.True(t, ok)
	assert.Equal(t, "server-2", serverID)

	_, staleOK := snap.ToLocal(tree.KindFolder, "server-1")
	assert.False(t, staleOK, "stale reverse pairing should be dropped")
}

func TestMemStore_RemoveMapping(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))
	require.NoError(t, store.RemoveMapping(LocalToServer, tree.KindFolder, "local-1"))

	snap := store.Snapshot()
	_, ok := snap.ToServer(tree.KindFolder, "local-1")
	assert.False(t, ok)
	assert.True(t, snap.Empty())
}

func TestSnapshot_Pairs(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-2", "server-2"))

	pairs := store.Snapshot().Pairs(tree.KindFolder)
	assert.Equal(t, map[string]string{"local-1": "server-1", "local-2": "server-2"}, pairs)
}

func TestSnapshot_Clone_IsIndependent(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-1", "server-1"))

	snap1 := store.Snapshot()
	require.NoError(t, store.AddMapping(LocalToServer, tree.KindFolder, "local-2", "server-2"))
	snap2 := store.Snapshot()

	_, ok := snap1.ToServer(tree.KindFolder, "local-2")
	assert.False(t, ok, "earlier snapshot must not see later mutations")

	_, ok = snap2.ToServer(tree.KindFolder, "local-2")
	assert.True(t, ok)
}
