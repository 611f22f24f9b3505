package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

func TestActionType_String(t *testing.T) {
	cases := map[ActionType]string{
		CREATE:          "CREATE",
		UPDATE:          "UPDATE",
		MOVE:            "MOVE",
		REMOVE:          "REMOVE",
		REORDER:         "REORDER",
		ActionType(999): "UNKNOWN",
	}
	for in, want := range cases {
		assert.Equal(t, want, in.String())
	}
}

func TestAction_IDAndKind(t *testing.T) {
	bm := tree.NewBookmark("1", tree.RootID, "Example", "https://example.com")
	a := Action{Type: CREATE, Payload: bm}
	assert.Equal(t, "1", a.ID())
	assert.Equal(t, tree.KindBookmark, a.Kind())

	empty := Action{Type: REORDER}
	assert.Equal(t, "", empty.ID())
	assert.Equal(t, tree.KindFolder, empty.Kind())
}

func TestDiff_CommitAndActions(t *testing.T) {
	d := New()
	bm := tree.NewBookmark("1", tree.RootID, "Example", "https://example.com")
	f := tree.NewFolder("2", tree.RootID, "Work")

	d.Commit(Action{Type: CREATE, Payload: bm})
	d.Commit(Action{Type: CREATE, Payload: f})
	d.Commit(Action{Type: UPDATE, Payload: bm})

	assert.Equal(t, 3, d.Len())
	assert.Len(t, d.Actions(), 3)
	assert.Len(t, d.Actions(CREATE), 2)
	assert.Len(t, d.Actions(UPDATE), 1)
	assert.Empty(t, d.Actions(REMOVE))
}

func newStoreWithMapping(t *testing.T) mapping.Snapshot {
	t.Helper()
	store := mapping.NewMemStore()
	require.NoError(t, store.AddMapping(mapping.LocalToServer, tree.KindFolder, "local-1", "server-1"))
	require.NoError(t, store.AddMapping(mapping.LocalToServer, tree.KindBookmark, "local-2", "server-2"))
	return store.Snapshot()
}

func TestDiff_Map_TranslatesIDs(t *testing.T) {
	snap := newStoreWithMapping(t)
	d := New()
	bm := tree.NewBookmark("local-2", "local-1", "Example", "https://example.com")
	d.Commit(Action{Type: CREATE, Payload: bm})

	mapped := d.Map(snap, true, nil)
	actions := mapped.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "server-2", actions[0].Payload.ID())
	assert.Equal(t, "server-1", actions[0].Payload.ParentID())

	// Original diff untouched.
	assert.Equal(t, "local-2", d.Actions()[0].Payload.ID())
}

func TestDiff_Map_UnmappedIDsPassThrough(t *testing.T) {
	snap := newStoreWithMapping(t)
	d := New()
	bm := tree.NewBookmark("local-new", "local-1", "New", "https://new.example.com")
	d.Commit(Action{Type: CREATE, Payload: bm})

	mapped := d.Map(snap, true, nil)
	assert.Equal(t, "local-new", mapped.Actions()[0].Payload.ID())
	assert.Equal(t, "server-1", mapped.Actions()[0].Payload.ParentID())
}

func TestDiff_Map_FilterSkipsTranslation(t *testing.T) {
	snap := newStoreWithMapping(t)
	d := New()
	bm := tree.NewBookmark("local-2", "local-1", "Example", "https://example.com")
	d.Commit(Action{Type: MOVE, Payload: bm})

	mapped := d.Map(snap, true, func(a Action) bool { return a.Type != MOVE })
	assert.Equal(t, "local-2", mapped.Actions()[0].Payload.ID(), "filtered-out actions pass through unmodified")
}

func TestDiff_Map_ReorderTranslatesOrderEntries(t *testing.T) {
	snap := newStoreWithMapping(t)
	d := New()
	d.Commit(Action{
		Type:    REORDER,
		Payload: tree.NewFolder("local-1", tree.RootID, "Work"),
		Order: []tree.OrderEntry{
			{Kind: tree.KindBookmark, ID: "local-2"},
		},
	})

	mapped := d.Map(snap, true, nil)
	order := mapped.Actions()[0].Order
	require.Len(t, order, 1)
	assert.Equal(t, "server-2", order[0].ID)
}

func TestTranslateItem_RootParentUnchanged(t *testing.T) {
	snap := newStoreWithMapping(t)
	f := tree.NewFolder("local-1", tree.RootID, "Work")
	translated := TranslateItem(f, snap, mapping.LocalToServer)
	assert.Equal(t, "server-1", translated.ID())
	assert.Equal(t, tree.RootID, translated.ParentID())
}
