package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	floccuserrors "github.com/whjimmortal/floccus/internal/errors"
	"github.com/whjimmortal/floccus/tree"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.Client(), srv.URL, "shared-secret", "test-device")
	return New(client), srv
}

func TestProvider_GetTree_ParsesFolderResponse(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tree", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		authHeader := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(authHeader, "Bearer "))
		token := strings.TrimPrefix(authHeader, "Bearer ")
		parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (interface{}, error) {
			return []byte("shared-secret"), nil
		})
		require.NoError(t, err)
		c := parsed.Claims.(*claims)
		assert.Equal(t, "test-device", c.Device)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(wireItem{
			Kind: tree.KindFolder,
			ID:   tree.RootID,
			Children: []wireItem{
				{Kind: tree.KindBookmark, ID: "1", ParentID: tree.RootID, Title: "A", URL: "https://a.com"},
			},
		})
	})

	root, err := provider.GetTree(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tree.RootID, root.ID())
	require.Len(t, root.Children(), 1)
	assert.Equal(t, "1", root.Children()[0].ID())
}

func TestProvider_CreateFolder_ReturnsNewID(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/folders", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var got wireItem
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Work", got.Title)

		_ = json.NewEncoder(w).Encode(createResponse{ID: "server-5"})
	})

	id, err := provider.CreateFolder(context.Background(), tree.NewFolder("local-5", tree.RootID, "Work"))
	require.NoError(t, err)
	assert.Equal(t, "server-5", id)
}

func TestProvider_UpdateBookmark_SendsPut(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookmarks/1", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	err := provider.UpdateBookmark(context.Background(), tree.NewBookmark("1", tree.RootID, "Renamed", "https://a.com"))
	assert.NoError(t, err)
}

func TestProvider_RemoveFolder_SendsDelete(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/folders/1", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, provider.RemoveFolder(context.Background(), "1"))
}

func TestProvider_OrderFolder_SendsOrderPayload(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/folders/1/order", r.URL.Path)

		var got orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		require.Len(t, got.Order, 2)
		assert.Equal(t, "2", got.Order[0].ID)
		w.WriteHeader(http.StatusNoContent)
	})

	err := provider.OrderFolder(context.Background(), "1", []tree.OrderEntry{
		{Kind: tree.KindBookmark, ID: "2"},
		{Kind: tree.KindBookmark, ID: "3"},
	})
	assert.NoError(t, err)
}

func TestProvider_BulkImportFolder_ReturnsOK(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/folders/bulk-import", r.URL.Path)

		var got bulkImportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "parent-1", got.ParentID)

		_ = json.NewEncoder(w).Encode(bulkImportResponse{OK: true})
	})

	f := tree.NewFolder("1", "parent-1", "Big")
	ok, err := provider.BulkImportFolder(context.Background(), "parent-1", f)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProvider_ErrorResponse_WrapsAdapterError(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(apiError{Error: "invalid token"})
	})

	_, err := provider.GetTree(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, floccuserrors.ErrAdapter)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestWireRoundTrip_PreservesFolderSubtree(t *testing.T) {
	root := tree.NewFolder("1", tree.RootID, "Work")
	root.SetChildren([]tree.Item{tree.NewBookmark("2", "1", "A", "https://a.com")})

	w := toWire(root)
	back := fromWire(w).(*tree.Folder)

	assert.Equal(t, root.ID(), back.ID())
	require.Len(t, back.Children(), 1)
	assert.Equal(t, "A", back.Children()[0].Title())
}
