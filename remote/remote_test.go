package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nasdf/campus/core"
	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/model"
	"github.com/nasdf/campus/ref"
	"github.com/nasdf/campus/schema"
	"github.com/nasdf/campus/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Client, *core.Store) {
	t.Helper()
	store, err := core.Open(context.Background(), storage.NewMemory(), schema.Default().Source())
	require.NoError(t, err)

	srv := httptest.NewServer(Handler(store))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client()), store
}

func TestClientSetAndGet(t *testing.T) {
	ctx := context.Background()
	client, store := newServer(t)

	err := client.Set(ctx, "users", "u1", document.Document{
		"name":      "Alice",
		"interests": []string{"chess"},
	})
	require.NoError(t, err)

	stored, found, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alice", stored.String("name"))

	doc, found, err := client.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alice", doc.String("name"))
	assert.Equal(t, []string{"chess"}, doc.Strings("interests"))
}

func TestClientGetMissing(t *testing.T) {
	client, _ := newServer(t)

	doc, found, err := client.Get(context.Background(), "users", "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)
}

func TestClientInvalidDocument(t *testing.T) {
	ctx := context.Background()
	client, _ := newServer(t)

	err := client.Set(ctx, "users", "u1", document.Document{"shoeSize": 42})
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "400")

	_, _, err = client.Get(ctx, "rooms", "r1")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "400")
}

func TestClientDelete(t *testing.T) {
	ctx := context.Background()
	client, _ := newServer(t)

	require.NoError(t, client.Set(ctx, "events", "e1", document.Document{"title": "Hackathon"}))
	require.NoError(t, client.Delete(ctx, "events", "e1"))

	_, found, err := client.Get(ctx, "events", "e1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientEscapesIDs(t *testing.T) {
	ctx := context.Background()
	client, store := newServer(t)

	require.NoError(t, client.Set(ctx, "users", "a b/c", document.Document{"name": "Odd"}))

	_, found, err := store.Get(ctx, "users", "a b/c")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHandlerRejectsNonObjectBody(t *testing.T) {
	client, _ := newServer(t)

	req, err := http.NewRequest(http.MethodPut, client.baseURL+"/documents/users/u1", strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	res, err := client.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

type readOnly struct {
	ref.StoreFunc
}

func (readOnly) Set(ctx context.Context, collection, id string, doc document.Document) error {
	return nil
}

func TestHandlerDeleteUnsupported(t *testing.T) {
	srv := httptest.NewServer(Handler(readOnly{}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Delete(context.Background(), "users", "u1")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "405")
}

func TestResolveOverHTTP(t *testing.T) {
	ctx := context.Background()
	client, _ := newServer(t)

	require.NoError(t, client.Set(ctx, "users", "u1", document.Document{"name": "Alice"}))
	require.NoError(t, client.Set(ctx, "associations", "a1", document.Document{
		"name":    "Robotics Club",
		"members": []string{"u1", "u2"},
	}))

	fetcher := ref.NewFetcher(client, ref.WithTimeout(time.Second))
	association, err := ref.Load(ctx, fetcher, model.Associations, "a1")
	require.NoError(t, err)

	result := association.Members.ResolveAll(ctx, fetcher, nil).Wait()
	assert.Equal(t, ref.BatchResult{Total: 2, Resolved: 1, Failed: 1}, result)

	alice, ok := association.Members.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Alice", alice.Name)
	_, ok = association.Members.Get("u2")
	assert.False(t, ok)
}
