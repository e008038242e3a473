package client_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nicolagi/postd/client"
	"github.com/nicolagi/postd/post"
	"github.com/nicolagi/postd/server"
	"github.com/nicolagi/postd/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		c, cleanup := newAttachedClient(t)
		defer cleanup()
		version, err := c.Version()
		require.Nil(t, err)
		assert.Equal(t, "1.0", version)
	})
	t.Run("stats reflect the calls made", func(t *testing.T) {
		c, cleanup := newAttachedClient(t)
		defer cleanup()
		_, err := c.Version()
		require.Nil(t, err)
		_, err = c.Create(post.Post{Title: "T", Content: "C"})
		require.Nil(t, err)
		require.Nil(t, c.Delete(1))
		stats, err := c.Stats()
		require.Nil(t, err)
		assert.Equal(t, map[string]uint64{
			"/version":         1,
			"/posts/":          1,
			"/posts/{post_id}": 1,
			"/stats":           0,
		}, stats)
	})
	t.Run("not found errors mention the id", func(t *testing.T) {
		c, cleanup := newAttachedClient(t)
		defer cleanup()
		err := c.Delete(99)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.Equal(t, "post 99: not found", err.Error())
	})
	t.Run("unexpected status codes", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail": "Internal Server Error"}`, http.StatusInternalServerError)
		}))
		defer ts.Close()
		c := client.New(client.WithAddress(ts.Listener.Addr().String()))
		_, err := c.Version()
		var serr *client.StatusError
		require.True(t, errors.As(err, &serr), "got %v", err)
		assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
		assert.Equal(t, "Internal Server Error", serr.Detail)
	})
	t.Run("validation errors are rebuilt from the detail", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": "content: must be a string"}`))
		}))
		defer ts.Close()
		c := client.New(client.WithAddress(ts.Listener.Addr().String()))
		_, err := c.Create(post.Post{Title: "T", Content: "C"})
		var verr *post.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, "content", verr.Field)
		assert.Equal(t, "must be a string", verr.Reason)
	})
	t.Run("uses the given http client", func(t *testing.T) {
		ts := httptest.NewServer(server.New().Handler())
		defer ts.Close()
		c := client.New(client.WithAddress(ts.Listener.Addr().String()), client.WithHTTPClient(ts.Client()))
		p, err := c.Get(1)
		require.Nil(t, err)
		assert.Equal(t, storage.SeedPosts[0], p)
	})
}

func newAttachedClient(t *testing.T) (*client.Client, func()) {
	ts := httptest.NewServer(server.New().Handler())
	return client.New(client.WithAddress(ts.Listener.Addr().String())), ts.Close
}
