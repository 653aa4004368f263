package mastodon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostStatus(t *testing.T) {
	var gotPath, gotAuth, gotStatus string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotStatus = r.FormValue("status")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "1", "url": "https://mas.to/@me/1"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "token123")
	url, err := c.PostStatus(context.Background(), "hello fediverse")
	require.NoError(t, err)

	assert.Equal(t, "https://mas.to/@me/1", url)
	assert.Equal(t, "/api/v1/statuses", gotPath)
	assert.Equal(t, "Bearer token123", gotAuth)
	assert.Equal(t, "hello fediverse", gotStatus)
}

func TestClient_PostStatusFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New(ts.URL, "bad")
	_, err := c.PostStatus(context.Background(), "hello")
	assert.Error(t, err)
}
