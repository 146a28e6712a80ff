package blogger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "rt-1", r.FormValue("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	}))
}

func TestAuthorizeRefreshesToken(t *testing.T) {
	tokens := tokenServer(t)
	defer tokens.Close()

	client := NewWithEndpoints("id", "secret", "rt-1", tokens.URL, "http://unused")
	httpClient, err := client.Authorize(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, httpClient)
}

func TestAuthorizeFailure(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokens.Close()

	client := NewWithEndpoints("id", "secret", "rt-1", tokens.URL, "http://unused")
	_, err := client.Authorize(context.Background())
	assert.Error(t, err)
}

func TestCreatePost(t *testing.T) {
	tokens := tokenServer(t)
	defer tokens.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blogs/blog-1/posts/", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("isDraft"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "blogger#post", body["kind"])
		assert.Equal(t, "My Title", body["title"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"p-1","url":"https://blog.example/2025/06/my-title.html"}`))
	}))
	defer api.Close()

	client := NewWithEndpoints("id", "secret", "rt-1", tokens.URL, api.URL)
	httpClient, err := client.Authorize(context.Background())
	require.NoError(t, err)

	url, err := client.CreatePost(context.Background(), httpClient, "blog-1", "My Title", "<p>body</p>")
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example/2025/06/my-title.html", url)
}

func TestCreatePostAPIError(t *testing.T) {
	tokens := tokenServer(t)
	defer tokens.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	defer api.Close()

	client := NewWithEndpoints("id", "secret", "rt-1", tokens.URL, api.URL)
	httpClient, err := client.Authorize(context.Background())
	require.NoError(t, err)

	_, err = client.CreatePost(context.Background(), httpClient, "blog-1", "t", "<p>b</p>")
	assert.Error(t, err)
}
