// Package blogger is a thin client for the Blogger v3 REST API using the
// OAuth2 refresh-token flow. Access tokens are never persisted; every
// publish re-authenticates from the refresh token.
package blogger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/oops"
	"golang.org/x/oauth2"
)

const (
	tokenEndpoint = "https://oauth2.googleapis.com/token"
	apiBase       = "https://www.googleapis.com/blogger/v3"
)

type Client struct {
	oauth        oauth2.Config
	refreshToken string
	timeout      time.Duration
	apiBase      string
}

func New(clientID, clientSecret, refreshToken string) *Client {
	return &Client{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenEndpoint},
			Scopes:       []string{"https://www.googleapis.com/auth/blogger"},
		},
		refreshToken: refreshToken,
		timeout:      60 * time.Second,
		apiBase:      apiBase,
	}
}

// NewWithEndpoints is used in tests to point the client at fake servers.
func NewWithEndpoints(clientID, clientSecret, refreshToken, tokenURL, apiURL string) *Client {
	c := New(clientID, clientSecret, refreshToken)
	c.oauth.Endpoint = oauth2.Endpoint{TokenURL: tokenURL}
	c.apiBase = apiURL
	return c
}

// Authorize exchanges the refresh token for a fresh access token and
// returns an HTTP client carrying it. Failing here means the stored
// credentials are bad, which is reported separately from publish errors.
func (c *Client) Authorize(ctx context.Context) (*http.Client, error) {
	ts := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken})
	if _, err := ts.Token(); err != nil {
		return nil, oops.With("context", "refreshing access token").Wrap(err)
	}
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = c.timeout
	return httpClient, nil
}

type postBody struct {
	Kind    string   `json:"kind"`
	Blog    blogRef  `json:"blog"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
}

type blogRef struct {
	ID string `json:"id"`
}

type postResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePost publishes a new post immediately (not a draft) and returns
// its public URL.
func (c *Client) CreatePost(ctx context.Context, httpClient *http.Client, blogID, title, htmlBody string) (string, error) {
	body, err := json.Marshal(postBody{
		Kind:    "blogger#post",
		Blog:    blogRef{ID: blogID},
		Title:   title,
		Content: htmlBody,
	})
	if err != nil {
		return "", oops.Wrap(err)
	}

	url := fmt.Sprintf("%s/blogs/%s/posts/?isDraft=false", c.apiBase, blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", oops.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", oops.With("blog_id", blogID).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", oops.With("blog_id", blogID, "status", resp.StatusCode, "body", string(detail)).
			Errorf("blogger API returned %d", resp.StatusCode)
	}

	var created postResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", oops.With("blog_id", blogID).Wrap(err)
	}
	return created.URL, nil
}
