// Package imgbb uploads images to the imgbb hosting API with a single
// multipart POST. Any non-success status or malformed response is a
// failure; there are no retries.
package imgbb

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
)

const uploadURL = "https://api.imgbb.com/1/upload"

type Client struct {
	apiKey     string
	httpClient *http.Client
	endpoint   string
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   uploadURL,
	}
}

// NewWithEndpoint is used in tests to point the client at a fake server.
func NewWithEndpoint(apiKey, endpoint string) *Client {
	c := New(apiKey)
	c.endpoint = endpoint
	return c
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Upload sends the file at path and returns its public URL.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", oops.With("path", path).Wrap(err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return "", oops.Wrap(err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", oops.With("path", path).Wrap(err)
	}
	if err := writer.WriteField("key", c.apiKey); err != nil {
		return "", oops.Wrap(err)
	}
	if err := writer.Close(); err != nil {
		return "", oops.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", oops.Wrap(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", oops.With("context", "uploading image").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", oops.With("status", resp.StatusCode, "body", string(detail)).
			Errorf("imgbb returned %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", oops.With("context", "decoding imgbb response").Wrap(err)
	}
	if !parsed.Success || parsed.Data.URL == "" {
		return "", oops.Errorf("imgbb upload rejected")
	}
	return parsed.Data.URL, nil
}
