package telegram

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/samber/oops"
)

// mediaDownloader fetches Telegram files to local temp paths. The file
// lives only until the publish attempt consumes it.
type mediaDownloader struct {
	httpClient *http.Client
}

func newMediaDownloader() *mediaDownloader {
	return &mediaDownloader{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *mediaDownloader) download(ctx context.Context, b *bot.Bot, fileID string) (string, error) {
	f, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", oops.With("file_id", fileID).Wrap(err)
	}

	link := b.FileDownloadLink(f)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", oops.Wrap(err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", oops.With("file_id", fileID).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", oops.With("file_id", fileID, "status", resp.StatusCode).Errorf("file download returned %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "poster-media-*.jpg")
	if err != nil {
		return "", oops.Wrap(err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", oops.With("path", tmp.Name()).Wrap(err)
	}
	return tmp.Name(), nil
}
