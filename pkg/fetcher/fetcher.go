package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/imbecility/yt-courier/pkg/client"
	"github.com/imbecility/yt-courier/pkg/models"
)

// ErrDownload wraps any transport failure while retrieving a stream.
var ErrDownload = errors.New("stream download failed")

// Fetcher retrieves single elementary streams to local storage.
type Fetcher struct {
	Client client.HTTPClient
}

// Fetch downloads one stream to destPath and returns the resulting
// artifact. On any failure the partial file is removed, so a returned error
// always means destPath is absent.
func (f *Fetcher) Fetch(ctx context.Context, streamURL, destPath string) (models.LocalArtifact, error) {
	slog.Info("Downloading stream", "dest", filepath.Base(destPath))

	if err := f.download(ctx, streamURL, destPath); err != nil {
		if rerr := os.Remove(destPath); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			slog.Error("Failed to remove partial file", "path", destPath, "err", rerr)
		}
		return models.LocalArtifact{}, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	slog.Info("Downloaded stream", "dest", filepath.Base(destPath))
	return models.LocalArtifact{
		Path: destPath,
		Ext:  strings.TrimPrefix(filepath.Ext(destPath), "."),
	}, nil
}

func (f *Fetcher) download(ctx context.Context, streamURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			slog.Warn("Error closing response body", "err", cerr)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
