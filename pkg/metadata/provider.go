package metadata

import (
	"context"
	"errors"

	"github.com/imbecility/yt-courier/pkg/models"
)

var (
	// ErrNotFound indicates the video does not exist or is unavailable.
	ErrNotFound = errors.New("video not found")
	// ErrAgeRestricted indicates the video requires a signed-in session.
	ErrAgeRestricted = errors.New("video is age restricted")
)

// Provider resolves a video identifier into source metadata plus the raw
// stream list. Raw means: duplicates across the progressive and adaptive
// format lists are preserved, the catalog deduplicates.
type Provider interface {
	Fetch(ctx context.Context, videoID string) (*models.SourceMedia, []models.StreamOption, error)
	Thumbnail(ctx context.Context, thumbnailURL string) ([]byte, error)
}
