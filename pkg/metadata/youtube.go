package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/imbecility/yt-courier/pkg/client"
	"github.com/imbecility/yt-courier/pkg/models"
)

const (
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"

	// The ANDROID innertube client returns direct stream URLs without
	// signature deciphering for the vast majority of videos.
	androidClientName    = "ANDROID"
	androidClientVersion = "19.09.37"
	androidUserAgent     = "com.google.android.youtube/19.09.37 (Linux; U; Android 11) gzip"
)

// YouTube fetches video metadata and stream lists from the innertube player
// endpoint.
type YouTube struct {
	Client client.HTTPClient
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName        string `json:"clientName"`
			ClientVersion     string `json:"clientVersion"`
			AndroidSDKVersion int    `json:"androidSdkVersion"`
			HL                string `json:"hl"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerFormat struct {
	Itag             int    `json:"itag"`
	URL              string `json:"url"`
	MimeType         string `json:"mimeType"`
	Bitrate          int    `json:"bitrate"`
	AverageBitrate   int    `json:"averageBitrate"`
	ContentLength    string `json:"contentLength"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	FPS              int    `json:"fps"`
	QualityLabel     string `json:"qualityLabel"`
	SignatureCipher  string `json:"signatureCipher"`
	ApproxDurationMs string `json:"approxDurationMs"`
	AudioTrack       struct {
		DisplayName string `json:"displayName"`
	} `json:"audioTrack"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	StreamingData struct {
		Formats         []playerFormat `json:"formats"`
		AdaptiveFormats []playerFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		ChannelID     string `json:"channelId"`
		LengthSeconds string `json:"lengthSeconds"`
		Thumbnail     struct {
			Thumbnails []struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
}

func (y *YouTube) Fetch(ctx context.Context, videoID string) (*models.SourceMedia, []models.StreamOption, error) {
	slog.Info("Fetching metadata", "vid", videoID)

	var reqBody playerRequest
	reqBody.Context.Client.ClientName = androidClientName
	reqBody.Context.Client.ClientVersion = androidClientVersion
	reqBody.Context.Client.AndroidSDKVersion = 30
	reqBody.Context.Client.HL = "en"
	reqBody.VideoID = videoID

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playerEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("player request failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			slog.Warn("Error closing response body", "err", cerr)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("player request status: %d", resp.StatusCode)
	}

	var pr playerResponse
	if derr := json.NewDecoder(resp.Body).Decode(&pr); derr != nil {
		return nil, nil, fmt.Errorf("failed to decode player response: %w", derr)
	}

	return parsePlayerResponse(videoID, &pr)
}

// Thumbnail downloads the preview image used for the options message and
// upload previews.
func (y *YouTube) Thumbnail(ctx context.Context, thumbnailURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			slog.Warn("Error closing response body", "err", cerr)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func parsePlayerResponse(videoID string, pr *playerResponse) (*models.SourceMedia, []models.StreamOption, error) {
	switch pr.PlayabilityStatus.Status {
	case "OK":
	case "LOGIN_REQUIRED":
		return nil, nil, ErrAgeRestricted
	case "AGE_CHECK_REQUIRED":
		return nil, nil, ErrAgeRestricted
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, pr.PlayabilityStatus.Reason)
	}

	duration, _ := strconv.Atoi(pr.VideoDetails.LengthSeconds)

	media := &models.SourceMedia{
		ID:         videoID,
		Title:      pr.VideoDetails.Title,
		Author:     pr.VideoDetails.Author,
		ChannelURL: "https://www.youtube.com/channel/" + pr.VideoDetails.ChannelID,
		Duration:   duration,
		WatchURL:   "https://www.youtube.com/watch?v=" + videoID,
	}

	// The thumbnail list is ordered small to large; take the largest.
	thumbs := pr.VideoDetails.Thumbnail.Thumbnails
	if len(thumbs) > 0 {
		media.ThumbnailURL = thumbs[len(thumbs)-1].URL
	}

	var raw []models.StreamOption
	for _, f := range pr.StreamingData.Formats {
		if opt, ok := toStreamOption(f, media, true); ok {
			raw = append(raw, opt)
		}
	}
	for _, f := range pr.StreamingData.AdaptiveFormats {
		if opt, ok := toStreamOption(f, media, false); ok {
			raw = append(raw, opt)
		}
	}

	return media, raw, nil
}

func toStreamOption(f playerFormat, media *models.SourceMedia, progressive bool) (models.StreamOption, bool) {
	if f.URL == "" {
		// Ciphered stream the ANDROID client could not unlock.
		slog.Debug("Skipping ciphered format", "itag", f.Itag)
		return models.StreamOption{}, false
	}

	var kind models.StreamKind
	switch {
	case strings.HasPrefix(f.MimeType, "audio/"):
		kind = models.KindAudio
	case strings.HasPrefix(f.MimeType, "video/"):
		kind = models.KindVideo
	default:
		return models.StreamOption{}, false
	}

	ext := mimeExt(f.MimeType)
	bitrate := f.AverageBitrate
	if bitrate == 0 {
		bitrate = f.Bitrate
	}

	opt := models.StreamOption{
		Kind:            kind,
		Itag:            f.Itag,
		SizeMB:          sizeMB(f, media.Duration, bitrate),
		Progressive:     progressive,
		DefaultFilename: safeFilename(media.Title) + "." + ext,
		URL:             f.URL,
	}

	switch kind {
	case models.KindAudio:
		opt.Bitrate = fmt.Sprintf("%dkbps", bitrate/1000)
		opt.Language = f.AudioTrack.DisplayName
	case models.KindVideo:
		opt.Resolution = fmt.Sprintf("%dp", f.Height)
		opt.FPS = f.FPS
		opt.Width = f.Width
		opt.Height = f.Height
	}

	return opt, true
}

// sizeMB estimates the stream size in megabytes, one decimal place. Falls
// back to bitrate x duration when contentLength is missing (live remuxes).
func sizeMB(f playerFormat, durationSec, bitrate int) float64 {
	if n, err := strconv.ParseInt(f.ContentLength, 10, 64); err == nil && n > 0 {
		return round1(float64(n) / 1024 / 1024)
	}
	estimated := float64(bitrate) / 8 * float64(durationSec)
	return round1(estimated / 1024 / 1024)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// mimeExt maps "video/mp4; codecs=..." to a container extension.
func mimeExt(mimeType string) string {
	mt := mimeType
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	parts := strings.SplitN(mt, "/", 2)
	if len(parts) != 2 {
		return "mp4"
	}
	sub := parts[1]
	if parts[0] == "audio" && sub == "mp4" {
		return "m4a"
	}
	if sub == "3gpp" {
		return "3gp"
	}
	return sub
}

// safeFilename strips path separators and characters that upset ffmpeg or
// the filesystem from a provider-supplied title.
func safeFilename(title string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"\x00", "",
		":", "_",
		"\"", "'",
	)
	name := strings.TrimSpace(replacer.Replace(title))
	if name == "" {
		name = "video"
	}
	return name
}
