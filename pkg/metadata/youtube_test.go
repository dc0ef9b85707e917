package metadata

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/imbecility/yt-courier/pkg/models"
)

const playerFixture = `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {
    "videoId": "dQw4w9WgXcQ",
    "title": "Test Video",
    "author": "Test Channel",
    "channelId": "UCabc",
    "lengthSeconds": "212",
    "thumbnail": {"thumbnails": [
      {"url": "https://i.ytimg.com/small.jpg", "width": 120, "height": 90},
      {"url": "https://i.ytimg.com/large.jpg", "width": 1280, "height": 720}
    ]}
  },
  "streamingData": {
    "formats": [
      {"itag": 22, "url": "https://r1/22", "mimeType": "video/mp4; codecs=\"avc1, mp4a\"",
       "bitrate": 2000000, "contentLength": "52428800", "width": 1280, "height": 720,
       "fps": 30, "qualityLabel": "720p"}
    ],
    "adaptiveFormats": [
      {"itag": 137, "url": "https://r1/137", "mimeType": "video/mp4; codecs=\"avc1\"",
       "bitrate": 4000000, "contentLength": "83886080", "width": 1920, "height": 1080,
       "fps": 60, "qualityLabel": "1080p60"},
      {"itag": 140, "url": "https://r1/140", "mimeType": "audio/mp4; codecs=\"mp4a\"",
       "averageBitrate": 128000, "contentLength": "5242880"},
      {"itag": 999, "mimeType": "video/webm", "signatureCipher": "s=abc"}
    ]
  }
}`

func decodeFixture(t *testing.T, raw string) *playerResponse {
	t.Helper()
	var pr playerResponse
	if err := json.Unmarshal([]byte(raw), &pr); err != nil {
		t.Fatal(err)
	}
	return &pr
}

func TestParsePlayerResponse(t *testing.T) {
	media, raw, err := parsePlayerResponse("dQw4w9WgXcQ", decodeFixture(t, playerFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if media.Title != "Test Video" || media.Author != "Test Channel" {
		t.Errorf("media = %+v", media)
	}
	if media.Duration != 212 {
		t.Errorf("duration = %d, want 212", media.Duration)
	}
	if media.WatchURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("watch url = %s", media.WatchURL)
	}
	if media.ThumbnailURL != "https://i.ytimg.com/large.jpg" {
		t.Errorf("thumbnail must be the largest, got %s", media.ThumbnailURL)
	}

	// Ciphered itag 999 must be skipped.
	if len(raw) != 3 {
		t.Fatalf("expected 3 stream options, got %d", len(raw))
	}

	prog := raw[0]
	if prog.Itag != 22 || !prog.Progressive || prog.Kind != models.KindVideo {
		t.Errorf("progressive format = %+v", prog)
	}
	if prog.SizeMB != 50 {
		t.Errorf("progressive size = %v, want 50", prog.SizeMB)
	}
	if prog.Resolution != "720p" || prog.FPS != 30 {
		t.Errorf("progressive video fields = %+v", prog)
	}

	adaptive := raw[1]
	if adaptive.Itag != 137 || adaptive.Progressive {
		t.Errorf("adaptive format = %+v", adaptive)
	}
	if adaptive.Resolution != "1080p" || adaptive.Width != 1920 || adaptive.Height != 1080 {
		t.Errorf("adaptive video fields = %+v", adaptive)
	}

	aud := raw[2]
	if aud.Kind != models.KindAudio || aud.Bitrate != "128kbps" {
		t.Errorf("audio fields = %+v", aud)
	}
	if aud.DefaultFilename != "Test Video.m4a" {
		t.Errorf("audio default filename = %q", aud.DefaultFilename)
	}
}

func TestParsePlayerResponseAgeRestricted(t *testing.T) {
	pr := decodeFixture(t, `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm your age"}}`)

	_, _, err := parsePlayerResponse("abc", pr)
	if !errors.Is(err, ErrAgeRestricted) {
		t.Errorf("err = %v, want ErrAgeRestricted", err)
	}
}

func TestParsePlayerResponseUnavailable(t *testing.T) {
	pr := decodeFixture(t, `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`)

	_, _, err := parsePlayerResponse("abc", pr)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMimeExt(t *testing.T) {
	cases := map[string]string{
		`video/mp4; codecs="avc1"`: "mp4",
		`audio/mp4; codecs="mp4a"`: "m4a",
		`audio/webm`:               "webm",
		`video/3gpp`:               "3gp",
	}
	for in, want := range cases {
		if got := mimeExt(in); got != want {
			t.Errorf("mimeExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	if got := safeFilename("a/b\\c:d"); got != "a_b_c_d" {
		t.Errorf("safeFilename = %q", got)
	}
	if got := safeFilename("   "); got != "video" {
		t.Errorf("empty title must fall back, got %q", got)
	}
}
