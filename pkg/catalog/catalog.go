package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/imbecility/yt-courier/pkg/models"
)

// ErrNoAudioAvailable is returned when a merge requires an audio stream but
// the source exposes none.
var ErrNoAudioAvailable = errors.New("no audio stream available")

// Catalog is the deduplicated, sorted set of user-selectable download
// options for one SourceMedia: an audio ladder ascending by bitrate and a
// video ladder ascending by resolution.
type Catalog struct {
	Audio []models.StreamOption
	Video []models.StreamOption
}

// Build turns a raw stream list into a Catalog. Duplicate itags are dropped
// (first occurrence wins). Non-progressive video sizes are bumped by the
// whole megabytes of the largest-bitrate audio option, because delivering
// such a video requires fetching and merging that audio. When the audio
// ladder is empty the bump is skipped; that is a degraded mode, not an
// error.
func Build(raw []models.StreamOption) *Catalog {
	c := &Catalog{}

	seen := make(map[int]bool, len(raw))
	for _, s := range raw {
		if seen[s.Itag] {
			continue
		}
		seen[s.Itag] = true

		switch s.Kind {
		case models.KindAudio:
			c.Audio = append(c.Audio, s)
		case models.KindVideo:
			c.Video = append(c.Video, s)
		}
	}

	if best, err := c.MaxBitrateAudio(); err == nil {
		bump := math.Floor(best.SizeMB)
		for i := range c.Video {
			if c.Video[i].Progressive {
				continue
			}
			c.Video[i].SizeMB = round1(c.Video[i].SizeMB + bump)
		}
	}

	sort.SliceStable(c.Audio, func(i, j int) bool {
		return parseLeadingInt(c.Audio[i].Bitrate) < parseLeadingInt(c.Audio[j].Bitrate)
	})
	sort.SliceStable(c.Video, func(i, j int) bool {
		return parseLeadingInt(c.Video[i].Resolution) < parseLeadingInt(c.Video[j].Resolution)
	})

	return c
}

// Find resolves a format identifier and kind against the catalog.
func (c *Catalog) Find(itag int, kind models.StreamKind) (models.StreamOption, bool) {
	var ladder []models.StreamOption
	switch kind {
	case models.KindAudio:
		ladder = c.Audio
	case models.KindVideo:
		ladder = c.Video
	}
	for _, s := range ladder {
		if s.Itag == itag {
			return s, true
		}
	}
	return models.StreamOption{}, false
}

// MaxBitrateAudio returns the audio option with the highest parsed bitrate.
func (c *Catalog) MaxBitrateAudio() (models.StreamOption, error) {
	if len(c.Audio) == 0 {
		return models.StreamOption{}, ErrNoAudioAvailable
	}
	best := c.Audio[0]
	for _, s := range c.Audio[1:] {
		if parseLeadingInt(s.Bitrate) > parseLeadingInt(best.Bitrate) {
			best = s
		}
	}
	return best, nil
}

// Options renders the flat UI-ready list: video ladder first, then audio,
// both ascending.
func (c *Catalog) Options() []models.DownloadOption {
	opts := make([]models.DownloadOption, 0, len(c.Video)+len(c.Audio))
	for _, v := range c.Video {
		opts = append(opts, models.DownloadOption{
			Label: fmt.Sprintf("%s/%dfps:  %.1fmb", v.Resolution, v.FPS, v.SizeMB),
			Itag:  v.Itag,
			Kind:  models.KindVideo,
		})
	}
	for _, a := range c.Audio {
		label := fmt.Sprintf("🔊 %8s  %.1fmb", a.Bitrate, a.SizeMB)
		if a.Language != "" {
			label += fmt.Sprintf(" (%s)", a.Language)
		}
		opts = append(opts, models.DownloadOption{
			Label: label,
			Itag:  a.Itag,
			Kind:  models.KindAudio,
		})
	}
	return opts
}

// parseLeadingInt reads the integer prefix of labels like "128kbps" or
// "720p". Anything without a numeric prefix parses as 0.
func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
