package courier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/imbecility/yt-courier/pkg/catalog"
	"github.com/imbecility/yt-courier/pkg/delivery"
	"github.com/imbecility/yt-courier/pkg/metadata"
	"github.com/imbecility/yt-courier/pkg/models"
	"github.com/imbecility/yt-courier/pkg/storage"
	"github.com/imbecility/yt-courier/pkg/store"
)

// ErrSelectionNotFound indicates a stale or tampered format token: the itag
// no longer resolves against a freshly built catalog.
var ErrSelectionNotFound = errors.New("selected format not found")

// Fetcher retrieves one elementary stream to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, streamURL, destPath string) (models.LocalArtifact, error)
}

// Assembler merges or converts local streams with an external encoder.
type Assembler interface {
	Merge(audioPath, videoPath, outPath string) error
	Convert(inputPath, targetExt string) (string, error)
}

// Service is the delivery orchestrator: per user selection it sequences
// fetch, merge/convert, size check, upload and cleanup. Every inbound event
// is one isolated failure domain; nothing is retried automatically.
type Service struct {
	Meta      metadata.Provider
	Messenger delivery.Messenger
	Counter   store.CounterStore
	Fetch     Fetcher
	Assemble  Assembler
	Alloc     *storage.Allocator
	// LimitMB is the inclusive upload size limit: estimates >= LimitMB are
	// rejected before any download.
	LimitMB int
}

// InboundMessage is one text message event.
type InboundMessage struct {
	Chat      int64
	User      int64
	FirstName string
	Text      string
	Ref       delivery.MessageRef
}

// Selection is one format-button activation. Token format:
// "<itag> <kind> <videoID>".
type Selection struct {
	Chat       int64
	User       int64
	Token      string
	OptionsRef delivery.MessageRef
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeSizeRejected
	outcomeFailed
)

// OnTextMessage handles /start, video links and everything else. Terminal:
// the caller consumes no result.
func (s *Service) OnTextMessage(ctx context.Context, msg InboundMessage) {
	if msg.Text == "/start" {
		s.notify(msg.Chat, greetingText(msg.FirstName))
		return
	}

	if !MatchVideoURL(msg.Text) {
		s.deleteMessage(msg.Ref)
		s.notify(msg.Chat, sendLinkText)
		return
	}

	videoID := ExtractVideoID(msg.Text)
	media, raw, err := s.Meta.Fetch(ctx, videoID)
	if err != nil {
		slog.Error("Metadata fetch failed", "vid", videoID, "err", err)
		s.deleteMessage(msg.Ref)
		if errors.Is(err, metadata.ErrAgeRestricted) {
			s.notify(msg.Chat, ageRestrictedText(msg.Text))
		} else {
			s.notify(msg.Chat, fetchFailedText(msg.Text))
		}
		return
	}

	cat := catalog.Build(raw)
	opts := cat.Options()

	buttons := make([]delivery.Button, 0, len(opts))
	for _, o := range opts {
		buttons = append(buttons, delivery.Button{
			Label: o.Label,
			Token: fmt.Sprintf("%d %s %s", o.Itag, o.Kind, media.ID),
		})
	}

	thumb, terr := s.Meta.Thumbnail(ctx, media.ThumbnailURL)
	if terr != nil {
		slog.Warn("Thumbnail fetch failed", "vid", videoID, "err", terr)
	}

	s.deleteMessage(msg.Ref)
	if _, serr := s.Messenger.SendOptions(msg.Chat, thumb, optionsCaption(media), buttons); serr != nil {
		slog.Error("Failed to send options", "vid", videoID, "err", serr)
	}
}

// OnOptionSelected drives one selection through the pipeline to a terminal
// state.
func (s *Service) OnOptionSelected(ctx context.Context, sel Selection) {
	switch s.processSelection(ctx, sel) {
	case outcomeDelivered:
		slog.Info("Delivered", "chat", sel.Chat, "token", sel.Token)
	case outcomeSizeRejected:
		slog.Info("Rejected by size limit", "chat", sel.Chat, "token", sel.Token)
	case outcomeFailed:
		slog.Warn("Delivery failed", "chat", sel.Chat, "token", sel.Token)
	}
}

func (s *Service) processSelection(ctx context.Context, sel Selection) outcome {
	choice, err := parseToken(sel.Token)
	if err != nil {
		slog.Error("Bad selection token", "token", sel.Token, "err", err)
		return outcomeFailed
	}

	// The catalog is rebuilt from a fresh metadata fetch on every click;
	// nothing is cached across messages.
	media, raw, err := s.Meta.Fetch(ctx, choice.VideoID)
	if err != nil {
		slog.Error("Metadata refresh failed", "vid", choice.VideoID, "err", err)
		s.deleteMessage(sel.OptionsRef)
		link := "https://www.youtube.com/watch?v=" + choice.VideoID
		if errors.Is(err, metadata.ErrAgeRestricted) {
			s.notify(sel.Chat, ageRestrictedText(link))
		} else {
			s.notify(sel.Chat, fetchFailedText(link))
		}
		return outcomeFailed
	}

	cat := catalog.Build(raw)
	opt, ok := cat.Find(choice.Itag, choice.Kind)
	if !ok {
		slog.Error("Selection not found in refreshed catalog",
			"vid", choice.VideoID, "itag", choice.Itag, "err", ErrSelectionNotFound)
		s.deleteMessage(sel.OptionsRef)
		return outcomeFailed
	}

	if opt.SizeMB >= float64(s.LimitMB) {
		s.notify(sel.Chat, sizeRejectedText(media, s.LimitMB))
		s.deleteMessage(sel.OptionsRef)
		return outcomeSizeRejected
	}

	s.editProgress(sel.OptionsRef, progressCaption(media, stageDownloading))

	artifact, res := s.assemble(ctx, sel, media, cat, opt)
	if res != outcomeDelivered {
		s.deleteMessage(sel.OptionsRef)
		return res
	}

	res = s.upload(ctx, sel, media, opt, artifact)

	s.deleteMessage(sel.OptionsRef)

	// The deliverable never outlives the request, whatever the branch did.
	if rerr := os.Remove(artifact.Path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		slog.Error("Failed to remove artifact", "path", artifact.Path, "err", rerr)
	}

	return res
}

// assemble runs fetch-primary, the optional fetch-audio + merge leg, and
// the container conversion, returning the deliverable artifact.
func (s *Service) assemble(ctx context.Context, sel Selection, media *models.SourceMedia, cat *catalog.Catalog, opt models.StreamOption) (models.LocalArtifact, outcome) {
	primaryPath, err := s.allocateFor(media.ID, opt)
	if err != nil {
		slog.Error("Filename allocation failed", "vid", media.ID, "err", err)
		s.notify(sel.Chat, downloadFailedText(media))
		return models.LocalArtifact{}, outcomeFailed
	}

	artifact, err := s.Fetch.Fetch(ctx, opt.URL, primaryPath)
	if err != nil {
		slog.Error("Primary stream fetch failed", "vid", media.ID, "itag", opt.Itag, "err", err)
		s.notify(sel.Chat, downloadFailedText(media))
		return models.LocalArtifact{}, outcomeFailed
	}

	if opt.Kind == models.KindVideo && !opt.Progressive {
		merged, res := s.fetchAudioAndMerge(ctx, sel, media, cat, artifact)
		if res != outcomeDelivered {
			return models.LocalArtifact{}, res
		}
		artifact = merged
	}

	target := ""
	if opt.Kind == models.KindAudio && artifact.Ext != "mp3" {
		target = "mp3"
	} else if opt.Kind == models.KindVideo && artifact.Ext != "mp4" {
		target = "mp4"
	}
	if target != "" {
		converted, cerr := s.Assemble.Convert(artifact.Path, target)
		if cerr != nil {
			// The input stays on disk for the janitor; the tool offers no
			// detail beyond its exit status.
			slog.Error("Conversion failed", "vid", media.ID, "err", cerr)
			s.notify(sel.Chat, uploadFailedText(media, opt.Kind))
			return models.LocalArtifact{}, outcomeFailed
		}
		artifact = models.LocalArtifact{Path: converted, Ext: target}
	}

	return artifact, outcomeDelivered
}

func (s *Service) fetchAudioAndMerge(ctx context.Context, sel Selection, media *models.SourceMedia, cat *catalog.Catalog, video models.LocalArtifact) (models.LocalArtifact, outcome) {
	audioOpt, err := cat.MaxBitrateAudio()
	if err != nil {
		slog.Error("No audio stream to merge", "vid", media.ID, "err", err)
		s.removeArtifact(video)
		s.notify(sel.Chat, downloadFailedText(media))
		return models.LocalArtifact{}, outcomeFailed
	}

	audioPath, err := s.allocateFor(media.ID, audioOpt)
	if err != nil {
		slog.Error("Audio filename allocation failed", "vid", media.ID, "err", err)
		s.removeArtifact(video)
		s.notify(sel.Chat, downloadFailedText(media))
		return models.LocalArtifact{}, outcomeFailed
	}

	audio, err := s.Fetch.Fetch(ctx, audioOpt.URL, audioPath)
	if err != nil {
		slog.Error("Audio stream fetch failed", "vid", media.ID, "itag", audioOpt.Itag, "err", err)
		s.removeArtifact(video)
		s.notify(sel.Chat, downloadFailedText(media))
		return models.LocalArtifact{}, outcomeFailed
	}

	s.editProgress(sel.OptionsRef, progressCaption(media, stageMerging))

	// Merge output keeps the video container; its name reuses the primary's
	// seed through the allocator.
	outPath, err := s.Alloc.Allocate(idSuffix(media.ID) + "." + video.Ext)
	if err != nil {
		slog.Error("Merge output allocation failed", "vid", media.ID, "err", err)
		s.removeArtifact(video)
		s.removeArtifact(audio)
		s.notify(sel.Chat, downloadFailedText(media))
		return models.LocalArtifact{}, outcomeFailed
	}

	if merr := s.Assemble.Merge(audio.Path, video.Path, outPath); merr != nil {
		// Inputs are preserved on merge failure; only the claimed output
		// placeholder goes away.
		slog.Error("Merge failed", "vid", media.ID, "err", merr)
		if rerr := os.Remove(outPath); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			slog.Error("Failed to remove merge placeholder", "path", outPath, "err", rerr)
		}
		s.notify(sel.Chat, uploadFailedText(media, models.KindVideo))
		return models.LocalArtifact{}, outcomeFailed
	}

	return models.LocalArtifact{Path: outPath, Ext: video.Ext}, outcomeDelivered
}

func (s *Service) upload(ctx context.Context, sel Selection, media *models.SourceMedia, opt models.StreamOption, artifact models.LocalArtifact) outcome {
	thumb, terr := s.Meta.Thumbnail(ctx, media.ThumbnailURL)
	if terr != nil {
		slog.Warn("Thumbnail fetch failed", "vid", media.ID, "err", terr)
	}

	meta := delivery.FileMeta{
		Caption:   successCaption(media, opt),
		Duration:  media.Duration,
		Thumbnail: thumb,
	}
	switch opt.Kind {
	case models.KindVideo:
		s.editProgress(sel.OptionsRef, progressCaption(media, stageUploading))
		meta.Width = opt.Width
		meta.Height = opt.Height
	case models.KindAudio:
		meta.Performer = media.Author
	}

	slog.Info("Sending file", "path", filepath.Base(artifact.Path), "kind", opt.Kind)
	if err := s.Messenger.SendFile(sel.Chat, opt.Kind, artifact.Path, meta); err != nil {
		if errors.Is(err, delivery.ErrMalformed) {
			// Our own markup was rejected; nothing the user can act on.
			slog.Error("Outgoing message rejected", "vid", media.ID, "err", err)
			return outcomeFailed
		}
		slog.Error("Upload failed", "vid", media.ID, "err", err)
		s.notify(sel.Chat, uploadFailedText(media, opt.Kind))
		return outcomeFailed
	}

	if ierr := s.Counter.Increment(sel.User); ierr != nil {
		slog.Error("Failed to record delivery", "user", sel.User, "err", ierr)
	}
	return outcomeDelivered
}

// allocateFor claims a working-dir filename seeded by the source id suffix
// and the stream's container extension.
func (s *Service) allocateFor(videoID string, opt models.StreamOption) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(opt.DefaultFilename), ".")
	if ext == "" {
		ext = "mp4"
	}
	return s.Alloc.Allocate(idSuffix(videoID) + "." + ext)
}

// idSuffix keeps the last 11 characters of a source id.
func idSuffix(id string) string {
	if len(id) <= 11 {
		return id
	}
	return id[len(id)-11:]
}

func parseToken(token string) (models.DownloadSelection, error) {
	parts := strings.Fields(token)
	if len(parts) != 3 {
		return models.DownloadSelection{}, fmt.Errorf("malformed token %q", token)
	}
	itag, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.DownloadSelection{}, fmt.Errorf("malformed itag in token %q: %w", token, err)
	}
	kind := models.StreamKind(parts[1])
	if kind != models.KindAudio && kind != models.KindVideo {
		return models.DownloadSelection{}, fmt.Errorf("unknown kind in token %q", token)
	}
	return models.DownloadSelection{VideoID: parts[2], Itag: itag, Kind: kind}, nil
}

func (s *Service) notify(chatID int64, text string) {
	if err := s.Messenger.SendText(chatID, text); err != nil {
		slog.Error("Failed to send message", "chat", chatID, "err", err)
	}
}

func (s *Service) editProgress(ref delivery.MessageRef, caption string) {
	if err := s.Messenger.EditCaption(ref, caption); err != nil {
		slog.Warn("Failed to edit progress caption", "err", err)
	}
}

func (s *Service) deleteMessage(ref delivery.MessageRef) {
	if ref.MessageID == 0 {
		return
	}
	if err := s.Messenger.DeleteMessage(ref); err != nil {
		slog.Warn("Failed to delete message", "err", err)
	}
}

func (s *Service) removeArtifact(a models.LocalArtifact) {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("Failed to remove artifact", "path", a.Path, "err", err)
	}
}
