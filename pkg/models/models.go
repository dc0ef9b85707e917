package models

// StreamKind distinguishes the two elementary stream ladders.
type StreamKind string

const (
	KindAudio StreamKind = "audio"
	KindVideo StreamKind = "video"
)

// SourceMedia is the metadata of one fetched video. Immutable once fetched,
// owned by the request that fetched it, never persisted.
type SourceMedia struct {
	// ID is the globally-stable 11-character video identifier.
	ID           string
	Title        string
	Author       string
	ChannelURL   string
	ThumbnailURL string
	// Duration is the total length in seconds.
	Duration int
	WatchURL string
}

// StreamOption is one downloadable elementary stream as reported by the
// metadata provider, before catalog normalization.
type StreamOption struct {
	Kind StreamKind
	// Itag is the format identifier, unique within one SourceMedia.
	Itag int
	// SizeMB is the size estimate in megabytes, one decimal place.
	SizeMB float64
	// Progressive streams carry both audio and video already muxed.
	Progressive bool
	// DefaultFilename is the provider-suggested name, used for extension
	// inference.
	DefaultFilename string
	// URL is the direct stream location.
	URL string

	// Audio-only fields.
	Bitrate  string // "128kbps"
	Language string

	// Video-only fields.
	Resolution string // "720p"
	FPS        int
	Width      int
	Height     int
}

// DownloadOption is one UI-ready selectable entry derived from a
// StreamOption: the label becomes button text, itag and kind round-trip
// through the chat transport back to the orchestrator.
type DownloadOption struct {
	Label string
	Itag  int
	Kind  StreamKind
}

// DownloadSelection is one unit of user intent, created when a format
// button is activated and consumed exactly once.
type DownloadSelection struct {
	VideoID string
	Itag    int
	Kind    StreamKind
}

// LocalArtifact is a downloaded or assembled file on disk. Ownership
// transfers along the pipeline: the consumer of an artifact deletes it.
type LocalArtifact struct {
	Path string
	// Ext is the container extension without the dot ("mp4", "webm").
	Ext string
}
