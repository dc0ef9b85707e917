package delivery

import (
	"errors"

	"github.com/imbecility/yt-courier/pkg/models"
)

// ErrMalformed marks a rejected outgoing message (bad caption entities).
// Non-actionable: the orchestrator logs it and shows the user nothing.
var ErrMalformed = errors.New("malformed outgoing message")

// MessageRef identifies one sent message for later edits or deletion.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is one selectable format option: label shown to the user, token
// round-tripped back through the transport on activation.
type Button struct {
	Label string
	Token string
}

// FileMeta carries the caption and technical attributes attached to an
// uploaded file. Width/height apply to video, performer to audio.
type FileMeta struct {
	Caption   string
	Duration  int
	Width     int
	Height    int
	Performer string
	Thumbnail []byte
}

// Messenger is the chat transport consumed by the orchestrator. Captions
// are MarkdownV2, pre-escaped by the caller.
type Messenger interface {
	SendText(chatID int64, text string) error
	// SendOptions posts the preview photo with the format keyboard and
	// returns a reference to the sent message.
	SendOptions(chatID int64, photo []byte, caption string, buttons []Button) (MessageRef, error)
	EditCaption(ref MessageRef, caption string) error
	DeleteMessage(ref MessageRef) error
	SendFile(chatID int64, kind models.StreamKind, path string, meta FileMeta) error
}
