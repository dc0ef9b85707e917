package delivery

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/imbecility/yt-courier/pkg/models"
)

// Telegram implements Messenger on the Bot API. Uploads beyond the public
// 50 MB cap require pointing the bot at a local Bot API server.
type Telegram struct {
	Bot *tgbotapi.BotAPI
}

func (t *Telegram) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := t.Bot.Send(msg)
	return classify(err)
}

func (t *Telegram) SendOptions(chatID int64, photo []byte, caption string, buttons []Button) (MessageRef, error) {
	t.sendAction(chatID, "upload_photo")

	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "preview.jpg", Bytes: photo})
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = optionsKeyboard(buttons)

	sent, err := t.Bot.Send(msg)
	if err != nil {
		return MessageRef{}, classify(err)
	}
	return MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (t *Telegram) EditCaption(ref MessageRef, caption string) error {
	edit := tgbotapi.NewEditMessageCaption(ref.ChatID, ref.MessageID, caption)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := t.Bot.Send(edit)
	return classify(err)
}

func (t *Telegram) DeleteMessage(ref MessageRef) error {
	_, err := t.Bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	return classify(err)
}

func (t *Telegram) SendFile(chatID int64, kind models.StreamKind, path string, meta FileMeta) error {
	var cfg tgbotapi.Chattable

	switch kind {
	case models.KindVideo:
		t.sendAction(chatID, "upload_video")
		video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
		video.Caption = meta.Caption
		video.ParseMode = tgbotapi.ModeMarkdownV2
		video.Duration = meta.Duration
		video.SupportsStreaming = true
		if len(meta.Thumbnail) > 0 {
			video.Thumb = tgbotapi.FileBytes{Name: "thumb.jpg", Bytes: meta.Thumbnail}
		}
		cfg = video
	case models.KindAudio:
		t.sendAction(chatID, "upload_voice")
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
		audio.Caption = meta.Caption
		audio.ParseMode = tgbotapi.ModeMarkdownV2
		audio.Duration = meta.Duration
		audio.Performer = meta.Performer
		if len(meta.Thumbnail) > 0 {
			audio.Thumb = tgbotapi.FileBytes{Name: "thumb.jpg", Bytes: meta.Thumbnail}
		}
		cfg = audio
	default:
		return fmt.Errorf("unsupported file kind: %s", kind)
	}

	_, err := t.Bot.Send(cfg)
	return classify(err)
}

func (t *Telegram) sendAction(chatID int64, action string) {
	if _, err := t.Bot.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		slog.Debug("Chat action failed", "action", action, "err", err)
	}
}

// optionsKeyboard lays buttons out two per row; the last row may carry one.
func optionsKeyboard(buttons []Button) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// classify maps Bot API rejections of our own message markup onto
// ErrMalformed so the orchestrator can suppress them.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "can't parse entities") {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return err
}
