package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/imbecility/yt-courier/pkg/courier"
	"github.com/imbecility/yt-courier/pkg/delivery"
)

// Bot pumps Telegram updates into the orchestrator. Each update runs on its
// own goroutine, so one user's flow never blocks or breaks another's.
type Bot struct {
	API     *tgbotapi.BotAPI
	Service *courier.Service
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.API.GetUpdatesChan(cfg)
	slog.Info("Bot started", "username", b.API.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Update handler panicked", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	b.Service.OnTextMessage(ctx, courier.InboundMessage{
		Chat:      msg.Chat.ID,
		User:      msg.From.ID,
		FirstName: msg.From.FirstName,
		Text:      msg.Text,
		Ref:       delivery.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID},
	})
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.API.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		slog.Debug("Callback ack failed", "err", err)
	}
	if cq.Message == nil {
		slog.Warn("Callback without message", "data", cq.Data)
		return
	}

	b.Service.OnOptionSelected(ctx, courier.Selection{
		Chat:  cq.Message.Chat.ID,
		User:  cq.From.ID,
		Token: cq.Data,
		OptionsRef: delivery.MessageRef{
			ChatID:    cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
		},
	})
}
