package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/imbecility/yt-courier/pkg/bot"
	"github.com/imbecility/yt-courier/pkg/client"
	"github.com/imbecility/yt-courier/pkg/courier"
	"github.com/imbecility/yt-courier/pkg/delivery"
	"github.com/imbecility/yt-courier/pkg/fetcher"
	"github.com/imbecility/yt-courier/pkg/ffmpeg"
	"github.com/imbecility/yt-courier/pkg/logger"
	"github.com/imbecility/yt-courier/pkg/metadata"
	"github.com/imbecility/yt-courier/pkg/storage"
	"github.com/imbecility/yt-courier/pkg/store"
)

func main() {
	ffmpegPath := flag.String("ffmpeg", "ffmpeg", "Path to ffmpeg binary")
	workDir := flag.String("workdir", ".", "Working directory for downloads")
	dbPath := flag.String("db", "youtube_bot_database.db", "Path to the usage counter database")
	limitMB := flag.Int("limit-mb", 2000, "Upload size limit in megabytes")
	apiEndpoint := flag.String("api-server", "", "Local Bot API server (e.g. http://localhost:8081) to lift the upload cap")
	janitorTTL := flag.Duration("janitor-ttl", 6*time.Hour, "Age after which orphaned working-dir files are removed")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger.SetupGlobal(*debugFlag, false)

	if err := run(*ffmpegPath, *workDir, *dbPath, *apiEndpoint, *limitMB, *janitorTTL); err != nil {
		slog.Error("Bot stopped", "err", err)
		os.Exit(1)
	}
}

func run(ffmpegPath, workDir, dbPath, apiEndpoint string, limitMB int, janitorTTL time.Duration) error {
	_ = godotenv.Load()
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return fmt.Errorf("BOT_TOKEN is not set")
	}

	if err := ffmpeg.EnsureBinary(ffmpegPath); err != nil {
		return err
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("failed to create working dir: %w", err)
	}

	httpClient, err := client.New()
	if err != nil {
		return err
	}

	counter, err := store.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := counter.Close(); cerr != nil {
			slog.Warn("Error closing database", "err", cerr)
		}
	}()

	var api *tgbotapi.BotAPI
	if apiEndpoint != "" {
		api, err = tgbotapi.NewBotAPIWithAPIEndpoint(token, apiEndpoint+"/bot%s/%s")
	} else {
		api, err = tgbotapi.NewBotAPI(token)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	svc := &courier.Service{
		Meta:      &metadata.YouTube{Client: httpClient},
		Messenger: &delivery.Telegram{Bot: api},
		Counter:   counter,
		Fetch:     &fetcher.Fetcher{Client: httpClient},
		Assemble:  &ffmpeg.Assembler{BinaryPath: ffmpegPath},
		Alloc:     &storage.Allocator{Dir: workDir},
		LimitMB:   limitMB,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitor := &storage.Janitor{Dir: workDir, TTL: janitorTTL}
	go janitor.Run(ctx, 10*time.Minute)

	(&bot.Bot{API: api, Service: svc}).Run(ctx)
	return nil
}
