package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"estate_bot/internal/bot"
	"estate_bot/internal/config"
	"estate_bot/internal/publisher"
	"estate_bot/internal/source"
	"estate_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	limit := flag.Int("limit", cfg.PublishLimit, "listings fetched per category and cycle")
	idle := flag.Duration("idle", cfg.PublishIdle, "pause between cycles")
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	log := newLogger(cfg.LogLevel)

	if *limit < 1 {
		log.Error("invalid limit", "limit", *limit)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.StorageBackend, cfg.RedisURL, cfg.DatabasePath)
	if err != nil {
		log.Error("open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	estates := source.New(&http.Client{Timeout: 30 * time.Second}, cfg.EstatesAPIURL, cfg.EstatesAPIToken, log)

	// The bot only sends here; updates are consumed by the bot process.
	b, err := bot.New(cfg.TelegramBotToken, store, cfg, nil, nil, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	p := publisher.New(estates, store, b, cfg.Channels(), log)
	p.SetSendDelay(cfg.PublishSendDelay)
	p.SetIdle(*idle)

	if *once {
		counters := p.Run(ctx, *limit)
		args := make([]any, 0, len(counters)*2)
		for k, v := range counters {
			args = append(args, k, v)
		}
		log.Info("publisher cycle done", args...)
		return
	}

	log.Info("starting publisher", "limit", *limit, "idle", *idle)
	p.Loop(ctx, *limit)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
