package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"estate_bot/internal/bot"
	"estate_bot/internal/config"
	"estate_bot/internal/downgrade"
	"estate_bot/internal/payment"
	"estate_bot/internal/scheduler"
	"estate_bot/internal/source"
	"estate_bot/internal/storage"
	"estate_bot/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.StorageBackend, cfg.RedisURL, cfg.DatabasePath)
	if err != nil {
		log.Error("open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	estates := source.New(httpClient, cfg.EstatesAPIURL, cfg.EstatesAPIToken, log)

	var payments bot.PaymentProvider
	if cfg.HeleketMerchantID != "" && cfg.HeleketAPIKey != "" {
		payments = payment.New(httpClient, payment.Config{
			MerchantID:   cfg.HeleketMerchantID,
			APIKey:       cfg.HeleketAPIKey,
			CallbackHost: cfg.HeleketCallbackHost,
			BotLink:      cfg.BotLink,
		}, log)
	}

	b, err := bot.New(cfg.TelegramBotToken, store, cfg, estates, payments, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(log)
	if err := sched.Add(ctx, "downgrade", cfg.DowngradeSchedule, downgrade.New(store, b, log)); err != nil {
		log.Error("schedule downgrade", "error", err)
		os.Exit(1)
	}

	log.Info("starting bot", "storage", cfg.StorageBackend)

	var wg sync.WaitGroup
	wg.Go(func() { sched.Run(ctx) })

	if cfg.WebhookAddr != "" {
		srv := webhook.New(store, b, cfg.HeleketWebhookIP, cfg.LogsChannelID, log)
		wg.Go(func() {
			if err := srv.ListenAndServe(ctx, cfg.WebhookAddr); err != nil {
				log.Error("webhook server", "error", err)
				cancel()
			}
		})
	}

	b.Run(ctx)
	wg.Wait()

	log.Info("bot stopped")
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
