package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"estate_bot/internal/model"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "STORAGE_BACKEND", "REDIS_URL", "DATABASE_PATH", "LOG_LEVEL",
	"PUBLISH_CHANNEL_SALE_ID", "PUBLISH_CHANNEL_LEASE_ID", "LOGS_CHANNEL_ID",
	"ESTATES_API_URL", "ESTATES_API_TOKEN", "PUBLISH_LIMIT", "PUBLISH_IDLE", "PUBLISH_SEND_DELAY",
	"TRIAL_PERIOD_DAYS", "ADMIN_IDS", "DOWNGRADE_SCHEDULE", "WEBHOOK_ADDR",
	"HELEKET_MERCHANT_ID", "HELEKET_API_KEY", "HELEKET_WEBHOOK_IP", "HELEKET_CALLBACK_HOST",
	"BOT_LINK", "PRICES_FILE",
}

func defaults(token string) *Config {
	return &Config{
		TelegramBotToken:  token,
		StorageBackend:    BackendRedis,
		RedisURL:          "redis://localhost:6379/1",
		DatabasePath:      "./data/bot.db",
		LogLevel:          "info",
		EstatesAPIURL:     "http://127.0.0.1:9001",
		EstatesAPIToken:   "dev-token",
		PublishLimit:      1,
		PublishIdle:       5 * time.Second,
		PublishSendDelay:  3 * time.Second,
		TrialPeriodDays:   7,
		DowngradeSchedule: "@daily",
		Prices:            DefaultPrices,
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func() *Config
		wantErr bool
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "token only, defaults applied",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "test-token"},
			want: func() *Config { return defaults("test-token") },
		},
		{
			name: "all values set",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":       "tok",
				"STORAGE_BACKEND":          "sqlite",
				"REDIS_URL":                "redis://cache:6379/2",
				"DATABASE_PATH":            "/tmp/bot.db",
				"LOG_LEVEL":                "debug",
				"PUBLISH_CHANNEL_SALE_ID":  "-1002190184244",
				"PUBLISH_CHANNEL_LEASE_ID": "-1002199845067",
				"LOGS_CHANNEL_ID":          "-100300",
				"ESTATES_API_URL":          "https://estates.example.com",
				"ESTATES_API_TOKEN":        "api-token",
				"PUBLISH_LIMIT":            "20",
				"PUBLISH_IDLE":             "1m",
				"PUBLISH_SEND_DELAY":       "1.5",
				"TRIAL_PERIOD_DAYS":        "3",
				"ADMIN_IDS":                "111,222",
				"DOWNGRADE_SCHEDULE":       "0 9 * * *",
				"WEBHOOK_ADDR":             ":8080",
				"HELEKET_MERCHANT_ID":      "merchant",
				"HELEKET_API_KEY":          "key",
				"HELEKET_WEBHOOK_IP":       "31.133.220.8",
				"HELEKET_CALLBACK_HOST":    "https://bot.example.com",
				"BOT_LINK":                 "https://t.me/estate_bot",
				"PRICES_FILE":              "../../testdata/prices.yaml",
			},
			want: func() *Config {
				return &Config{
					TelegramBotToken:    "tok",
					StorageBackend:      BackendSQLite,
					RedisURL:            "redis://cache:6379/2",
					DatabasePath:        "/tmp/bot.db",
					LogLevel:            "debug",
					SaleChannelID:       -1002190184244,
					LeaseChannelID:      -1002199845067,
					LogsChannelID:       -100300,
					EstatesAPIURL:       "https://estates.example.com",
					EstatesAPIToken:     "api-token",
					PublishLimit:        20,
					PublishIdle:         time.Minute,
					PublishSendDelay:    1500 * time.Millisecond,
					TrialPeriodDays:     3,
					AdminIDs:            []int64{111, 222},
					DowngradeSchedule:   "0 9 * * *",
					WebhookAddr:         ":8080",
					HeleketMerchantID:   "merchant",
					HeleketAPIKey:       "key",
					HeleketWebhookIP:    "31.133.220.8",
					HeleketCallbackHost: "https://bot.example.com",
					BotLink:             "https://t.me/estate_bot",
					Prices: []model.Price{
						{Slug: "month", Title: "1 month", Cost: 150, AmountUSDT: "4.99", Days: 30},
						{Slug: "year", Title: "1 year", Cost: 1200, AmountUSDT: "39.99", Days: 365},
					},
				}
			},
		},
		{
			name: "admin ids with spaces",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"ADMIN_IDS":          " 10 , 20 , ",
			},
			want: func() *Config {
				c := defaults("tok")
				c.AdminIDs = []int64{10, 20}
				return c
			},
		},
		{
			name:    "invalid admin id",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "ADMIN_IDS": "123,abc"},
			wantErr: true,
		},
		{
			name:    "unknown storage backend",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "STORAGE_BACKEND": "postgres"},
			wantErr: true,
		},
		{
			name:    "invalid channel id",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "PUBLISH_CHANNEL_SALE_ID": "@channel"},
			wantErr: true,
		},
		{
			name:    "zero limit",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "PUBLISH_LIMIT": "0"},
			wantErr: true,
		},
		{
			name:    "invalid idle",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "PUBLISH_IDLE": "soon"},
			wantErr: true,
		},
		{
			name:    "missing prices file",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "PRICES_FILE": "../../testdata/nope.yaml"},
			wantErr: true,
		},
		{
			name:    "invalid prices file",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "PRICES_FILE": "../../testdata/prices_invalid.yaml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want(), got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		adminIDs []int64
		userID   int64
		want     bool
	}{
		{
			name:     "empty list allows nobody",
			adminIDs: nil,
			userID:   42,
			want:     false,
		},
		{
			name:     "user in list",
			adminIDs: []int64{10, 20, 30},
			userID:   20,
			want:     true,
		},
		{
			name:     "user not in list",
			adminIDs: []int64{10, 20, 30},
			userID:   99,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AdminIDs: tt.adminIDs}
			got := cfg.IsAdmin(tt.userID)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IsAdmin() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrice(t *testing.T) {
	cfg := &Config{Prices: DefaultPrices}

	got, ok := cfg.Price("month")
	if !ok {
		t.Fatal("month plan not found")
	}
	if diff := cmp.Diff(30, got.Days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}

	if _, ok := cfg.Price("lifetime"); ok {
		t.Error("unknown plan should not be found")
	}
}

func TestChannels(t *testing.T) {
	cfg := &Config{SaleChannelID: -1, LeaseChannelID: -2}
	want := map[model.Category]int64{model.CategorySale: -1, model.CategoryLease: -2}
	if diff := cmp.Diff(want, cfg.Channels()); diff != "" {
		t.Errorf("Channels() mismatch (-want +got):\n%s", diff)
	}
}
