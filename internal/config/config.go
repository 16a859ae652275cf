// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"estate_bot/internal/model"
	"estate_bot/internal/storage"
)

// Storage backends.
const (
	BackendRedis  = storage.BackendRedis
	BackendSQLite = storage.BackendSQLite
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	StorageBackend   string
	RedisURL         string
	DatabasePath     string
	LogLevel         string

	SaleChannelID  int64
	LeaseChannelID int64
	LogsChannelID  int64

	EstatesAPIURL    string
	EstatesAPIToken  string
	PublishLimit     int
	PublishIdle      time.Duration
	PublishSendDelay time.Duration

	TrialPeriodDays   int
	AdminIDs          []int64
	DowngradeSchedule string

	WebhookAddr         string
	HeleketMerchantID   string
	HeleketAPIKey       string
	HeleketWebhookIP    string
	HeleketCallbackHost string
	BotLink             string

	Prices []model.Price
}

// DefaultPrices are the plans offered when no PRICES_FILE is configured.
var DefaultPrices = []model.Price{
	{Slug: "week", Title: "1 week", Cost: 50, AmountUSDT: "1.5", Days: 7},
	{Slug: "month", Title: "1 month", Cost: 150, AmountUSDT: "4.99", Days: 30},
	{Slug: "quarter", Title: "3 months", Cost: 350, AmountUSDT: "11.99", Days: 90},
}

type pricesFile struct {
	Prices []model.Price `yaml:"prices"`
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	cfg := &Config{
		TelegramBotToken:    token,
		StorageBackend:      getEnv("STORAGE_BACKEND", BackendRedis),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/1"),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/bot.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		EstatesAPIURL:       getEnv("ESTATES_API_URL", "http://127.0.0.1:9001"),
		EstatesAPIToken:     getEnv("ESTATES_API_TOKEN", "dev-token"),
		DowngradeSchedule:   getEnv("DOWNGRADE_SCHEDULE", "@daily"),
		WebhookAddr:         os.Getenv("WEBHOOK_ADDR"),
		HeleketMerchantID:   os.Getenv("HELEKET_MERCHANT_ID"),
		HeleketAPIKey:       os.Getenv("HELEKET_API_KEY"),
		HeleketWebhookIP:    os.Getenv("HELEKET_WEBHOOK_IP"),
		HeleketCallbackHost: os.Getenv("HELEKET_CALLBACK_HOST"),
		BotLink:             os.Getenv("BOT_LINK"),
		Prices:              DefaultPrices,
	}

	if cfg.StorageBackend != BackendRedis && cfg.StorageBackend != BackendSQLite {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want %s or %s", cfg.StorageBackend, BackendRedis, BackendSQLite)
	}

	var err error
	if cfg.SaleChannelID, err = getEnvInt64("PUBLISH_CHANNEL_SALE_ID", 0); err != nil {
		return nil, err
	}
	if cfg.LeaseChannelID, err = getEnvInt64("PUBLISH_CHANNEL_LEASE_ID", 0); err != nil {
		return nil, err
	}
	if cfg.LogsChannelID, err = getEnvInt64("LOGS_CHANNEL_ID", 0); err != nil {
		return nil, err
	}
	if cfg.PublishLimit, err = getEnvPositiveInt("PUBLISH_LIMIT", 1); err != nil {
		return nil, err
	}
	if cfg.TrialPeriodDays, err = getEnvPositiveInt("TRIAL_PERIOD_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.PublishIdle, err = getEnvDuration("PUBLISH_IDLE", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.PublishSendDelay, err = getEnvDuration("PUBLISH_SEND_DELAY", 3*time.Second); err != nil {
		return nil, err
	}

	if raw := os.Getenv("ADMIN_IDS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ADMIN_IDS: %w", s, err)
			}
			cfg.AdminIDs = append(cfg.AdminIDs, uid)
		}
	}

	if path := os.Getenv("PRICES_FILE"); path != "" {
		prices, err := LoadPrices(path)
		if err != nil {
			return nil, err
		}
		cfg.Prices = prices
	}

	return cfg, nil
}

// LoadPrices reads price plans from a YAML file with a top-level "prices" list.
func LoadPrices(path string) ([]model.Price, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided path
	if err != nil {
		return nil, fmt.Errorf("read prices file: %w", err)
	}

	var f pricesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prices file %s: %w", path, err)
	}
	if len(f.Prices) == 0 {
		return nil, fmt.Errorf("prices file %s has no prices", path)
	}

	seen := make(map[string]bool, len(f.Prices))
	for _, p := range f.Prices {
		switch {
		case p.Slug == "":
			return nil, fmt.Errorf("price without slug in %s", path)
		case seen[p.Slug]:
			return nil, fmt.Errorf("duplicate price slug %q in %s", p.Slug, path)
		case p.Cost <= 0 || p.Days <= 0:
			return nil, fmt.Errorf("price %q: cost and days must be positive", p.Slug)
		}
		seen[p.Slug] = true
	}
	return f.Prices, nil
}

// IsAdmin checks whether a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.AdminIDs, userID)
}

// Price returns the plan with the given slug.
func (c *Config) Price(slug string) (model.Price, bool) {
	for _, p := range c.Prices {
		if p.Slug == slug {
			return p, true
		}
	}
	return model.Price{}, false
}

// Channels maps each category to its publishing channel.
func (c *Config) Channels() map[model.Category]int64 {
	return map[model.Category]int64{
		model.CategorySale:  c.SaleChannelID,
		model.CategoryLease: c.LeaseChannelID,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvPositiveInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, val)
	}
	return i, nil
}

// getEnvDuration accepts Go durations ("1m30s") or a plain number of seconds.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a duration or seconds", key, val)
	}
	return d, nil
}
