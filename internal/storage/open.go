package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"estate_bot/internal/kv"
)

// Backend names accepted by Open.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Open connects to the named backend: redisURL is used for redis and
// dbPath for sqlite, whose parent directory is created when missing.
func Open(ctx context.Context, backend, redisURL, dbPath string) (*Store, error) {
	switch backend {
	case BackendRedis:
		r, err := kv.NewRedis(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		return New(r), nil
	case BackendSQLite:
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create data directory %s: %w", dir, err)
			}
		}
		s, err := kv.NewSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		return New(s), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
