package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"estate_bot/migrations"
)

// SQLite implements KV backed by a SQLite database.
// Expired keys are invisible to reads and purged on writes.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// SetClock overrides the time source used for expiry checks.
func (s *SQLite) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the value stored at key.
func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value at key with an optional ttl.
func (s *SQLite) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	var expiresAt *int64
	if ttl > 0 {
		v := now.Add(ttl).UnixMilli()
		expiresAt = &v
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.UnixMilli(),
	); err != nil {
		return fmt.Errorf("purge expired: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a non-expired value is stored at key.
func (s *SQLite) Exists(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kv WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().UnixMilli(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return count > 0, nil
}

// SetAdd adds members to the set at key.
func (s *SQLite) SetAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range members {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO kv_sets (key, member) VALUES (?, ?)`, key, m,
		); err != nil {
			return fmt.Errorf("sadd %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// SetRemove removes members from the set at key.
func (s *SQLite) SetRemove(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range members {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM kv_sets WHERE key = ? AND member = ?`, key, m,
		); err != nil {
			return fmt.Errorf("srem %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// SetMembers returns all members of the set at key.
func (s *SQLite) SetMembers(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member FROM kv_sets WHERE key = ? ORDER BY rowid`, key,
	)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
