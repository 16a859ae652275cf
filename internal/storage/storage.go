// Package storage implements the domain stores on top of a key-value backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_bot/internal/kv"
	"estate_bot/internal/model"
)

const keyPrefix = "estate-bot"

// ErrInvoiceNotFound is returned when an invoice is missing, expired or already redeemed.
var ErrInvoiceNotFound = errors.New("invoice not found")

// Storage is the interface for all persistence operations.
type Storage interface {
	IsNew(ctx context.Context, listingID int64) (bool, error)
	MarkDelivered(ctx context.Context, listingIDs []int64) (int, error)

	GetFilter(ctx context.Context, userID int64) (model.Filter, error)
	UpdateFilter(ctx context.Context, userID int64, upd model.FilterUpdate) (model.Filter, error)

	GetSubscription(ctx context.Context, userID int64) (*model.Subscription, error)
	RenewSubscription(ctx context.Context, userID int64, days int) (model.Subscription, error)
	StopSubscription(ctx context.Context, userID int64) error
	ListActiveSubscriptions(ctx context.Context) ([]model.Subscription, error)
	ListIndexedSubscriptions(ctx context.Context) ([]model.Subscription, error)

	CreateInvoice(ctx context.Context, inv model.Invoice) (string, error)
	GetInvoice(ctx context.Context, token string) (model.Invoice, error)
	DeleteInvoice(ctx context.Context, token string) error

	HasUsedTrial(ctx context.Context, userID int64, kind string) (bool, error)
	MarkUsedTrial(ctx context.Context, userID int64, kind string) error

	Close() error
}

// Store implements Storage. Every call reads through to the backend; nothing is cached.
type Store struct {
	kv  kv.KV
	now func() time.Time
}

var _ Storage = (*Store)(nil)

// New creates a Store over the given backend.
func New(backend kv.KV) *Store {
	return &Store{kv: backend, now: time.Now}
}

// SetClock overrides the time source used for subscription arithmetic.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

func key(parts ...any) string {
	k := keyPrefix
	for _, p := range parts {
		k += fmt.Sprintf(":%v", p)
	}
	return k
}
