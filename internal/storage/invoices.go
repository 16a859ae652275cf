package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"estate_bot/internal/kv"
	"estate_bot/internal/model"
)

// InvoiceTTL bounds how long a started purchase can be completed.
const InvoiceTTL = time.Hour

// CreateInvoice stores a short-lived invoice and returns its opaque token.
func (s *Store) CreateInvoice(ctx context.Context, inv model.Invoice) (string, error) {
	token := uuid.NewString()
	raw, err := json.Marshal(inv)
	if err != nil {
		return "", fmt.Errorf("encode invoice: %w", err)
	}
	if err := s.kv.Set(ctx, key("invoice", token), string(raw), InvoiceTTL); err != nil {
		return "", fmt.Errorf("save invoice: %w", err)
	}
	return token, nil
}

// GetInvoice returns the invoice for token or ErrInvoiceNotFound.
func (s *Store) GetInvoice(ctx context.Context, token string) (model.Invoice, error) {
	raw, err := s.kv.Get(ctx, key("invoice", token))
	if errors.Is(err, kv.ErrNotFound) {
		return model.Invoice{}, ErrInvoiceNotFound
	}
	if err != nil {
		return model.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	var inv model.Invoice
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		return model.Invoice{}, fmt.Errorf("decode invoice: %w", err)
	}
	return inv, nil
}

// DeleteInvoice removes the invoice so it cannot be redeemed twice.
func (s *Store) DeleteInvoice(ctx context.Context, token string) error {
	if err := s.kv.Delete(ctx, key("invoice", token)); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// HasUsedTrial reports whether the user already redeemed the given trial kind.
func (s *Store) HasUsedTrial(ctx context.Context, userID int64, kind string) (bool, error) {
	ok, err := s.kv.Exists(ctx, key("trial", kind, userID))
	if err != nil {
		return false, fmt.Errorf("check trial: %w", err)
	}
	return ok, nil
}

// MarkUsedTrial records that the user redeemed the given trial kind.
func (s *Store) MarkUsedTrial(ctx context.Context, userID int64, kind string) error {
	if err := s.kv.Set(ctx, key("trial", kind, userID), "1", 0); err != nil {
		return fmt.Errorf("mark trial: %w", err)
	}
	return nil
}
