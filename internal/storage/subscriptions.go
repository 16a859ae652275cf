package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"estate_bot/internal/kv"
	"estate_bot/internal/model"
)

const dateLayout = "2006-01-02"

type subscriptionRecord struct {
	ChatID    int64  `json:"chat_id"`
	ExpiredAt string `json:"expired_at"`
}

// GetSubscription returns the user's subscription, or nil if the user never subscribed.
func (s *Store) GetSubscription(ctx context.Context, userID int64) (*model.Subscription, error) {
	raw, err := s.kv.Get(ctx, key("subs", userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	var rec subscriptionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode subscription %d: %w", userID, err)
	}
	exp, err := time.Parse(dateLayout, rec.ExpiredAt)
	if err != nil {
		return nil, fmt.Errorf("parse expiry %q: %w", rec.ExpiredAt, err)
	}
	return &model.Subscription{UserID: userID, ChatID: rec.ChatID, ExpiredAt: exp}, nil
}

// RenewSubscription extends an active subscription by days, or starts a new
// window of days from today when none exists or the previous one expired.
// The user is indexed as active and their notifications are switched on.
func (s *Store) RenewSubscription(ctx context.Context, userID int64, days int) (model.Subscription, error) {
	today := model.Date(s.now())

	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return model.Subscription{}, err
	}

	var expiredAt time.Time
	switch {
	case sub == nil:
		expiredAt = today.AddDate(0, 0, days)
	case sub.IsActive(today):
		expiredAt = sub.ExpiredAt.AddDate(0, 0, days)
	default:
		expiredAt = today.AddDate(0, 0, days)
	}

	renewed := model.Subscription{UserID: userID, ChatID: userID, ExpiredAt: expiredAt}
	if err := s.saveSubscription(ctx, renewed); err != nil {
		return model.Subscription{}, err
	}
	if err := s.kv.SetAdd(ctx, key("subs", "active"), strconv.FormatInt(userID, 10)); err != nil {
		return model.Subscription{}, fmt.Errorf("index subscription: %w", err)
	}

	enabled := true
	if _, err := s.UpdateFilter(ctx, userID, model.FilterUpdate{Enabled: &enabled}); err != nil {
		return model.Subscription{}, fmt.Errorf("enable notifications: %w", err)
	}
	return renewed, nil
}

// StopSubscription expires the subscription as of yesterday and drops it from
// the active index. The user's filter is left untouched.
func (s *Store) StopSubscription(ctx context.Context, userID int64) error {
	yesterday := model.Date(s.now()).AddDate(0, 0, -1)
	sub := model.Subscription{UserID: userID, ChatID: userID, ExpiredAt: yesterday}
	if err := s.saveSubscription(ctx, sub); err != nil {
		return err
	}
	if err := s.kv.SetRemove(ctx, key("subs", "active"), strconv.FormatInt(userID, 10)); err != nil {
		return fmt.Errorf("unindex subscription: %w", err)
	}
	return nil
}

// ListActiveSubscriptions returns indexed subscriptions that are still active.
// Index entries whose subscription lapsed are skipped, not pruned.
func (s *Store) ListActiveSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	indexed, err := s.ListIndexedSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var active []model.Subscription
	for _, sub := range indexed {
		if sub.IsActive(now) {
			active = append(active, sub)
		}
	}
	return active, nil
}

// ListIndexedSubscriptions returns every subscription in the active index,
// ordered by user id, whether or not it has lapsed.
func (s *Store) ListIndexedSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	members, err := s.kv.SetMembers(ctx, key("subs", "active"))
	if err != nil {
		return nil, fmt.Errorf("list subscription index: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	subs := make([]model.Subscription, 0, len(ids))
	for _, id := range ids {
		sub, err := s.GetSubscription(ctx, id)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			continue
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}

func (s *Store) saveSubscription(ctx context.Context, sub model.Subscription) error {
	raw, err := json.Marshal(subscriptionRecord{
		ChatID:    sub.ChatID,
		ExpiredAt: sub.ExpiredAt.Format(dateLayout),
	})
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}
	if err := s.kv.Set(ctx, key("subs", sub.UserID), string(raw), 0); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}
