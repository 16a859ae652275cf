// Package downgrade reminds subscribers about expiring access and stops expired subscriptions.
package downgrade

import (
	"context"
	"log/slog"
	"time"

	"estate_bot/internal/model"
	"estate_bot/internal/render"
)

// Store is the subset of storage the job needs.
type Store interface {
	ListIndexedSubscriptions(ctx context.Context) ([]model.Subscription, error)
	StopSubscription(ctx context.Context, userID int64) error
	GetFilter(ctx context.Context, userID int64) (model.Filter, error)
}

// Notifier sends a plain text message to a chat.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Job scans the active-subscriber index.
type Job struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Job.
func New(store Store, notifier Notifier, log *slog.Logger) *Job {
	return &Job{store: store, notifier: notifier, log: log, now: time.Now}
}

// SetClock overrides the time source.
func (j *Job) SetClock(now func() time.Time) {
	j.now = now
}

// Run reminds expiring-soon subscribers and stops subscriptions that are no
// longer active. It returns the counters "expired soon" and "downgraded".
func (j *Job) Run(ctx context.Context) map[string]int {
	j.log.Info("downgrade start")
	counters := map[string]int{"expired soon": 0, "downgraded": 0}

	subs, err := j.store.ListIndexedSubscriptions(ctx)
	if err != nil {
		j.log.Error("list indexed subscriptions", "error", err)
		return counters
	}

	now := j.now()
	for _, sub := range subs {
		if !sub.IsExpiringSoon(now) {
			continue
		}
		counters["expired soon"]++
		j.log.Info("subscription expires soon", "user_id", sub.UserID, "expired_at", sub.ExpiredAt.Format(time.DateOnly))
		j.notify(ctx, sub, "subscription.expiring")
	}

	for _, sub := range subs {
		if sub.IsActive(now) {
			continue
		}
		if err := j.store.StopSubscription(ctx, sub.UserID); err != nil {
			j.log.Error("stop subscription", "user_id", sub.UserID, "error", err)
			continue
		}
		counters["downgraded"]++
		j.log.Info("subscription downgraded", "user_id", sub.UserID, "expired_at", sub.ExpiredAt.Format(time.DateOnly))
		j.notify(ctx, sub, "subscription.downgraded")
	}

	j.log.Info("downgrade end", "counters", counters)
	return counters
}

func (j *Job) notify(ctx context.Context, sub model.Subscription, key string) {
	lang := model.LangEN
	if f, err := j.store.GetFilter(ctx, sub.UserID); err == nil {
		lang = f.Lang
	}
	if err := j.notifier.SendText(ctx, sub.ChatID, render.Text(lang, key)); err != nil {
		j.log.Warn("send downgrade notice", "user_id", sub.UserID, "chat_id", sub.ChatID, "error", err)
	}
}
