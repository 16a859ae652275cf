// Package publisher fans new estate listings out to channels and subscribers.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"estate_bot/internal/filter"
	"estate_bot/internal/model"
	"estate_bot/internal/render"
)

// Delivery failures that permanently disable a subscriber's notifications.
var (
	ErrRecipientUnreachable = errors.New("recipient unreachable")
	ErrRecipientBlocked     = errors.New("recipient blocked the bot")
)

// Source returns the latest listings of a category, newest first.
type Source interface {
	Fetch(ctx context.Context, category model.Category, limit int) []model.Listing
}

// Store is the subset of storage the publisher needs.
type Store interface {
	IsNew(ctx context.Context, listingID int64) (bool, error)
	MarkDelivered(ctx context.Context, listingIDs []int64) (int, error)
	ListActiveSubscriptions(ctx context.Context) ([]model.Subscription, error)
	GetFilter(ctx context.Context, userID int64) (model.Filter, error)
	UpdateFilter(ctx context.Context, userID int64, upd model.FilterUpdate) (model.Filter, error)
}

// Sink delivers a rendered listing to a chat.
type Sink interface {
	SendListing(ctx context.Context, chatID int64, post render.Post) error
}

// Publisher runs fan-out cycles.
type Publisher struct {
	source    Source
	store     Store
	sink      Sink
	channels  map[model.Category]int64
	log       *slog.Logger
	sendDelay time.Duration
	idle      time.Duration
	sleep     func(time.Duration)
}

// New creates a Publisher broadcasting each category to its channel in channels.
// A category without a channel is only delivered to subscribers.
func New(source Source, store Store, sink Sink, channels map[model.Category]int64, log *slog.Logger) *Publisher {
	return &Publisher{
		source:    source,
		store:     store,
		sink:      sink,
		channels:  channels,
		log:       log,
		sendDelay: 3 * time.Second,
		idle:      5 * time.Second,
		sleep:     time.Sleep,
	}
}

// SetSendDelay overrides the default 3-second pause between channel posts.
func (p *Publisher) SetSendDelay(d time.Duration) {
	p.sendDelay = d
}

// SetIdle overrides the default 5-second pause between cycles in Loop.
func (p *Publisher) SetIdle(d time.Duration) {
	p.idle = d
}

// Loop runs cycles until ctx is cancelled. Cancellation is observed between
// cycles only; a started cycle always completes.
func (p *Publisher) Loop(ctx context.Context, limit int) {
	for {
		p.Run(context.WithoutCancel(ctx), limit)

		select {
		case <-ctx.Done():
			p.log.Info("publisher stopped")
			return
		case <-time.After(p.idle):
		}
	}
}

// Run executes one fan-out cycle over every category and returns its counters.
func (p *Publisher) Run(ctx context.Context, limit int) map[string]int {
	p.log.Info("publisher cycle start", "limit", limit)
	counters := make(map[string]int)

	subs, err := p.store.ListActiveSubscriptions(ctx)
	if err != nil {
		p.log.Error("list active subscriptions", "error", err)
		subs = nil
	}
	p.log.Debug("active subscriptions", "count", len(subs))

	for _, category := range model.Categories {
		p.publishCategory(ctx, category, limit, subs, counters)
	}

	p.log.Info("publisher cycle end", "counters", counters)
	return counters
}

func (p *Publisher) publishCategory(ctx context.Context, category model.Category, limit int, subs []model.Subscription, counters map[string]int) {
	listings := p.source.Fetch(ctx, category, limit)
	counters[string(category)+" total"] = len(listings)

	fresh := p.newOnly(ctx, listings)
	counters[string(category)+" new"] = len(fresh)
	p.log.Info("new listings", "category", category, "total", len(listings), "new", len(fresh))

	if len(fresh) == 0 {
		counters[string(category)+" subs notifications"] = 0
		counters[string(category)+" channel notifications"] = 0
		return
	}

	ids := make([]int64, 0, len(fresh))
	for _, l := range fresh {
		ids = append(ids, l.ID)
	}
	if _, err := p.store.MarkDelivered(ctx, ids); err != nil {
		p.log.Error("mark delivered", "category", category, "error", err)
	}

	counters[string(category)+" subs notifications"] = p.notifySubscribers(ctx, fresh, subs)
	counters[string(category)+" channel notifications"] = p.broadcast(ctx, category, fresh)
}

// newOnly keeps listings that were never delivered and reverses them into
// oldest-first order.
func (p *Publisher) newOnly(ctx context.Context, listings []model.Listing) []model.Listing {
	fresh := make([]model.Listing, 0, len(listings))
	for i := len(listings) - 1; i >= 0; i-- {
		l := listings[i]
		isNew, err := p.store.IsNew(ctx, l.ID)
		if err != nil {
			p.log.Error("check listing", "listing_id", l.ID, "error", err)
			continue
		}
		if isNew {
			fresh = append(fresh, l)
		}
	}
	return fresh
}

func (p *Publisher) notifySubscribers(ctx context.Context, listings []model.Listing, subs []model.Subscription) int {
	if len(subs) == 0 {
		return 0
	}

	sent := 0
	for _, l := range listings {
		for _, sub := range subs {
			f, err := p.store.GetFilter(ctx, sub.UserID)
			if err != nil {
				p.log.Error("get filter", "user_id", sub.UserID, "error", err)
				continue
			}
			if !f.Enabled || !filter.Match(f, l) {
				continue
			}

			p.log.Debug("notify subscriber", "user_id", sub.UserID, "listing_id", l.ID)
			if p.deliver(ctx, sub, f, l) {
				sent++
			}
		}
	}
	return sent
}

func (p *Publisher) deliver(ctx context.Context, sub model.Subscription, f model.Filter, l model.Listing) bool {
	err := p.sink.SendListing(ctx, sub.ChatID, render.Listing(l, f.Lang))
	if err == nil {
		return true
	}

	if errors.Is(err, ErrRecipientUnreachable) || errors.Is(err, ErrRecipientBlocked) {
		p.log.Warn("disable notifications", "user_id", sub.UserID, "chat_id", sub.ChatID, "error", err)
		disabled := false
		if _, err := p.store.UpdateFilter(ctx, sub.UserID, model.FilterUpdate{Enabled: &disabled}); err != nil {
			p.log.Error("disable filter", "user_id", sub.UserID, "error", err)
		}
		return false
	}

	p.log.Warn("notify subscriber", "user_id", sub.UserID, "listing_id", l.ID, "error", err)
	return false
}

func (p *Publisher) broadcast(ctx context.Context, category model.Category, listings []model.Listing) int {
	channel := p.channels[category]
	if channel == 0 {
		p.log.Debug("no channel configured", "category", category)
		return 0
	}

	sent := 0
	for _, l := range listings {
		if err := p.sink.SendListing(ctx, channel, render.Listing(l, model.LangEN)); err != nil {
			p.log.Warn("post to channel", "category", category, "chat_id", channel, "listing_id", l.ID, "error", err)
		} else {
			sent++
		}
		p.sleep(p.sendDelay)
	}
	return sent
}
