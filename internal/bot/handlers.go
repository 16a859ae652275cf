package bot

import (
	"context"
	"fmt"
	"time"

	"estate_bot/internal/filter"
	"estate_bot/internal/model"
	"estate_bot/internal/render"
)

// exampleFetchLimit is how many recent listings are searched for an example match.
const exampleFetchLimit = 20

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	b.reply(chatID, render.Text(b.lang(ctx, userID), "welcome"))
}

func (b *Bot) handleHelp(ctx context.Context, chatID, userID int64) {
	b.reply(chatID, render.Text(b.lang(ctx, userID), "help"))
}

func (b *Bot) handleFilters(ctx context.Context, chatID, userID int64) {
	f, err := b.store.GetFilter(ctx, userID)
	if err != nil {
		b.log.Error("get filter", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(model.LangEN, "error.try_later"))
		return
	}
	b.reply(chatID, render.FilterSummary(f))
}

func (b *Bot) applyFilterUpdate(ctx context.Context, chatID, userID int64, upd model.FilterUpdate) (model.Filter, bool) {
	f, err := b.store.UpdateFilter(ctx, userID, upd)
	if err != nil {
		b.log.Error("update filter", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(b.lang(ctx, userID), "error.try_later"))
		return model.Filter{}, false
	}
	return f, true
}

func (b *Bot) updateFilter(ctx context.Context, chatID, userID int64, upd model.FilterUpdate) {
	f, ok := b.applyFilterUpdate(ctx, chatID, userID, upd)
	if !ok {
		return
	}
	b.reply(chatID, render.Text(f.Lang, "filters.updated")+"\n\n"+render.FilterSummary(f))
}

func (b *Bot) handleCategory(ctx context.Context, chatID, userID int64, args string) {
	upd, err := ParseCategoryArg(args)
	if err != nil {
		b.reply(chatID, render.Text(b.lang(ctx, userID), "usage.category"))
		return
	}
	b.updateFilter(ctx, chatID, userID, upd)
}

func (b *Bot) handleType(ctx context.Context, chatID, userID int64, args string) {
	upd, err := ParsePropertyTypeArg(args)
	if err != nil {
		b.reply(chatID, render.Text(b.lang(ctx, userID), "usage.type"))
		return
	}
	b.updateFilter(ctx, chatID, userID, upd)
}

func (b *Bot) handlePrice(ctx context.Context, chatID, userID int64, args string, isMax bool) {
	cmd := "minprice"
	if isMax {
		cmd = "maxprice"
	}

	amount, err := ParseAmountArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf(render.Text(b.lang(ctx, userID), "usage.price"), cmd))
		return
	}

	var upd model.FilterUpdate
	switch {
	case isMax && amount == nil:
		upd.ClearMaxPrice = true
	case isMax:
		upd.MaxPrice = amount
	case amount == nil:
		upd.ClearMinPrice = true
	default:
		upd.MinPrice = amount
	}
	b.updateFilter(ctx, chatID, userID, upd)
}

func (b *Bot) handleArea(ctx context.Context, chatID, userID int64, args string) {
	amount, err := ParseAmountArg(args)
	if err != nil {
		b.reply(chatID, render.Text(b.lang(ctx, userID), "usage.area"))
		return
	}

	var upd model.FilterUpdate
	if amount == nil {
		upd.ClearMinUsableArea = true
	} else {
		area := int(*amount)
		upd.MinUsableArea = &area
	}
	b.updateFilter(ctx, chatID, userID, upd)
}

func (b *Bot) handleLayouts(ctx context.Context, chatID, userID int64, args string) {
	layouts, err := ParseLayoutsArg(args)
	if err != nil {
		b.reply(chatID, render.Text(b.lang(ctx, userID), "usage.layouts"))
		return
	}
	upd := model.FilterUpdate{Layouts: layouts, ClearLayouts: layouts == nil}
	b.updateFilter(ctx, chatID, userID, upd)
}

func (b *Bot) handleDistricts(ctx context.Context, chatID, userID int64, args string) {
	districts, err := ParseDistrictsArg(args)
	if err != nil {
		b.reply(chatID, render.Text(b.lang(ctx, userID), "usage.districts"))
		return
	}
	upd := model.FilterUpdate{Districts: districts, ClearDistricts: districts == nil}
	b.updateFilter(ctx, chatID, userID, upd)
}

func (b *Bot) handleLang(ctx context.Context, chatID, userID int64, args string) {
	lang, err := ParseLanguageArg(args)
	if err != nil {
		b.reply(chatID, render.Text(b.lang(ctx, userID), "usage.lang"))
		return
	}
	b.updateFilter(ctx, chatID, userID, model.FilterUpdate{Lang: &lang})
}

func (b *Bot) handleNotify(ctx context.Context, chatID, userID int64, args string) {
	lang := b.lang(ctx, userID)
	enabled, err := ParseToggleArg(args)
	if err != nil {
		b.reply(chatID, render.Text(lang, "usage.notify"))
		return
	}

	if enabled {
		sub, err := b.store.GetSubscription(ctx, userID)
		if err != nil {
			b.log.Error("get subscription", "user_id", userID, "error", err)
			b.reply(chatID, render.Text(lang, "error.try_later"))
			return
		}
		if sub == nil || !sub.IsActive(time.Now()) {
			b.reply(chatID, render.Text(lang, "notify.subscribe_first"))
			return
		}
	}

	f, ok := b.applyFilterUpdate(ctx, chatID, userID, model.FilterUpdate{Enabled: &enabled})
	if !ok {
		return
	}
	if !enabled {
		b.reply(chatID, render.Text(f.Lang, "notify.disabled"))
		return
	}

	b.reply(chatID, fmt.Sprintf(render.Text(f.Lang, "notify.enabled"), render.FilterSummary(f)))
	b.sendExample(ctx, chatID, f)
}

// sendExample posts the most recent listing matching f, if any.
func (b *Bot) sendExample(ctx context.Context, chatID int64, f model.Filter) {
	if b.source == nil {
		return
	}

	categories := model.Categories
	if f.Category != nil {
		categories = []model.Category{*f.Category}
	}

	for _, category := range categories {
		matched := filter.Apply(f, b.source.Fetch(ctx, category, exampleFetchLimit))
		if len(matched) == 0 {
			continue
		}
		if err := b.SendListing(ctx, chatID, render.Listing(matched[0], f.Lang)); err != nil {
			b.log.Warn("send example listing", "chat_id", chatID, "listing_id", matched[0].ID, "error", err)
			return
		}
		b.reply(chatID, render.Text(f.Lang, "estates.example"))
		return
	}
}

func (b *Bot) handleAdmin(ctx context.Context, chatID int64) {
	active, err := b.store.ListActiveSubscriptions(ctx)
	if err != nil {
		b.log.Error("list active subscriptions", "error", err)
		b.reply(chatID, render.Text(model.LangEN, "error.try_later"))
		return
	}
	indexed, err := b.store.ListIndexedSubscriptions(ctx)
	if err != nil {
		b.log.Error("list indexed subscriptions", "error", err)
		b.reply(chatID, render.Text(model.LangEN, "error.try_later"))
		return
	}
	b.reply(chatID, fmt.Sprintf(render.Text(model.LangEN, "admin.info"), len(active), len(indexed)))
}
