package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"estate_bot/internal/model"
	"estate_bot/internal/render"
	"estate_bot/internal/storage"
)

const (
	trialKind     = "trial"
	starsCurrency = "XTR"
)

func (b *Bot) handleSubscription(ctx context.Context, chatID, userID int64) {
	lang := b.lang(ctx, userID)

	sub, err := b.store.GetSubscription(ctx, userID)
	if err != nil {
		b.log.Error("get subscription", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(lang, "error.try_later"))
		return
	}
	usedTrial, err := b.store.HasUsedTrial(ctx, userID, trialKind)
	if err != nil {
		b.log.Error("check trial", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(lang, "error.try_later"))
		return
	}

	var text strings.Builder
	if sub != nil && sub.IsActive(time.Now()) {
		fmt.Fprintf(&text, render.Text(lang, "subscription.active"), sub.ExpiredAt.Format(time.DateOnly))
	} else {
		text.WriteString(render.Text(lang, "subscription.inactive"))
	}
	text.WriteString("\n")
	for _, p := range b.cfg.Prices {
		fmt.Fprintf(&text, "\n%s: %d ⭐", p.Title, p.Cost)
		if p.AmountUSDT != "" {
			fmt.Fprintf(&text, " / %s USDT", p.AmountUSDT)
		}
		fmt.Fprintf(&text, " (/buy %s, /pay %s)", p.Slug, p.Slug)
	}

	b.replyWithMarkup(chatID, text.String(), b.pricesKeyboard(lang, !usedTrial))
}

func (b *Bot) pricesKeyboard(lang model.Language, withTrial bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if withTrial {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(render.Text(lang, "trial"), cbTrialActivate),
		))
	}
	for _, p := range b.cfg.Prices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s (%d ⭐)", p.Title, p.Cost), cbBuyPrefix+p.Slug),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleTrial(ctx context.Context, chatID, userID int64) {
	lang := b.lang(ctx, userID)

	used, err := b.store.HasUsedTrial(ctx, userID, trialKind)
	if err != nil {
		b.log.Error("check trial", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(lang, "error.try_later"))
		return
	}
	if used {
		b.log.Info("trial already used", "user_id", userID)
		b.reply(chatID, render.Text(lang, "trial.already_used"))
		return
	}

	sub, err := b.store.RenewSubscription(ctx, userID, b.cfg.TrialPeriodDays)
	if err != nil {
		b.log.Error("renew subscription", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(lang, "error.try_later"))
		return
	}
	if err := b.store.MarkUsedTrial(ctx, userID, trialKind); err != nil {
		b.log.Error("mark trial", "user_id", userID, "error", err)
	}

	b.log.Info("trial activated", "user_id", userID, "expired_at", sub.ExpiredAt.Format(time.DateOnly))
	b.reply(chatID, fmt.Sprintf(render.Text(lang, "payment.accepted"), sub.ExpiredAt.Format(time.DateOnly)))
	b.notifyLogs(fmt.Sprintf("trial activated: user_id=%d", userID))
}

// planFromArgs resolves the plan named in args, replying with usage or an error when it is unknown.
func (b *Bot) planFromArgs(ctx context.Context, chatID, userID int64, cmd, args string) (model.Price, bool) {
	lang := b.lang(ctx, userID)
	slug := strings.ToLower(strings.TrimSpace(args))
	if slug == "" {
		b.reply(chatID, fmt.Sprintf(render.Text(lang, "usage.buy"), cmd))
		return model.Price{}, false
	}
	p, ok := b.cfg.Price(slug)
	if !ok {
		b.reply(chatID, render.Text(lang, "plan.unknown"))
		return model.Price{}, false
	}
	return p, true
}

func (b *Bot) createInvoice(ctx context.Context, chatID, userID int64, p model.Price) (string, bool) {
	token, err := b.store.CreateInvoice(ctx, model.Invoice{UserID: userID, Price: p.Cost, Days: p.Days})
	if err != nil {
		b.log.Error("create invoice", "user_id", userID, "error", err)
		b.reply(chatID, render.Text(b.lang(ctx, userID), "error.try_later"))
		return "", false
	}
	b.log.Info("invoice created", "user_id", userID, "plan", p.Slug, "price", p.Cost, "days", p.Days)
	return token, true
}

func (b *Bot) handleBuy(ctx context.Context, chatID, userID int64, args string) {
	p, ok := b.planFromArgs(ctx, chatID, userID, cmdBuy, args)
	if !ok {
		return
	}
	token, ok := b.createInvoice(ctx, chatID, userID, p)
	if !ok {
		return
	}

	lang := b.lang(ctx, userID)
	inv := tgbotapi.NewInvoice(chatID, p.Title, render.Text(lang, "invoice.description"), token, "", "", starsCurrency,
		[]tgbotapi.LabeledPrice{{Label: p.Title, Amount: p.Cost}})
	inv.SuggestedTipAmounts = []int{}
	if _, err := b.api.Send(inv); err != nil {
		b.log.Error("send invoice", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handlePay(ctx context.Context, chatID, userID int64, args string) {
	p, ok := b.planFromArgs(ctx, chatID, userID, "pay", args)
	if !ok {
		return
	}
	lang := b.lang(ctx, userID)
	if b.payments == nil || p.AmountUSDT == "" {
		b.reply(chatID, render.Text(lang, "error.try_later"))
		return
	}
	token, ok := b.createInvoice(ctx, chatID, userID, p)
	if !ok {
		return
	}

	link := b.payments.CreatePayment(ctx, token, p.AmountUSDT)
	if link == "" {
		b.reply(chatID, render.Text(lang, "error.try_later"))
		return
	}
	b.reply(chatID, fmt.Sprintf(render.Text(lang, "payment.link"), p.Title, link))
}

func (b *Bot) handlePreCheckout(ctx context.Context, q *tgbotapi.PreCheckoutQuery) {
	b.log.Info("pre checkout", "user_id", q.From.ID, "amount", q.TotalAmount, "currency", q.Currency)
	lang := b.lang(ctx, q.From.ID)

	answer := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true}

	inv, err := b.store.GetInvoice(ctx, q.InvoicePayload)
	switch {
	case errors.Is(err, storage.ErrInvoiceNotFound):
		b.log.Warn("pre checkout: invoice not found", "user_id", q.From.ID)
		answer.OK, answer.ErrorMessage = false, render.Text(lang, "invoice.expired")
	case err != nil:
		b.log.Error("pre checkout: get invoice", "user_id", q.From.ID, "error", err)
		answer.OK, answer.ErrorMessage = false, render.Text(lang, "error.try_later")
	case inv.UserID != q.From.ID || inv.Price != q.TotalAmount:
		b.log.Warn("pre checkout: invoice mismatch", "user_id", q.From.ID, "invoice_user_id", inv.UserID, "invoice_price", inv.Price)
		answer.OK, answer.ErrorMessage = false, render.Text(lang, "invoice.invalid")
	}

	if _, err := b.api.Request(answer); err != nil {
		b.log.Error("answer pre checkout", "user_id", q.From.ID, "error", err)
	}
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) {
	payment := msg.SuccessfulPayment
	userID := msg.Chat.ID
	lang := b.lang(ctx, userID)
	b.log.Info("payment success", "user_id", userID, "amount", payment.TotalAmount, "currency", payment.Currency)

	inv, err := b.store.GetInvoice(ctx, payment.InvoicePayload)
	if errors.Is(err, storage.ErrInvoiceNotFound) {
		b.log.Error("payment for unknown invoice, refunding", "user_id", userID)
		b.refund(userID, payment.TelegramPaymentChargeID)
		return
	}
	if err != nil {
		b.log.Error("get invoice", "user_id", userID, "error", err)
		b.reply(msg.Chat.ID, render.Text(lang, "error.try_later"))
		return
	}

	if err := b.store.DeleteInvoice(ctx, payment.InvoicePayload); err != nil {
		b.log.Error("delete invoice", "user_id", userID, "error", err)
	}
	sub, err := b.store.RenewSubscription(ctx, userID, inv.Days)
	if err != nil {
		b.log.Error("renew subscription", "user_id", userID, "error", err)
		b.reply(msg.Chat.ID, render.Text(lang, "error.try_later"))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(render.Text(lang, "payment.accepted"), sub.ExpiredAt.Format(time.DateOnly)))
	b.notifyLogs(fmt.Sprintf("stars payment accepted: user_id=%d price=%d days=%d", userID, inv.Price, inv.Days))
}

func (b *Bot) refund(userID int64, chargeID string) {
	params := tgbotapi.Params{}
	params.AddNonZero64("user_id", userID)
	params["telegram_payment_charge_id"] = chargeID
	if _, err := b.api.MakeRequest("refundStarPayment", params); err != nil {
		b.log.Error("refund star payment", "user_id", userID, "error", err)
		return
	}
	b.notifyLogs(fmt.Sprintf("stars payment refunded: user_id=%d charge_id=%s", userID, chargeID))
}
