package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cmdFilters = "filters"
	cmdTrial   = "trial"
	cmdBuy     = "buy"

	cbTrialActivate = "trial:activate"
	cbBuyPrefix     = "buy:"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := userID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}

	// answerCallbackQuery returns a bool, so Send would fail to decode it.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	b.log.Info("callback",
		"data", cb.Data,
		"chat_id", chatID,
		"user_id", userID,
		"username", cb.From.UserName,
	)

	switch {
	case cb.Data == cbTrialActivate:
		b.handleTrial(ctx, chatID, userID)
	case strings.HasPrefix(cb.Data, cbBuyPrefix):
		b.handleBuy(ctx, chatID, userID, strings.TrimPrefix(cb.Data, cbBuyPrefix))
	case cb.Data == cmdFilters:
		b.handleFilters(ctx, chatID, userID)
	}
}
