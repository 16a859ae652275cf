package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"estate_bot/internal/config"
	"estate_bot/internal/model"
	"estate_bot/internal/publisher"
	"estate_bot/internal/render"
	"estate_bot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// ListingSource returns the latest listings of a category.
type ListingSource interface {
	Fetch(ctx context.Context, category model.Category, limit int) []model.Listing
}

// PaymentProvider creates external payment links.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, orderID, amountUSDT string) string
}

// Bot is the Telegram bot that handles user commands and sends notifications.
type Bot struct {
	api      telegramAPI
	store    storage.Storage
	cfg      *config.Config
	source   ListingSource
	payments PaymentProvider
	log      *slog.Logger
}

// New creates a Bot with the given Telegram token, storage, and config.
// source and payments may be nil: example listings and crypto payments are then unavailable.
func New(token string, store storage.Storage, cfg *config.Config, source ListingSource, payments PaymentProvider, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:      api,
		store:    store,
		cfg:      cfg,
		source:   source,
		payments: payments,
		log:      log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		b.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
	case update.Message.SuccessfulPayment != nil:
		b.handleSuccessfulPayment(ctx, update.Message)
	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

// SendText sends a plain text message to the given chat.
func (b *Bot) SendText(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return classifySendError(err)
	}
	return nil
}

// SendListing posts a rendered listing as a photo with a link button.
// Listings without a photo are sent as a text message.
func (b *Bot) SendListing(_ context.Context, chatID int64, post render.Post) error {
	var markup any
	if post.LinkURL != "" {
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(post.ButtonText, post.LinkURL),
			),
		)
	}

	var c tgbotapi.Chattable
	if post.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(post.PhotoURL))
		photo.Caption = post.Caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = markup
		c = photo
	} else {
		msg := tgbotapi.NewMessage(chatID, post.Caption)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		msg.ReplyMarkup = markup
		c = msg
	}

	if _, err := b.api.Send(c); err != nil {
		return classifySendError(err)
	}
	return nil
}

// classifySendError maps Telegram errors about gone or blocking recipients
// to the publisher sentinels.
func classifySendError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "chat not found"):
		return fmt.Errorf("%w: %w", publisher.ErrRecipientUnreachable, err)
	case strings.Contains(msg, "bot was blocked by the user"):
		return fmt.Errorf("%w: %w", publisher.ErrRecipientBlocked, err)
	}
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	b.replyWithMarkup(chatID, text, nil)
}

func (b *Bot) replyWithMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

// lang returns the user's language, defaulting to English on storage errors.
func (b *Bot) lang(ctx context.Context, userID int64) model.Language {
	f, err := b.store.GetFilter(ctx, userID)
	if err != nil {
		b.log.Error("get filter", "user_id", userID, "error", err)
		return model.LangEN
	}
	return f.Lang
}

func (b *Bot) notifyLogs(text string) {
	if b.cfg.LogsChannelID == 0 {
		return
	}
	b.reply(b.cfg.LogsChannelID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID, "user_id", userID)

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID, userID)
	case "help":
		b.handleHelp(ctx, chatID, userID)
	case cmdFilters:
		b.handleFilters(ctx, chatID, userID)
	case "category":
		b.handleCategory(ctx, chatID, userID, args)
	case "type":
		b.handleType(ctx, chatID, userID, args)
	case "minprice":
		b.handlePrice(ctx, chatID, userID, args, false)
	case "maxprice":
		b.handlePrice(ctx, chatID, userID, args, true)
	case "minarea":
		b.handleArea(ctx, chatID, userID, args)
	case "layouts":
		b.handleLayouts(ctx, chatID, userID, args)
	case "districts":
		b.handleDistricts(ctx, chatID, userID, args)
	case "notify":
		b.handleNotify(ctx, chatID, userID, args)
	case "lang":
		b.handleLang(ctx, chatID, userID, args)
	case "subscription":
		b.handleSubscription(ctx, chatID, userID)
	case cmdTrial:
		b.handleTrial(ctx, chatID, userID)
	case cmdBuy:
		b.handleBuy(ctx, chatID, userID, args)
	case "pay":
		b.handlePay(ctx, chatID, userID, args)
	case "admin":
		if !b.cfg.IsAdmin(userID) {
			b.reply(chatID, render.Text(b.lang(ctx, userID), "unknown_command"))
			return
		}
		b.handleAdmin(ctx, chatID)
	default:
		b.reply(chatID, render.Text(b.lang(ctx, userID), "unknown_command"))
	}
}
