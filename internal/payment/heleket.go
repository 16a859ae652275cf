// Package payment creates crypto payment links through the Heleket API.
package payment

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // signature scheme mandated by the provider
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Endpoint is the Heleket payment creation URL.
const Endpoint = "https://api.heleket.com/v1/payment"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds merchant credentials and redirect targets.
type Config struct {
	MerchantID   string
	APIKey       string
	CallbackHost string // webhook host, "/webhook" is appended
	BotLink      string // where the user returns after paying
}

type paymentRequest struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	OrderID           string `json:"order_id"`
	IsPaymentMultiple bool   `json:"is_payment_multiple"`
	URLCallback       string `json:"url_callback"`
	URLReturn         string `json:"url_return"`
	URLSuccess        string `json:"url_success"`
}

type paymentResponse struct {
	Result *struct {
		UUID string `json:"uuid"`
		URL  string `json:"url"`
	} `json:"result"`
}

// Heleket is the payment provider client.
type Heleket struct {
	client   HTTPClient
	cfg      Config
	endpoint string
	log      *slog.Logger
}

// New creates a Heleket client.
func New(client HTTPClient, cfg Config, log *slog.Logger) *Heleket {
	return &Heleket{client: client, cfg: cfg, endpoint: Endpoint, log: log}
}

// CreatePayment registers a USDT payment for orderID and returns the URL the
// user pays at. Any failure is logged and yields an empty URL.
func (h *Heleket) CreatePayment(ctx context.Context, orderID, amountUSDT string) string {
	u, err := h.createPayment(ctx, orderID, amountUSDT)
	if err != nil {
		h.log.Warn("heleket create payment", "order_id", orderID, "error", err)
		return ""
	}
	h.log.Info("heleket payment created", "order_id", orderID, "amount", amountUSDT)
	return u
}

func (h *Heleket) createPayment(ctx context.Context, orderID, amountUSDT string) (string, error) {
	body, err := json.Marshal(paymentRequest{
		Amount:            amountUSDT,
		Currency:          "USDT",
		OrderID:           orderID,
		IsPaymentMultiple: false,
		URLCallback:       strings.TrimRight(h.cfg.CallbackHost, "/") + "/webhook",
		URLReturn:         h.cfg.BotLink,
		URLSuccess:        h.cfg.BotLink,
	})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", h.cfg.MerchantID)
	req.Header.Set("sign", Sign(body, h.cfg.APIKey))

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var parsed paymentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Result == nil || parsed.Result.URL == "" {
		return "", fmt.Errorf("no payment url in response (status %d): %s", resp.StatusCode, raw)
	}
	return parsed.Result.URL, nil
}

// Sign computes the request signature: md5 of the base64 payload followed by the API key.
func Sign(payload []byte, apiKey string) string {
	encoded := base64.StdEncoding.EncodeToString(payload)
	sum := md5.Sum([]byte(encoded + apiKey)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}
