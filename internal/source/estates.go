// Package source fetches estate listings from the estates API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"estate_bot/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type estatesResponse struct {
	Estates []model.Listing `json:"estates"`
}

// EstatesAPI is the client of the estates API.
type EstatesAPI struct {
	client  HTTPClient
	baseURL string
	token   string
	log     *slog.Logger
}

// New creates an EstatesAPI client for baseURL authenticated with token.
func New(client HTTPClient, baseURL, token string, log *slog.Logger) *EstatesAPI {
	return &EstatesAPI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		log:     log,
	}
}

// Fetch returns up to limit listings of the category, newest first.
// Failures are logged and yield an empty result.
func (a *EstatesAPI) Fetch(ctx context.Context, category model.Category, limit int) []model.Listing {
	listings, err := a.fetch(ctx, category, limit)
	if err != nil {
		a.log.Warn("fetch estates", "category", category, "limit", limit, "error", err)
		return []model.Listing{}
	}
	return listings
}

func (a *EstatesAPI) fetch(ctx context.Context, category model.Category, limit int) ([]model.Listing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s/estates/%s?%s", a.baseURL, url.PathEscape(string(category)), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("auth-token", a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var parsed estatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode estates: %w", err)
	}
	if parsed.Estates == nil {
		return nil, fmt.Errorf("response has no estates field")
	}

	for i := range parsed.Estates {
		if parsed.Estates[i].PropertyType == "" {
			parsed.Estates[i].PropertyType = model.PropertyFlat
		}
	}
	return parsed.Estates, nil
}
