package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

const (
	// DefaultBaseURL is the Lost Ark developer API host.
	DefaultBaseURL = "https://developer-lostark.game.onstove.com"

	itemsSearchPath = "/markets/items"
	requestTimeout  = 30 * time.Second

	// The upstream API is rate-sensitive; one request per interval keeps a
	// sequential sweep well under its quota.
	rateLimitInterval = 250 * time.Millisecond
)

// ClientConfig carries the explicit configuration for a Client. Built once at
// process start and passed in; there is no ambient global credential.
type ClientConfig struct {
	BaseURL string // defaults to DefaultBaseURL
	APIKey  string // raw key or a full "Bearer ..." value
	Timeout time.Duration
}

// Client is an authenticated, rate-limited HTTP client for the market API.
// It performs exactly one outbound call per FetchPage and never retries.
type Client struct {
	baseURL       string
	authorization string
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
}

// NewClient creates a market API client from cfg. The configured key is sent
// as a bearer token; a key that already carries the scheme prefix is passed
// through unchanged.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}

	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		authorization: normalizeAuthorization(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitInterval), 1),
	}
}

// FetchPage implements domain.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, payload domain.RequestPayload) (*domain.SearchPage, error) {
	if c.authorization == "" {
		return nil, &domain.AuthError{Reason: "no API key configured"}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+itemsSearchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create page request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", c.authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &domain.AuthError{Reason: fmt.Sprintf("credential rejected with status %d", resp.StatusCode)}
		}
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var page domain.SearchPage
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}

	return &page, nil
}

// normalizeAuthorization prepends the bearer scheme unless the key already
// carries it.
func normalizeAuthorization(key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "Bearer ") || strings.HasPrefix(key, "bearer ") {
		return key
	}
	return "Bearer " + key
}
