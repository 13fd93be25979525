package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"roboquant/pkg/types"
)

// Snapshotter decodes a REST bootstrap response body into the initial
// set of PriceItems observed as of snapshotTime. A concrete vendor
// integration implements this against its own JSON schema; the feed
// itself is schema-agnostic.
type Snapshotter interface {
	DecodeSnapshot(body []byte) (snapshotTime time.Time, items []types.PriceItem, err error)
}

// BootstrapClient fetches the initial snapshot over REST before a
// WebSocket stream takes over. Adapted from the teacher's
// internal/exchange/client.go: a resty client with base URL, timeout,
// 5xx retry, and a token-bucket rate limit guarding the call.
type BootstrapClient struct {
	http   *resty.Client
	rl     *TokenBucket
	logger *slog.Logger
}

// NewBootstrapClient builds a REST client against baseURL.
func NewBootstrapClient(baseURL string, logger *slog.Logger) *BootstrapClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	return &BootstrapClient{
		http:   httpClient,
		rl:     NewTokenBucket(5, 1), // a handful of bootstrap calls, then the WS stream takes over
		logger: logger,
	}
}

// Fetch retrieves and decodes the bootstrap snapshot from path.
func (c *BootstrapClient) Fetch(ctx context.Context, path string, dec Snapshotter) (time.Time, []types.PriceItem, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return time.Time{}, nil, err
	}

	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("live: bootstrap fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return time.Time{}, nil, fmt.Errorf("live: bootstrap fetch %s: status %d", path, resp.StatusCode())
	}

	at, items, err := dec.DecodeSnapshot(resp.Body())
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("live: decode bootstrap snapshot: %w", err)
	}
	c.logger.Debug("bootstrap snapshot fetched", "path", path, "items", len(items))
	return at, items, nil
}
