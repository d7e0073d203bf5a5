package util

import (
	"context"
	"io"
	"net/http"
	"time"

	"homehunt-engine/internal/scrape/types"
)

// Browser-profile headers. Some of the property portals serve 403 to the
// default Go user agent.
var requestHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Client is the shared fetch surface for all adapters: one connection pool,
// one per-host limiter, one failure taxonomy. It is read-only after
// construction and safe for concurrent use.
type Client struct {
	hc      *http.Client
	limiter *HostLimiter
}

func NewClient(timeout time.Duration, limiter *HostLimiter) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Get fetches rawURL and classifies failures. Network errors and HTTP 429
// come back as transient FetchErrors; any other non-200 status is terminal
// for the page.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Transient: true, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return io.ReadAll(res.Body)
	case http.StatusTooManyRequests:
		return nil, &types.FetchError{URL: rawURL, Status: res.StatusCode, Transient: true}
	default:
		return nil, &types.FetchError{URL: rawURL, Status: res.StatusCode}
	}
}
