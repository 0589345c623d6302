// internal/adapters/yourrentals/client.go
package yourrentals

import (
	"compress/gzip"
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

type Config struct {
	APIURL string // e.g. https://api-internal.your.rentals
	AppURL string // e.g. https://app.your.rentals
	SiteID string // booking site id, "AUTE"
	RPS    int
}

// Client talks to the rentals platform: the guest listing API, the values
// (vocabulary) API, the public booking page and image hosting.
type Client struct {
	cfg Config
	hc  *http.Client
	rl  *rate.Limiter

	// OnCall, when set, is told about every finished upstream request.
	OnCall func(endpoint string, status int, d time.Duration)
}

func New(cfg Config) (*Client, error) {
	if cfg.APIURL == "" || cfg.AppURL == "" {
		return nil, fmt.Errorf("rentals API and app URLs are required")
	}
	if cfg.SiteID == "" {
		return nil, fmt.Errorf("booking site id is required")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: 20 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}, nil
}

const maxAttempts = 4

// get performs a GET with client-side rate limiting and retries on network
// errors, 429 and transient 5xx (honoring Retry-After). Any other status is
// returned to the caller together with the decoded body.
func (c *Client) get(ctx context.Context, endpoint, url string, decorate func(*http.Request)) ([]byte, int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Accept-Encoding", "br, gzip")
		req.Header.Set("User-Agent", "rental-sync/1.0")
		if decorate != nil {
			decorate(req)
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			c.observe(endpoint, 0, start)
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, 0, lastErr
		}
		c.observe(endpoint, resp.StatusCode, start)

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%s: remote %d", endpoint, resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, resp.StatusCode, lastErr
		}

		body, err := readBody(resp)
		resp.Body.Close()
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("%s: read body: %w", endpoint, err)
		}
		return body, resp.StatusCode, nil
	}
	return nil, 0, lastErr
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.OnCall != nil {
		c.OnCall(endpoint, status, time.Since(start))
	}
}

// readBody undoes the content encoding we asked for.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
