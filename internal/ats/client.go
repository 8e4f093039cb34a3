package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"jobradar-engine/internal/ats/util"
)

const browserUA = "Mozilla/5.0"

// Client is the HTTP layer shared by every fetcher: one timeout, a per-host
// rate limiter, and a small fixed retry budget with linear backoff. A page
// that still fails after the budget surfaces as *FetchError.
type Client struct {
	HC      *http.Client
	Limiter *util.HostLimiter
	Retries int
	Backoff time.Duration
}

func NewClient(timeout time.Duration, limiter *util.HostLimiter, retries int, backoff time.Duration) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		HC:      &http.Client{Timeout: timeout},
		Limiter: limiter,
		Retries: retries,
		Backoff: backoff,
	}
}

// Do runs req-builder + request with the retry budget. The builder is called
// per attempt so the body reader is fresh each time.
func (c *Client) Do(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.Retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, &FetchError{Err: ctx.Err()}
			case <-time.After(time.Duration(attempt-1) * c.Backoff):
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, &FetchError{Err: err}
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", browserUA)
		}

		if c.Limiter != nil {
			if err := c.Limiter.WaitURL(ctx, req.URL.String()); err != nil {
				return nil, &FetchError{URL: req.URL.String(), Err: err}
			}
		}

		res, err := c.HC.Do(req)
		if err != nil {
			lastErr = &FetchError{URL: req.URL.String(), Err: err}
			continue
		}
		data, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			lastErr = &FetchError{URL: req.URL.String(), Err: err}
			continue
		}
		if res.StatusCode >= 400 {
			lastErr = &FetchError{URL: req.URL.String(), Status: res.StatusCode}
			// 4xx won't heal on retry; don't burn the budget.
			if res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			continue
		}
		return data, nil
	}

	return nil, lastErr
}

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	data, err := c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{URL: url, Err: err}
	}
	return nil
}

// PostJSON sends body as JSON to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}

	data, err := c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{URL: url, Err: err}
	}
	return nil
}

// DoJSON runs a custom-built request through the retry budget and decodes
// the response body into out.
func (c *Client) DoJSON(ctx context.Context, build func(context.Context) (*http.Request, error), out any) error {
	data, err := c.Do(ctx, build)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{Err: err}
	}
	return nil
}

// GetRaw fetches url and returns the raw body, for HTML fallbacks.
func (c *Client) GetRaw(ctx context.Context, url string) ([]byte, error) {
	return c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
		return req, nil
	})
}
