package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// userAgent is a browser-like identification header; the SAT page rejects
// requests with an empty or default Go user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetcher performs GET requests with a bounded number of attempts and a
// constant delay between them. The delay is deliberately constant rather than
// exponential: the source serves static pages and a fixed 2s pause between
// the three attempts keeps total run time predictable.
type Fetcher struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewFetcher returns a Fetcher with a per-attempt timeout.
func NewFetcher(timeout time.Duration, maxRetries int, retryDelay time.Duration) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Get downloads url, retrying on any transport failure or non-2xx status.
// After the final attempt fails it returns a *FetchError wrapping the last
// underlying error together with the attempt count.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		slog.Info("Fetching URL.", "url", url, "attempt", attempt, "maxRetries", f.maxRetries)

		body, err := f.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == f.maxRetries {
			break
		}
		slog.Warn("Fetch attempt failed, will retry.",
			"url", url,
			"attempt", attempt,
			"delay", f.retryDelay.String(),
			"error", err,
		)
		select {
		case <-time.After(f.retryDelay):
		case <-ctx.Done():
			return nil, &FetchError{URL: url, Attempts: attempt, Err: ctx.Err()}
		}
	}

	slog.Error("Fetch failed after all retries.", "url", url, "error", lastErr)
	return nil, &FetchError{URL: url, Attempts: f.maxRetries, Err: lastErr}
}

func (f *Fetcher) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
