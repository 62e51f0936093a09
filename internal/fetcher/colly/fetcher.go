// Package collyfetcher implements the verse Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/crawler"
)

// Config controls collector behavior.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements crawler.Fetcher against the source site. A verse page
// lives at <base>/<book>/<chapter>-<verse>.htm; a 404 there means the verse
// does not exist, not that something broke.
type Fetcher struct {
	cfg           Config
	logger        *zap.Logger
	transport     http.RoundTripper
	baseCollector *colly.Collector
	retry         *retryPolicy
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		logger:        logger,
		transport:     transport,
		baseCollector: c,
		retry:         newRetryPolicy(),
	}, nil
}

// URL returns the page URL for an address.
func (f *Fetcher) URL(addr crawler.Address) string {
	return fmt.Sprintf("%s/%s/%d-%d.htm",
		strings.TrimRight(f.cfg.BaseURL, "/"), addr.Book, addr.Chapter, addr.Verse)
}

// Fetch retrieves the raw page body for an address, retrying transient
// failures with backoff. Returns crawler.ErrVerseNotFound on a 404.
func (f *Fetcher) Fetch(ctx context.Context, addr crawler.Address) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		body, err := f.fetchOnce(ctx, addr)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !f.retry.ShouldRetry(err, attempt) {
			return nil, lastErr
		}
		backoff := f.retry.Backoff(attempt)
		f.logger.Debug("Retrying fetch",
			zap.Stringer("address", addr),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, addr crawler.Address) ([]byte, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	var (
		body       []byte
		statusCode int
		fetchErr   error
	)
	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, f.URL(addr)); err != nil {
		return nil, err
	}
	switch {
	case statusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", addr.Reference(), crawler.ErrVerseNotFound)
	case fetchErr != nil:
		return nil, fmt.Errorf("fetch %s (status %d): %w", addr, statusCode, fetchErr)
	case statusCode < 200 || statusCode >= 300:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", addr, statusCode)
	}
	return body, nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		// Visit returns the HTTP error for non-2xx responses; the OnError
		// hook already captured the status so the caller can classify it.
		if err != nil && !isHTTPStatusError(err) {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

// isHTTPStatusError reports whether the visit error merely reflects a non-2xx
// status code rather than a transport failure.
func isHTTPStatusError(err error) bool {
	return strings.Contains(err.Error(), "Not Found") ||
		strings.Contains(err.Error(), "status code")
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
