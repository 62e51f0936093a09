package collyfetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/crawler"
)

func newTestFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	f, err := New(Config{
		BaseURL:   baseURL,
		UserAgent: "versecrawler-test/1.0",
		Timeout:   5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	// Keep tests fast; the backoff schedule itself is covered separately.
	f.retry.baseDelay = time.Millisecond
	f.retry.maxDelay = 2 * time.Millisecond
	return f
}

func TestNew(t *testing.T) {
	t.Run("MissingBaseURL", func(t *testing.T) {
		_, err := New(Config{}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("NilLogger", func(t *testing.T) {
		f, err := New(Config{BaseURL: "https://example.com"}, nil)
		require.NoError(t, err)
		assert.NotNil(t, f)
	})
}

func TestURL(t *testing.T) {
	f := newTestFetcher(t, "https://example.com/")
	addr := crawler.Address{Book: "1_peter", Chapter: 1, Verse: 12}
	assert.Equal(t, "https://example.com/1_peter/1-12.htm", f.URL(addr))
}

func TestFetch(t *testing.T) {
	addr := crawler.Address{Book: "genesis", Chapter: 1, Verse: 1}

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/genesis/1-1.htm", r.URL.Path)
			fmt.Fprint(w, "<html><body>In the beginning</body></html>")
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		body, err := f.Fetch(context.Background(), addr)
		require.NoError(t, err)
		assert.Contains(t, string(body), "In the beginning")
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		_, err := f.Fetch(context.Background(), addr)
		assert.ErrorIs(t, err, crawler.ErrVerseNotFound)
	})

	t.Run("ServerErrorRetriesThenFails", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		_, err := f.Fetch(context.Background(), addr)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, crawler.ErrVerseNotFound)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("RecoversAfterTransientError", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, "ok")
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		body, err := f.Fetch(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		f := newTestFetcher(t, srv.URL)
		_, err := f.Fetch(ctx, addr)
		assert.Error(t, err)
	})
}

func TestRetryPolicy(t *testing.T) {
	p := newRetryPolicy()

	t.Run("NeverRetriesNotFound", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", crawler.ErrVerseNotFound)
		assert.False(t, p.ShouldRetry(err, 0))
	})

	t.Run("NeverRetriesCancellation", func(t *testing.T) {
		assert.False(t, p.ShouldRetry(context.Canceled, 0))
		assert.False(t, p.ShouldRetry(context.DeadlineExceeded, 0))
	})

	t.Run("StopsAtMaxAttempts", func(t *testing.T) {
		err := fmt.Errorf("boom")
		assert.True(t, p.ShouldRetry(err, 0))
		assert.True(t, p.ShouldRetry(err, 1))
		assert.False(t, p.ShouldRetry(err, 2))
	})

	t.Run("BackoffGrowsAndIsBounded", func(t *testing.T) {
		for attempt := 0; attempt < 6; attempt++ {
			d := p.Backoff(attempt)
			assert.Greater(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, p.maxDelay)
		}
	})
}
