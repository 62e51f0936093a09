// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the verses counter.
const (
	OutcomeScraped  = "scraped"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	versesTotal        *prometheus.CounterVec
	writeFailuresTotal prometheus.Counter
	fetchDuration      prometheus.Histogram
	activeWorkers      prometheus.Gauge

	once sync.Once
)

// Init registers the collectors. It is safe to call multiple times.
func Init() {
	once.Do(func() {
		versesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "versecrawler_verses_total",
				Help: "Verses processed, labeled by book and outcome.",
			},
			[]string{"book", "outcome"},
		)

		writeFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "versecrawler_write_failures_total",
				Help: "Chapter file writes that failed after a successful fetch.",
			},
		)

		fetchDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "versecrawler_fetch_duration_seconds",
				Help:    "Histogram of verse page fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "versecrawler_active_workers",
				Help: "Workers currently processing a verse.",
			},
		)
	})
}

// ObserveVerse records a finished verse task.
func ObserveVerse(book, outcome string) {
	if versesTotal == nil {
		return
	}
	versesTotal.WithLabelValues(book, outcome).Inc()
}

// ObserveWriteFailure records a chapter write failure. These indicate lost
// work, unlike a natural not-found skip.
func ObserveWriteFailure() {
	if writeFailuresTotal == nil {
		return
	}
	writeFailuresTotal.Inc()
}

// ObserveFetchDuration records one fetch latency.
func ObserveFetchDuration(d time.Duration) {
	if fetchDuration == nil {
		return
	}
	fetchDuration.Observe(d.Seconds())
}

// WorkerStarted increments the active worker gauge.
func WorkerStarted() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Inc()
}

// WorkerStopped decrements the active worker gauge.
func WorkerStopped() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Dec()
}
