package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	assert.NotNil(t, versesTotal)
	assert.NotNil(t, writeFailuresTotal)
	assert.NotNil(t, fetchDuration)
	assert.NotNil(t, activeWorkers)
}

func TestObserveVerse(t *testing.T) {
	Init()
	before := testutil.ToFloat64(versesTotal.WithLabelValues("genesis", OutcomeScraped))
	ObserveVerse("genesis", OutcomeScraped)
	after := testutil.ToFloat64(versesTotal.WithLabelValues("genesis", OutcomeScraped))
	assert.Equal(t, before+1, after)
}

func TestWorkerGauge(t *testing.T) {
	Init()
	before := testutil.ToFloat64(activeWorkers)
	WorkerStarted()
	assert.Equal(t, before+1, testutil.ToFloat64(activeWorkers))
	WorkerStopped()
	assert.Equal(t, before, testutil.ToFloat64(activeWorkers))
}

func TestObserversSafeBeforeInit(t *testing.T) {
	// Observers must not panic even if Init was somehow skipped; the nil
	// guards cover tests that import this package indirectly.
	ObserveVerse("genesis", OutcomeError)
	ObserveWriteFailure()
	ObserveFetchDuration(time.Second)
	WorkerStarted()
	WorkerStopped()
}
