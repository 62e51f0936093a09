package progress

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerUpdate(t *testing.T) {
	tr := NewTracker(10)
	tr.Update(true)
	tr.Update(true)
	tr.Update(false)

	stats := tr.Stats()
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 10, stats.Total)
}

func TestTrackerAddCompleted(t *testing.T) {
	tr := NewTracker(100)
	tr.AddCompleted(40)
	tr.AddCompleted(0)
	tr.AddCompleted(-5)

	stats := tr.Stats()
	assert.Equal(t, 40, stats.Completed)
}

func TestTrackerRateAndETA(t *testing.T) {
	tr := NewTracker(100)
	start := tr.start
	tr.now = func() time.Time { return start.Add(10 * time.Second) }

	for i := 0; i < 20; i++ {
		tr.Update(true)
	}
	for i := 0; i < 5; i++ {
		tr.Update(false)
	}

	stats := tr.Stats()
	assert.InDelta(t, 2.0, stats.Rate, 0.001)
	// 75 outstanding at 2/sec.
	assert.InDelta(t, 37.5, stats.Remaining.Seconds(), 0.001)
}

func TestTrackerNoDivisionByZero(t *testing.T) {
	tr := NewTracker(10)
	start := tr.start

	t.Run("ZeroElapsed", func(t *testing.T) {
		tr.now = func() time.Time { return start }
		stats := tr.Stats()
		assert.Zero(t, stats.Rate)
		assert.Zero(t, stats.Remaining)
	})

	t.Run("ZeroRate", func(t *testing.T) {
		tr.now = func() time.Time { return start.Add(5 * time.Second) }
		tr.Update(false)
		stats := tr.Stats()
		assert.Zero(t, stats.Rate)
		assert.Zero(t, stats.Remaining)
	})
}

func TestTrackerConcurrentUpdates(t *testing.T) {
	const n = 500
	tr := NewTracker(n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(success bool) {
			defer wg.Done()
			tr.Update(success)
		}(i%5 != 0)
	}
	wg.Wait()

	stats := tr.Stats()
	assert.Equal(t, n, stats.Completed+stats.Failed)
	assert.Equal(t, n/5, stats.Failed)
	assert.LessOrEqual(t, stats.Completed+stats.Failed, stats.Total)
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.TaskDone("Genesis 1:1", Stats{Completed: 1, Total: 4, Elapsed: time.Second})
	assert.Contains(t, buf.String(), "[1/4]")
	assert.Contains(t, buf.String(), "Genesis 1:1")

	buf.Reset()
	r.Summary(Stats{Completed: 3, Failed: 1, Total: 4, Elapsed: 90 * time.Second, Rate: 0.5}, "bible")
	out := buf.String()
	assert.Contains(t, out, "Verses scraped: 3")
	assert.Contains(t, out, "Failed:         1")
	assert.Contains(t, out, "00:01:30")
	assert.Contains(t, out, "bible/")
}

func TestFormatClock(t *testing.T) {
	require.Equal(t, "00:00:00", formatClock(-time.Second))
	require.Equal(t, "01:02:03", formatClock(time.Hour+2*time.Minute+3*time.Second))
}
