// Package progress tracks crawl counters and reports them to observers.
package progress

import (
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of crawl progress.
type Stats struct {
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Total     int           `json:"total"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Rate      float64       `json:"rate_per_second"`
	Remaining time.Duration `json:"remaining_ns"`
}

// Tracker counts completed and failed tasks across concurrent workers.
// Invariant: completed+failed never exceeds total.
type Tracker struct {
	mu        sync.Mutex
	completed int
	failed    int
	total     int
	start     time.Time

	now func() time.Time
}

// NewTracker creates a Tracker for a run of total tasks.
func NewTracker(total int) *Tracker {
	return &Tracker{
		total: total,
		start: time.Now(),
		now:   time.Now,
	}
}

// Update increments the completed or failed counter.
func (t *Tracker) Update(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if success {
		t.completed++
	} else {
		t.failed++
	}
}

// AddCompleted folds n already-durable tasks into the completed counter, so
// a resumed run reports accurate totals and ETA.
func (t *Tracker) AddCompleted(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed += n
}

// Stats returns a snapshot. Rate is completed per elapsed second; Remaining
// is the ETA for the outstanding tasks. Both are zero when undefined.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.now().Sub(t.start)
	s := Stats{
		Completed: t.completed,
		Failed:    t.failed,
		Total:     t.total,
		Elapsed:   elapsed,
	}
	if elapsed > 0 {
		s.Rate = float64(t.completed) / elapsed.Seconds()
	}
	if s.Rate > 0 {
		outstanding := t.total - t.completed - t.failed
		if outstanding > 0 {
			s.Remaining = time.Duration(float64(outstanding) / s.Rate * float64(time.Second))
		}
	}
	return s
}
