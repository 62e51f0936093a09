package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/manifest"
	"github.com/jsalter/versecrawler/internal/metrics"
	"github.com/jsalter/versecrawler/internal/progress"
)

// Engine drives one crawl run: it expands the manifest into tasks, primes
// the writer so previously persisted verses are skipped, fans the remaining
// work out over a bounded worker pool, and reports a final summary.
//
// Per-task failures never abort the run; re-running the crawl is the retry
// mechanism, made cheap by the writer's durable state.
type Engine struct {
	cfg       Config
	structure manifest.Structure
	fetcher   Fetcher
	extractor Extractor
	writer    VerseWriter
	reporter  progress.Reporter
	logger    *zap.Logger
	runID     uuid.UUID

	mu      sync.RWMutex
	tracker *progress.Tracker
}

// NewEngine wires an Engine from its collaborators.
func NewEngine(
	cfg Config,
	structure manifest.Structure,
	fetcher Fetcher,
	extractor Extractor,
	writer VerseWriter,
	reporter progress.Reporter,
	logger *zap.Logger,
) *Engine {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		structure: structure,
		fetcher:   fetcher,
		extractor: extractor,
		writer:    writer,
		reporter:  reporter,
		logger:    logger,
		runID:     uuid.New(),
	}
}

// RunID identifies this crawl invocation in logs and the status endpoint.
func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// Progress returns a snapshot of the current run, or the zero value before
// Run has started.
func (e *Engine) Progress() progress.Stats {
	e.mu.RLock()
	tracker := e.tracker
	e.mu.RUnlock()
	if tracker == nil {
		return progress.Stats{}
	}
	return tracker.Stats()
}

// Run executes the crawl to completion of its filtered task list.
func (e *Engine) Run(ctx context.Context) error {
	tasks, err := GenerateTasks(e.structure, e.cfg.Book)
	if err != nil {
		return fmt.Errorf("generate tasks: %w", err)
	}

	tracker := progress.NewTracker(len(tasks))
	e.mu.Lock()
	e.tracker = tracker
	e.mu.Unlock()

	e.logger.Info("Starting crawl",
		zap.String("run_id", e.runID.String()),
		zap.Int("total_verses", len(tasks)),
		zap.Int("workers", e.cfg.Workers),
		zap.String("output_dir", e.cfg.OutputDir))

	pending, err := e.primeAndFilter(tasks, tracker)
	if err != nil {
		return err
	}

	e.dispatch(ctx, pending, tracker)

	stats := tracker.Stats()
	e.logger.Info("Crawl finished",
		zap.String("run_id", e.runID.String()),
		zap.Int("completed", stats.Completed),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", stats.Elapsed))
	e.reporter.Summary(stats, e.cfg.OutputDir)

	if ctx.Err() != nil {
		return fmt.Errorf("crawl interrupted: %w", ctx.Err())
	}
	return nil
}

// primeAndFilter initializes every chapter touched by the task list, then
// drops addresses the writer already holds. The skipped count is folded into
// the completed counter so totals and ETA stay correct on a resumed run.
func (e *Engine) primeAndFilter(tasks []Address, tracker *progress.Tracker) ([]Address, error) {
	type unit struct {
		book    string
		chapter int
	}
	seen := make(map[unit]struct{})
	for _, task := range tasks {
		key := unit{book: task.Book, chapter: task.Chapter}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := e.writer.InitChapter(task.Book, task.Chapter); err != nil {
			return nil, fmt.Errorf("init chapter %s/%d: %w", task.Book, task.Chapter, err)
		}
	}

	pending := tasks[:0:0]
	for _, task := range tasks {
		if !e.writer.HasVerse(task.Book, task.Chapter, task.Verse) {
			pending = append(pending, task)
		}
	}

	if skipped := len(tasks) - len(pending); skipped > 0 {
		tracker.AddCompleted(skipped)
		e.logger.Info("Skipping already-scraped verses", zap.Int("skipped", skipped))
	}
	return pending, nil
}

// dispatch feeds pending addresses to a fixed-size worker pool and blocks
// until every dispatched task has finished.
func (e *Engine) dispatch(ctx context.Context, pending []Address, tracker *progress.Tracker) {
	taskCh := make(chan Address)
	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range taskCh {
				metrics.WorkerStarted()
				e.process(ctx, addr, tracker)
				metrics.WorkerStopped()
			}
		}()
	}

feed:
	for _, addr := range pending {
		select {
		case <-ctx.Done():
			break feed
		case taskCh <- addr:
		}
	}
	close(taskCh)
	wg.Wait()
}

// process executes one task end to end. Every outcome is isolated to this
// address; nothing here may affect sibling tasks.
func (e *Engine) process(ctx context.Context, addr Address, tracker *progress.Tracker) {
	start := time.Now()
	body, err := e.fetcher.Fetch(ctx, addr)
	metrics.ObserveFetchDuration(time.Since(start))

	switch {
	case errors.Is(err, ErrVerseNotFound):
		// Not an error; the page simply does not exist. It still consumed a
		// work slot, so it counts against the failure tally.
		e.logger.Debug("Verse not found", zap.Stringer("address", addr))
		metrics.ObserveVerse(addr.Book, metrics.OutcomeNotFound)
		tracker.Update(false)
	case err != nil:
		e.logger.Warn("Fetch failed", zap.Stringer("address", addr), zap.Error(err))
		metrics.ObserveVerse(addr.Book, metrics.OutcomeError)
		tracker.Update(false)
	default:
		e.finishTask(addr, body, tracker)
	}

	e.reporter.TaskDone(addr.Reference(), tracker.Stats())
}

func (e *Engine) finishTask(addr Address, body []byte, tracker *progress.Tracker) {
	data, err := e.extractor.Extract(body, addr)
	if err != nil {
		e.logger.Warn("Extraction failed", zap.Stringer("address", addr), zap.Error(err))
		metrics.ObserveVerse(addr.Book, metrics.OutcomeError)
		tracker.Update(false)
		return
	}

	if err := e.writer.Merge(addr.Book, addr.Chapter, data); err != nil {
		// Unlike a not-found skip this is lost work: the verse was fetched
		// and parsed but could not be made durable.
		e.logger.Error("Chapter write failed; verse data lost",
			zap.Stringer("address", addr), zap.Error(err))
		metrics.ObserveWriteFailure()
		metrics.ObserveVerse(addr.Book, metrics.OutcomeError)
		tracker.Update(false)
		return
	}

	metrics.ObserveVerse(addr.Book, metrics.OutcomeScraped)
	tracker.Update(true)
}
