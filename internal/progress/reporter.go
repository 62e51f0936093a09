package progress

import (
	"fmt"
	"io"
	"time"
)

// Reporter observes crawl progress. The engine drives it so console
// formatting stays out of the core loop.
type Reporter interface {
	// TaskDone is called after every task completes, successfully or not.
	// current names the most recent item for display.
	TaskDone(current string, stats Stats)
	// Summary is called once when the crawl finishes.
	Summary(stats Stats, outputDir string)
}

// NopReporter discards all progress. Useful in tests.
type NopReporter struct{}

// TaskDone implements Reporter.
func (NopReporter) TaskDone(string, Stats) {}

// Summary implements Reporter.
func (NopReporter) Summary(Stats, string) {}

// ConsoleReporter renders a live single-line progress display followed by a
// final summary block.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter writes progress to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// TaskDone rewrites the progress line in place.
func (r *ConsoleReporter) TaskDone(current string, stats Stats) {
	done := stats.Completed + stats.Failed
	pct := 0.0
	if stats.Total > 0 {
		pct = float64(done) / float64(stats.Total) * 100
	}
	fmt.Fprintf(r.out, "\r[%d/%d] %.1f%% | %s elapsed | ~%s remaining | %-30s",
		stats.Completed, stats.Total, pct,
		formatClock(stats.Elapsed), formatClock(stats.Remaining), current)
}

// Summary prints the final block after the progress line.
func (r *ConsoleReporter) Summary(stats Stats, outputDir string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "============================================================")
	fmt.Fprintln(r.out, "Crawl complete")
	fmt.Fprintf(r.out, "  Verses scraped: %d\n", stats.Completed)
	fmt.Fprintf(r.out, "  Failed:         %d\n", stats.Failed)
	fmt.Fprintf(r.out, "  Time:           %s\n", formatClock(stats.Elapsed))
	fmt.Fprintf(r.out, "  Rate:           %.1f verses/sec\n", stats.Rate)
	fmt.Fprintf(r.out, "  Output:         %s/\n", outputDir)
	fmt.Fprintln(r.out, "============================================================")
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
