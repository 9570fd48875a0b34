package orchestration

import (
	"io"
	"sync"
)

// ProgressUpdate reports how many bootstrap iterations have completed.
type ProgressUpdate struct {
	// Done is the number of completed iterations.
	Done int
	// Total is the number of iterations in the run.
	Total int
}

// Fraction returns Done/Total in [0, 1].
func (u ProgressUpdate) Fraction() float64 {
	if u.Total <= 0 {
		return 0
	}
	return float64(u.Done) / float64(u.Total)
}

// ProgressReporter defines the interface for displaying bootstrap progress.
// DisplayProgress runs in its own goroutine until progressChan is closed and
// then calls wg.Done. Intermediate updates may be dropped when the reporter
// falls behind; the final update with Done == Total is always delivered.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, out io.Writer) {
	f(wg, progressChan, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}
