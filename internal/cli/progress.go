package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/medboot/internal/format"
	"github.com/agbru/medboot/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts a terminal spinner so that DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix sets the suffix under the spinner's lock; the animation
// goroutine reads it concurrently.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner followed by an iteration bar and an ETA.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress shows bootstrap progress until progressChan is closed.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, out io.Writer) {
	DisplayProgress(wg, progressChan, out)
}

// DisplayProgress consumes progress updates and redraws the progress line at
// ProgressRefreshRate. It prints the final state once the channel closes.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, out io.Writer) {
	defer wg.Done()

	s := newSpinner(spinner.WithWriter(out), spinner.WithHiddenCursor(true))
	start := time.Now()
	var last orchestration.ProgressUpdate
	render := func() string {
		return " " + format.FormatIterationProgress(last.Done, last.Total,
			orchestration.ETA(last, time.Since(start)), ProgressBarWidth)
	}

	s.UpdateSuffix(render())
	s.Start()
	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s\n", render())
				return
			}
			last = u
		case <-ticker.C:
			s.UpdateSuffix(render())
		}
	}
}
