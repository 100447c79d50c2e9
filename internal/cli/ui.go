//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/orchestration"
)

const (
	// TruncationLimit is the digit count from which a term is abbreviated
	// on the terminal.
	TruncationLimit = 100
	// DisplayEdges is how many leading and trailing digits an abbreviated
	// term keeps.
	DisplayEdges = 25
	// DisplayedTerms is how many terms each end of a non-verbose listing
	// shows.
	DisplayedTerms = 10

	ProgressRefreshRate = 200 * time.Millisecond
	ProgressBarWidth    = 40
)

// Spinner is the terminal animation DisplayProgress drives. Tests replace
// it through newSpinner.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

// UpdateSuffix is called while the animation goroutine reads Suffix.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress renders a spinner with an aggregated progress bar and ETA
// until progressChan is closed. With more than one task the bar shows the
// average across tasks. It calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numTasks int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numTasks)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := "Computing"
	if agg.IsMultiTask() {
		label = fmt.Sprintf("Verifying (%d tasks)", agg.NumTasks())
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(label, 0, 0))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var avg float64
	var eta time.Duration
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(progressSuffix(label, 1, 0))
				return
			}
			p := agg.Update(update)
			avg, eta = p.Average, p.ETA
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(label, avg, eta))
		}
	}
}

func progressSuffix(label string, progress float64, eta time.Duration) string {
	return fmt.Sprintf(" %s %s", label, format.FormatProgressBarWithETA(progress, eta, ProgressBarWidth))
}
