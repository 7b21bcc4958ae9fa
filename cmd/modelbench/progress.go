package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/modelbench/modelbench/internal/orchestration"
)

// progressReporter drives a terminal spinner from runner progress events.
type progressReporter struct {
	mu   sync.Mutex
	spin *spinner.Spinner
}

func newProgressReporter(w io.Writer) *progressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting..."
	return &progressReporter{spin: s}
}

func (p *progressReporter) start() {
	p.spin.Start()
}

func (p *progressReporter) stop() {
	p.spin.Stop()
}

func (p *progressReporter) listen(ev orchestration.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spin.Suffix = fmt.Sprintf(" %d/%d  %s | %s  %s/%s",
		ev.Completed, ev.Total, ev.Model, ev.ConfigTag, ev.SuiteID, ev.CaseID)
}
