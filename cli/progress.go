package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
	"github.com/grovetools/forksync/tui/theme"
)

// progressLine is one JSON line in --json plain mode.
type progressLine struct {
	Event  string             `json:"event"`
	Fork   string             `json:"fork,omitempty"`
	Status *models.SyncStatus `json:"status,omitempty"`
	Title  string             `json:"title,omitempty"`
	Reason string             `json:"reason,omitempty"`
	Action string             `json:"action,omitempty"`
}

// ProgressReporter consumes progress events without a TUI, printing one
// line per transition. It keeps its own copy of the fork list so events
// can be re-resolved by key.
type ProgressReporter struct {
	mu       sync.Mutex
	out      io.Writer
	json     bool
	forks    []models.Fork
	statuses []models.SyncStatus
	start    time.Time
	theme    *theme.Theme
	log      *logrus.Entry
}

// NewProgressReporter creates a reporter for forks writing to out.
func NewProgressReporter(out io.Writer, forks []models.Fork, jsonOutput bool) *ProgressReporter {
	p := &ProgressReporter{
		out:      out,
		json:     jsonOutput,
		forks:    append([]models.Fork(nil), forks...),
		statuses: make([]models.SyncStatus, len(forks)),
		start:    time.Now(),
		theme:    theme.Default(),
		log:      logging.NewLogger("progress"),
	}
	for i := range p.statuses {
		p.statuses[i] = models.Pending()
	}
	return p
}

// Handle applies one event.
func (p *ProgressReporter) Handle(ev models.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index, key, ok := models.Target(ev); ok {
		i, found := models.ResolveIndex(p.forks, index, key)
		if !found {
			p.log.WithField("fork", key).Debug("Dropping event for unknown fork")
			return
		}
		p.apply(i, ev)
		return
	}

	switch e := ev.(type) {
	case models.ForksRefreshed:
		p.forks = append([]models.Fork(nil), e.Forks...)
		p.statuses = make([]models.SyncStatus, len(e.Forks))
		for i := range p.statuses {
			p.statuses[i] = models.Pending()
		}
		p.emit(progressLine{Event: "refreshed", Reason: fmt.Sprintf("%d forks", len(e.Forks))},
			p.theme.Info.Render(fmt.Sprintf("%s Fork list refreshed (%d forks)", theme.Icons.Info, len(e.Forks))))
	case models.RefreshFailed:
		p.emit(progressLine{Event: "refresh_failed", Reason: e.Reason},
			p.theme.Warning.Render(fmt.Sprintf("%s Refresh failed: %s", theme.Icons.Warning, e.Reason)))
	}
}

func (p *ProgressReporter) apply(i int, ev models.ProgressEvent) {
	key := p.forks[i].Key()

	switch e := ev.(type) {
	case models.StatusUpdate:
		p.statuses[i] = e.Status
		status := e.Status
		line := fmt.Sprintf("%s %s  %s", theme.IconForStatus(status), key, status.Display())
		p.emit(progressLine{Event: "status", Fork: key, Status: &status}, p.theme.ForStatus(status).Render(line))
	case models.ForkCloned:
		p.forks[i].IsCloned = true
		p.emit(progressLine{Event: "cloned", Fork: key},
			fmt.Sprintf("%s %s cloned to %s", theme.Icons.Cloned, key, p.forks[i].LocalPath))
	case models.ForkArchived:
		p.emit(progressLine{Event: "archived", Fork: key}, fmt.Sprintf("%s %s archived", theme.Icons.Archive, key))
	case models.ForkDeleted:
		p.forks = append(p.forks[:i], p.forks[i+1:]...)
		p.statuses = append(p.statuses[:i], p.statuses[i+1:]...)
		p.emit(progressLine{Event: "deleted", Fork: key}, fmt.Sprintf("%s %s deleted", theme.Icons.Trash, key))
	case models.ActionableError:
		line := progressLine{Event: "error", Fork: key, Title: e.Details.Title, Reason: e.Details.Message}
		text := p.theme.Error.Render(fmt.Sprintf("%s %s: %s", theme.Icons.Error, key, e.Details.Title)) +
			"\n  " + e.Details.Message
		if e.Details.Action != nil {
			line.Action = e.Details.Action.Command
			text += "\n  " + p.theme.Muted.Render(fmt.Sprintf("%s: %s", e.Details.Action.Label, e.Details.Action.Command))
		}
		p.emit(line, text)
	}
}

func (p *ProgressReporter) emit(line progressLine, text string) {
	if p.json {
		data, err := json.Marshal(line)
		if err != nil {
			p.log.WithError(err).Warn("Failed to encode progress line")
			return
		}
		fmt.Fprintln(p.out, string(data))
		return
	}
	fmt.Fprintln(p.out, text)
}

// Run applies drained events every interval until done closes, then drains
// once more so no trailing event is lost.
func (p *ProgressReporter) Run(drain func() []models.ProgressEvent, done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			for _, ev := range drain() {
				p.Handle(ev)
			}
			return
		case <-ticker.C:
			for _, ev := range drain() {
				p.Handle(ev)
			}
		}
	}
}

// Statuses returns a copy of the current statuses.
func (p *ProgressReporter) Statuses() []models.SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.SyncStatus(nil), p.statuses...)
}

// Summary counts terminal outcomes.
func (p *ProgressReporter) Summary() models.RunSummary {
	return models.Summarize(p.Statuses(), nil)
}

// Done prints the banner and elapsed time.
func (p *ProgressReporter) Done() {
	summary := p.Summary()
	elapsed := time.Since(p.start).Round(time.Millisecond)

	if p.json {
		data, _ := json.Marshal(struct {
			Event string `json:"event"`
			models.RunSummary
			Elapsed string `json:"elapsed"`
		}{Event: "done", RunSummary: summary, Elapsed: elapsed.String()})
		fmt.Fprintln(p.out, string(data))
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.theme.Bold.Render(summary.Banner()))
	fmt.Fprintln(p.out, p.theme.Muted.Render(fmt.Sprintf("Completed in %s", elapsed)))
}
