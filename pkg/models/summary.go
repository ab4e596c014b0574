package models

import (
	"fmt"
	"strings"
)

// RunSummary counts terminal outcomes among the forks a run touched.
type RunSummary struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Summarize counts outcomes for the selected indices. A nil selected
// counts every status.
func Summarize(statuses []SyncStatus, selected []bool) RunSummary {
	var s RunSummary
	for i, st := range statuses {
		if selected != nil && (i >= len(selected) || !selected[i]) {
			continue
		}
		switch st.Kind {
		case StatusSynced:
			s.Synced++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Empty reports whether nothing finished.
func (s RunSummary) Empty() bool {
	return s.Synced == 0 && s.Skipped == 0 && s.Failed == 0
}

// Banner is the one-line form shown when a batch completes.
func (s RunSummary) Banner() string {
	return fmt.Sprintf("Synced: %d | Skipped: %d | Failed: %d", s.Synced, s.Skipped, s.Failed)
}

// Report is the multi-line form printed after exit. Zero counts are
// omitted; an empty summary renders as "".
func (s RunSummary) Report() string {
	if s.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("Summary:\n")
	for _, row := range []struct {
		label string
		n     int
	}{{"Synced", s.Synced}, {"Skipped", s.Skipped}, {"Failed", s.Failed}} {
		if row.n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", row.label, row.n)
		}
	}
	return b.String()
}
