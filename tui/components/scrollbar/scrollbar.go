// Package scrollbar renders a vertical scrollbar for windowed lists.
package scrollbar

import (
	"strings"

	"github.com/grovetools/forksync/tui/theme"
)

const (
	thumb = "█"
	track = "░"
)

// Generate returns one scrollbar cell per visible row for a list of total
// rows scrolled to offset. When everything fits the bar is blank.
func Generate(height, total, offset int) []string {
	if height <= 0 {
		return []string{}
	}

	t := theme.Default()
	bar := make([]string, height)
	if total <= height {
		for i := range bar {
			bar[i] = " "
		}
		return bar
	}

	size := height * height / total
	if size < 1 {
		size = 1
	}

	maxOffset := total - height
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	maxStart := height - size
	start := (maxStart*offset + maxOffset/2) / maxOffset

	for i := range bar {
		if i >= start && i < start+size {
			bar[i] = t.Muted.Render(thumb)
		} else {
			bar[i] = t.Muted.Render(track)
		}
	}
	return bar
}

// Attach appends bar to content starting at line skip, so a bar sized for
// a table's data rows can sit beside its border and header lines.
func Attach(content string, bar []string, skip int) string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		cell := " "
		if j := i - skip; j >= 0 && j < len(bar) {
			cell = bar[j]
		}
		lines[i] += cell
	}
	return strings.Join(lines, "\n")
}
