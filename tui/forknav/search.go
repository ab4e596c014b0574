package forknav

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/grovetools/forksync/pkg/models"
)

// forkSource adapts the fork list to fuzzy.Source.
type forkSource []models.Fork

func (s forkSource) String(i int) string { return s[i].SearchText() }
func (s forkSource) Len() int            { return len(s) }

// Filter returns the indices of forks matching query, best match first.
// An empty query returns every index in list order.
func Filter(forks []models.Fork, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]int, len(forks))
		for i := range forks {
			out[i] = i
		}
		return out
	}

	matches := fuzzy.FindFrom(query, forkSource(forks))
	out := make([]int, len(matches))
	for i, match := range matches {
		out[i] = match.Index
	}
	return out
}

// updateSearch recomputes the visible rows and clamps the cursor.
func (m *Model) updateSearch() {
	m.visible = Filter(m.forks, m.search.Value())
	if m.mode == ModeSearch {
		m.cursor = 0
		m.offset = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// moveCursor moves by delta, wrapping at both ends.
func (m *Model) moveCursor(delta int) {
	n := len(m.visible)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
	m.ensureCursorVisible()
}

func (m *Model) pageCursor(dir int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += dir * m.listHeight()
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.ensureCursorVisible()
}

// ensureCursorVisible adjusts the scroll offset so the cursor row is shown.
func (m *Model) ensureCursorVisible() {
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
