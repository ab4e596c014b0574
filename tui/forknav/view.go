package forknav

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/forksync/pkg/models"
	"github.com/grovetools/forksync/tui/components/scrollbar"
	"github.com/grovetools/forksync/tui/components/table"
	"github.com/grovetools/forksync/tui/theme"
)

const (
	headerHeight  = 2
	detailsHeight = 7
	footerHeight  = 2
	tableChrome   = 4
	minListHeight = 3
)

// listHeight is how many fork rows fit.
func (m *Model) listHeight() int {
	h := m.height - headerHeight - detailsHeight - footerHeight - tableChrome
	if h < minListHeight {
		return minListHeight
	}
	return h
}

// View renders the navigator.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width < 40 || m.height < 12 {
		return "Terminal too small. Please resize."
	}

	switch {
	case m.showHelp:
		return m.overlay(m.renderHelp())
	case m.mode == ModeStats:
		return m.overlay(m.renderStats())
	case m.mode == ModeConfirm:
		return m.overlay(m.renderConfirm())
	case m.mode == ModeError:
		return m.overlay(m.renderPopup())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderList(),
		m.renderDetails(),
		m.renderFooter(),
	)
}

func (m *Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	t := m.theme
	parts := []string{
		t.Title.Render("forksync"),
		t.Muted.Render(fmt.Sprintf("%d forks", len(m.forks))),
		t.Muted.Render(fmt.Sprintf("%d selected", m.selectedCount())),
		m.cacheLabel(),
	}
	if m.cfg.DryRun {
		parts = append(parts, t.Warning.Render("DRY RUN"))
	}
	if q := m.search.Value(); q != "" && m.mode != ModeSearch {
		parts = append(parts, t.Accent.Render("filter: "+q))
	}
	return strings.Join(parts, t.Muted.Render("  ·  ")) + "\n"
}

func (m *Model) cacheLabel() string {
	t := m.theme
	label := "cache: " + m.cache.Label()
	switch {
	case m.cache.Refreshing:
		return t.Info.Render(m.frames[m.frame] + " " + label)
	case m.cache.Kind == models.CacheFresh:
		return t.Success.Render(label)
	case m.cache.Kind == models.CacheOffline:
		return t.Error.Render(label)
	}
	return t.Warning.Render(label)
}

// statusCell renders a status with its icon, or the spinner while running.
func (m *Model) statusCell(s models.SyncStatus) string {
	icon := theme.IconForStatus(s)
	if !s.IsIdle() {
		icon = m.frames[m.frame]
	}
	return m.theme.ForStatus(s).Render(icon + " " + s.Display())
}

func (m *Model) renderList() string {
	t := m.theme
	if len(m.visible) == 0 {
		msg := "No forks."
		if m.search.Value() != "" {
			msg = "No forks match the search."
		}
		return t.Box.Width(m.width - 2).Render(t.Muted.Render(msg))
	}

	end := m.offset + m.listHeight()
	if end > len(m.visible) {
		end = len(m.visible)
	}

	rows := make([][]string, 0, end-m.offset)
	for pos := m.offset; pos < end; pos++ {
		i := m.visible[pos]
		f := m.forks[i]

		mark := "[ ]"
		if m.selected[i] {
			mark = "[" + theme.Icons.Selected + "]"
		}
		cloned := ""
		if f.IsCloned {
			cloned = theme.Icons.Cloned
		}
		lang := f.Language
		if lang == "" {
			lang = "-"
		}
		rows = append(rows, []string{mark, f.Key(), f.ParentFullName(), lang, cloned, m.statusCell(m.statuses[i])})
	}

	cursorRow := m.cursor - m.offset
	rendered := table.NewBuilder().
		WithTheme(t).
		WithHeaders("", "FORK", "PARENT", "LANG", "LOCAL", "STATUS").
		WithRows(rows...).
		WithRowStyleFunc(func(row int) lipgloss.Style {
			if row == cursorRow {
				return t.SelectedRow
			}
			return t.Normal
		}).
		WithWidth(m.width - 1).
		Build().
		String()

	// Top border, header and header rule precede the first row.
	bar := scrollbar.Generate(m.listHeight(), len(m.visible), m.offset)
	return scrollbar.Attach(rendered, bar, 3)
}

func (m *Model) renderDetails() string {
	t := m.theme
	box := t.DetailsBox.Width(m.width - 2).Height(detailsHeight - 2)

	f, ok := m.current()
	if !ok {
		return box.Render("")
	}
	inner := m.width - 6

	lines := []string{
		t.Bold.Render(f.Key()) + t.Muted.Render("  forked from "+f.ParentFullName()),
	}
	if f.Description != "" {
		lines = append(lines, truncate(f.Description, inner))
	}

	meta := []string{theme.Icons.Branch + " " + f.DefaultBranch}
	if f.Language != "" {
		meta = append(meta, f.Language)
	}
	if f.IsCloned {
		meta = append(meta, theme.Icons.Cloned+" "+f.LocalPath)
	} else {
		meta = append(meta, theme.Icons.Remote+" not cloned")
	}
	lines = append(lines, truncate(strings.Join(meta, "  "), inner))

	if d, ok := m.details[f.Key()]; ok && f.IsCloned {
		lines = append(lines, m.renderGitDetails(d, inner))
	}

	if i, ok := m.currentIndex(); ok {
		if s := m.statuses[i]; s.Kind == models.StatusFailed || s.Kind == models.StatusSkipped {
			lines = append(lines, t.ForStatus(s).Render(s.Display()))
		}
	}

	return box.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderGitDetails(d *details, width int) string {
	t := m.theme
	switch {
	case d.err != nil:
		return t.Error.Render(truncate("git: "+d.err.Error(), width))
	case d.status == nil:
		return t.Muted.Render("loading git status...")
	}

	s := d.status
	state := t.Success.Render("clean")
	if s.IsDirty {
		state = t.Warning.Render(fmt.Sprintf("dirty (%d modified, %d untracked)", s.ModifiedCount, s.UntrackedCount))
	}
	parts := []string{"on " + s.Branch, state}
	if s.HasUpstream {
		parts = append(parts, fmt.Sprintf("↑%d ↓%d", s.AheadCount, s.BehindCount))
	}
	if d.head != nil {
		parts = append(parts, d.head.ShortHash()+" "+d.head.Subject)
	}
	return truncate(strings.Join(parts, "  "), width)
}

func (m *Model) renderFooter() string {
	t := m.theme
	var line string

	switch {
	case m.mode == ModeSearch:
		line = m.search.View()
	case m.message != "":
		line = t.Info.Render(m.message)
	case m.mode == ModeSyncing:
		done, total := m.progress()
		line = t.Info.Render(fmt.Sprintf("%s Syncing %d/%d", m.frames[m.frame], done, total)) +
			t.Muted.Render("  q quit")
	case m.mode == ModeDone:
		line = t.Success.Render(m.Summary().Banner()) + t.Muted.Render("  r next round · q quit")
	default:
		line = m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return "\n" + line
}

func (m *Model) progress() (done, total int) {
	for i, sel := range m.selected {
		if !sel {
			continue
		}
		total++
		if m.statuses[i].IsTerminal() {
			done++
		}
	}
	return done, total
}

func (m *Model) renderHelp() string {
	m.help.ShowAll = true
	view := m.help.View(m.keys)
	m.help.ShowAll = false
	return m.theme.Popup.Render(m.theme.Title.Render("Keys") + "\n\n" + view + "\n\n" +
		m.theme.Muted.Render("press any key to close"))
}

func (m *Model) renderStats() string {
	t := m.theme
	stats := models.ComputeStats(m.forks, m.statuses)

	var b strings.Builder
	b.WriteString(t.Title.Render("Fork statistics") + "\n\n")
	b.WriteString(table.KeyValueTable([][2]string{
		{"Total", fmt.Sprint(stats.Total)},
		{"Cloned", fmt.Sprint(stats.Cloned)},
		{"Not cloned", fmt.Sprint(stats.Uncloned)},
		{"Synced", fmt.Sprint(stats.Synced)},
		{"Pending", fmt.Sprint(stats.Pending)},
		{"Skipped", fmt.Sprint(stats.Skipped)},
		{"Failed", fmt.Sprint(stats.Failed)},
	}))

	if len(stats.Languages) > 0 {
		b.WriteString("\n\n" + t.Bold.Render("Languages") + "\n")
		top := stats.Languages[0].Count
		for _, l := range stats.Languages {
			bar := strings.Repeat("█", barWidth(l.Count, top, 20))
			fmt.Fprintf(&b, "%-12s %s %d\n", truncate(l.Language, 12), t.Accent.Render(bar), l.Count)
		}
	}
	b.WriteString("\n" + t.Muted.Render("d/esc to close"))
	return t.Popup.Render(b.String())
}

func barWidth(n, max, width int) int {
	if max <= 0 || n <= 0 {
		return 0
	}
	w := n * width / max
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderButtons(labels [2]string) string {
	t := m.theme
	out := make([]string, 2)
	for i, label := range labels {
		style := t.Muted
		if i == m.button {
			style = t.Highlight
		}
		out[i] = style.Render("[ " + label + " ]")
	}
	return out[0] + "  " + out[1]
}

func (m *Model) renderConfirm() string {
	t := m.theme
	c := m.confirm
	if c == nil {
		return ""
	}

	var question string
	switch c.action {
	case actionSync:
		question = fmt.Sprintf("Sync %d selected fork(s) with their parents?", c.count)
	case actionDelete:
		question = fmt.Sprintf("Delete %s? This removes the GitHub repository and any local clone.", c.target)
	default:
		question = fmt.Sprintf("%s %s?", c.action.verb(), c.target)
	}

	lines := []string{t.Title.Render(c.action.verb()), "", question}
	if m.cfg.DryRun {
		lines = append(lines, t.Warning.Render("Dry run: nothing will be changed."))
	}
	lines = append(lines, "", m.renderButtons([2]string{"Cancel", c.action.verb()}))
	return t.Popup.Width(min(m.width-4, 70)).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPopup() string {
	t := m.theme
	if len(m.popups) == 0 {
		return ""
	}
	p := m.popups[0]

	lines := []string{
		t.Error.Render(theme.Icons.Error + " " + p.details.Title),
		t.Muted.Render(p.key),
		"",
		p.details.Message,
	}
	action := "Dismiss"
	if p.details.Action != nil {
		lines = append(lines, "", t.Muted.Render("$ "+p.details.Action.Command))
		action = p.details.Action.Label
	}
	lines = append(lines, "", m.renderButtons([2]string{action, "Dismiss"}))
	if len(m.popups) > 1 {
		lines = append(lines, t.Muted.Render(fmt.Sprintf("%d more", len(m.popups)-1)))
	}
	return t.Popup.Width(min(m.width-4, 70)).Render(strings.Join(lines, "\n"))
}

// truncate cuts s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
