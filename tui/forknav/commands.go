package forknav

import (
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/forksync/git"
	"github.com/grovetools/forksync/internal/catalog"
	"github.com/grovetools/forksync/pkg/models"
)

type tickMsg time.Time

type detailsMsg struct {
	key    string
	status *git.StatusInfo
	head   *git.HeadInfo
	err    error
}

type browseMsg struct {
	key string
	err error
}

type execFinishedMsg struct {
	what string
	err  error
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) browse(f models.Fork) tea.Cmd {
	ctx, browser := m.ctx, m.cfg.Browser
	return func() tea.Msg {
		return browseMsg{key: f.Key(), err: browser.Browse(ctx, f)}
	}
}

// openEditor suspends the TUI and runs the editor in the clone.
func (m *Model) openEditor(f models.Fork) tea.Cmd {
	parts := strings.Fields(m.editor())
	if len(parts) == 0 {
		parts = []string{"vim"}
	}
	args := append(parts[1:], f.LocalPath)
	c := exec.Command(parts[0], args...)
	c.Dir = f.LocalPath
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return execFinishedMsg{what: "editor", err: err}
	})
}

// runRemediation suspends the TUI and runs an actionable error's fix
// command through the shell so the user can answer its prompts.
func (m *Model) runRemediation(command string) tea.Cmd {
	c := exec.Command("sh", "-c", command)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return execFinishedMsg{what: "fix", err: err}
	})
}

func (m *Model) onExecFinished(msg execFinishedMsg) {
	switch {
	case msg.err != nil:
		m.log.WithError(msg.err).WithField("what", msg.what).Warn("External command failed")
		m.showMessage("Command failed: " + msg.err.Error())
	case msg.what == "fix":
		m.showMessage("Fix command finished; retry the operation")
	}
}

// loadDetails reads git state for the fork under the cursor once.
func (m *Model) loadDetails() tea.Cmd {
	f, ok := m.current()
	if !ok || !f.IsCloned || m.cfg.Git == nil {
		return nil
	}
	if _, cached := m.details[f.Key()]; cached {
		return nil
	}
	m.details[f.Key()] = &details{}

	ctx, reader := m.ctx, m.cfg.Git
	return func() tea.Msg {
		msg := detailsMsg{key: f.Key()}
		msg.status, msg.err = reader.Status(ctx, f.LocalPath)
		if head, err := git.Inspect(f.LocalPath); err == nil {
			msg.head = head
		}
		return msg
	}
}

// startWatcher recomputes clone state when directories under the tool
// home appear or disappear.
func (m *Model) startWatcher() {
	if m.cfg.ToolHome == "" {
		return
	}
	changed := m.clonesChange
	w, err := catalog.NewCloneWatcher(m.cfg.ToolHome, 0, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		m.log.WithError(err).Warn("Clone watcher unavailable")
		return
	}
	go w.Start(m.ctx)
}
