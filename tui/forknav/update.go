package forknav

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case tickMsg:
		m.onTick()
		if m.quitting {
			return m, nil
		}
		return m, m.tick()

	case detailsMsg:
		m.details[msg.key] = &details{status: msg.status, head: msg.head, err: msg.err}
		return m, nil

	case browseMsg:
		if msg.err != nil {
			m.showMessage("Open failed: " + msg.err.Error())
		}
		return m, nil

	case execFinishedMsg:
		m.onExecFinished(msg)
		return m, m.loadDetails()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeStats:
		if key.Matches(msg, m.keys.Stats, m.keys.Quit) {
			m.mode = ModeSelecting
		}
		return m, nil
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	case ModeError:
		return m.handleErrorKey(msg)
	case ModeSyncing:
		switch {
		case msg.String() == "q":
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		}
		return m, m.handleMove(msg)
	case ModeDone:
		switch {
		case key.Matches(msg, m.keys.Quit, m.keys.Confirm):
			return m.quit()
		case key.Matches(msg, m.keys.Reset):
			m.resetForNextRound()
			return m, nil
		}
		return m, m.handleMove(msg)
	}

	return m.handleSelectingKey(msg)
}

func (m *Model) handleSelectingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Toggle):
		if i, ok := m.currentIndex(); ok {
			m.selected[i] = !m.selected[i]
		}

	case key.Matches(msg, m.keys.SelectAll):
		m.toggleAllVisible()

	case key.Matches(msg, m.keys.Confirm):
		if m.selectedCount() == 0 {
			i, ok := m.currentIndex()
			if !ok {
				return m, nil
			}
			m.selected[i] = true
		}
		m.openConfirm(actionSync, "")

	case key.Matches(msg, m.keys.Search):
		m.search.SetValue("")
		m.updateSearch()
		m.mode = ModeSearch
		return m, tea.Batch(m.search.Focus(), textinput.Blink)

	case key.Matches(msg, m.keys.Stats):
		m.mode = ModeStats

	case key.Matches(msg, m.keys.Clone):
		if f, ok := m.current(); ok {
			switch {
			case f.IsCloned:
				m.showMessage("Already cloned")
			case !m.idle(f.Key()):
				m.showMessage("Operation in progress")
			default:
				m.openConfirm(actionClone, f.Key())
			}
		}

	case key.Matches(msg, m.keys.Open):
		if f, ok := m.current(); ok && m.cfg.Browser != nil {
			m.showMessage("Opening in browser...")
			return m, m.browse(f)
		}

	case key.Matches(msg, m.keys.Edit):
		if f, ok := m.current(); ok {
			if !f.IsCloned {
				m.showMessage("Not cloned yet")
				return m, nil
			}
			return m, m.openEditor(f)
		}

	case key.Matches(msg, m.keys.Archive):
		if f, ok := m.current(); ok {
			if !m.idle(f.Key()) {
				m.showMessage("Operation in progress")
				return m, nil
			}
			m.openConfirm(actionArchive, f.Key())
		}

	case key.Matches(msg, m.keys.Delete):
		if f, ok := m.current(); ok {
			if !m.idle(f.Key()) {
				m.showMessage("Operation in progress")
				return m, nil
			}
			m.openConfirm(actionDelete, f.Key())
		}

	case key.Matches(msg, m.keys.Refresh):
		m.startRefresh()

	default:
		return m, m.handleMove(msg)
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.updateSearch()
		m.mode = ModeSelecting
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = ModeSelecting
		return m, nil
	case tea.KeyUp:
		m.moveCursor(-1)
		return m, m.loadDetails()
	case tea.KeyDown:
		m.moveCursor(1)
		return m, m.loadDetails()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.updateSearch()
	return m, tea.Batch(cmd, m.loadDetails())
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.button = 0
	case key.Matches(msg, m.keys.Right):
		m.button = 1
	case key.Matches(msg, m.keys.Switch):
		m.button = 1 - m.button
	case key.Matches(msg, m.keys.Confirm):
		if m.button == 1 {
			m.executeConfirm()
		} else {
			m.closeConfirm()
		}
	case key.Matches(msg, m.keys.Yes):
		m.executeConfirm()
	case key.Matches(msg, m.keys.No, m.keys.Cancel):
		m.closeConfirm()
	}
	return m, nil
}

func (m *Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel, m.keys.No) || msg.String() == "q":
		m.dismissPopup()
	case key.Matches(msg, m.keys.Left):
		m.button = 0
	case key.Matches(msg, m.keys.Right):
		m.button = 1
	case key.Matches(msg, m.keys.Switch):
		m.button = 1 - m.button
	case key.Matches(msg, m.keys.Confirm, m.keys.Yes):
		p, button := m.popups[0], m.button
		m.dismissPopup()
		if button == 0 && p.details.Action != nil {
			m.showMessage("Running fix command...")
			return m, m.runRemediation(p.details.Action.Command)
		}
	}
	return m, nil
}

// handleMove applies cursor movement keys.
func (m *Model) handleMove(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.pageCursor(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.pageCursor(1)
	default:
		return nil
	}
	return m.loadDetails()
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}
