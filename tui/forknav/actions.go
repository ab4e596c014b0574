package forknav

import (
	"fmt"

	"github.com/grovetools/forksync/internal/engine"
	"github.com/grovetools/forksync/pkg/models"
)

// idle reports whether a new operation may start for the fork.
func (m *Model) idle(key string) bool {
	i, ok := m.indexOf(key)
	return ok && m.statuses[i].IsIdle()
}

func (m *Model) toggleAllVisible() {
	all := len(m.visible) > 0
	for _, i := range m.visible {
		if !m.selected[i] {
			all = false
			break
		}
	}
	for _, i := range m.visible {
		m.selected[i] = !all
	}
}

func (m *Model) openConfirm(action modalAction, target string) {
	m.confirm = &confirmation{action: action, target: target}
	if action == actionSync {
		m.confirm.count = m.selectedCount()
	}
	m.button = 1
	m.mode = ModeConfirm
}

func (m *Model) closeConfirm() {
	m.confirm = nil
	m.mode = ModeSelecting
}

func (m *Model) executeConfirm() {
	c := m.confirm
	m.closeConfirm()
	if c == nil {
		return
	}

	if c.action == actionSync {
		m.startBatch()
		return
	}

	i, ok := m.indexOf(c.target)
	if !ok {
		m.showMessage("Fork no longer listed")
		return
	}
	if !m.statuses[i].IsIdle() {
		m.showMessage("Operation in progress")
		return
	}

	var kind engine.Kind
	switch c.action {
	case actionClone:
		kind = engine.KindClone
		m.statuses[i] = models.Cloning()
		m.selected[i] = true
	case actionArchive:
		kind = engine.KindArchive
		m.statuses[i] = models.Archiving()
	case actionDelete:
		kind = engine.KindDelete
		m.statuses[i] = models.Deleting()
	}
	m.cfg.Engine.StartSingle(m.work, kind, models.NewSyncJob(i, m.forks[i]), m.cfg.DryRun)
}

// startBatch dispatches every selected fork that has no operation in
// flight and switches to Syncing.
func (m *Model) startBatch() {
	var jobs []models.SyncJob
	for i, sel := range m.selected {
		if !sel || !m.statuses[i].IsIdle() {
			continue
		}
		m.statuses[i] = models.Pending()
		jobs = append(jobs, models.NewSyncJob(i, m.forks[i]))
	}
	if len(jobs) == 0 {
		m.showMessage("Nothing to sync")
		return
	}
	m.mode = ModeSyncing
	m.cfg.Engine.StartBatchSync(m.work, jobs, m.cfg.DryRun)
}

func (m *Model) startRefresh() {
	if m.cache.Refreshing {
		return
	}
	m.cache.Refreshing = true
	m.showMessage("Refreshing from GitHub...")
	m.cfg.Engine.StartRefresh(m.work)
}

// allDone reports whether every selected fork reached a terminal status.
func (m *Model) allDone() bool {
	for i, sel := range m.selected {
		if sel && !m.statuses[i].IsTerminal() {
			return false
		}
	}
	return true
}

// resetForNextRound deselects synced forks and resets every idle status.
func (m *Model) resetForNextRound() {
	for i := range m.forks {
		if !m.statuses[i].IsIdle() {
			continue
		}
		if m.statuses[i].Kind == models.StatusSynced {
			m.selected[i] = false
		}
		m.statuses[i] = models.Pending()
	}
	m.button = 1
	m.mode = ModeSelecting
}

func (m *Model) pushPopup(key string, d models.ErrorDetails) {
	m.popups = append(m.popups, popup{key: key, details: d})
	if m.mode != ModeError {
		m.prevMode = m.mode
		if m.prevMode == ModeConfirm {
			m.confirm = nil
			m.prevMode = ModeSelecting
		}
		m.mode = ModeError
		m.button = 0
	}
}

func (m *Model) dismissPopup() {
	if len(m.popups) > 0 {
		m.popups = m.popups[1:]
	}
	if len(m.popups) > 0 {
		m.button = 0
		return
	}
	m.mode = m.prevMode
	m.button = 1
	m.checkDone()
}

func (m *Model) checkDone() {
	if m.mode == ModeSyncing && m.allDone() {
		m.mode = ModeDone
	}
}

// removeFork drops the fork at i from every parallel slice.
func (m *Model) removeFork(i int) {
	key := m.forks[i].Key()
	m.forks = append(m.forks[:i], m.forks[i+1:]...)
	m.statuses = append(m.statuses[:i], m.statuses[i+1:]...)
	m.selected = append(m.selected[:i], m.selected[i+1:]...)
	delete(m.details, key)
	m.updateSearch()
}

// replaceForks installs a refreshed list, keeping status and selection for
// forks that are still present.
func (m *Model) replaceForks(forks []models.Fork) {
	type kept struct {
		status   models.SyncStatus
		selected bool
	}
	prev := make(map[string]kept, len(m.forks))
	for i, f := range m.forks {
		prev[f.Key()] = kept{status: m.statuses[i], selected: m.selected[i]}
	}

	var currentKey string
	if f, ok := m.current(); ok {
		currentKey = f.Key()
	}

	m.forks = append([]models.Fork(nil), forks...)
	m.statuses = make([]models.SyncStatus, len(forks))
	m.selected = make([]bool, len(forks))
	for i, f := range m.forks {
		m.statuses[i] = models.Pending()
		if k, ok := prev[f.Key()]; ok {
			m.statuses[i] = k.status
			m.selected[i] = k.selected
		}
	}
	m.updateSearch()

	if currentKey != "" {
		for pos, i := range m.visible {
			if m.forks[i].Key() == currentKey {
				m.cursor = pos
				break
			}
		}
		m.ensureCursorVisible()
	}
}

func (m *Model) onTick() {
	now := m.now()

	if m.message != "" && now.Sub(m.messageAt) > StatusMessageTTL {
		m.message = ""
	}
	if now.Sub(m.frameAt) >= m.frameEvery {
		m.frame = (m.frame + 1) % len(m.frames)
		m.frameAt = now
	}

	select {
	case <-m.clonesChange:
		m.recomputeCloned()
	default:
	}

	for _, ev := range m.cfg.Engine.Events().Drain() {
		m.apply(ev)
	}
	m.checkDone()
}

// apply folds one progress event into the model. Per-fork events are
// resolved by key because the list may have shifted since dispatch.
func (m *Model) apply(ev models.ProgressEvent) {
	if index, key, ok := models.Target(ev); ok {
		i, found := models.ResolveIndex(m.forks, index, key)
		if !found {
			m.log.WithField("fork", key).Debug("Ignoring event for fork no longer listed")
			return
		}
		m.applyFork(i, ev)
		return
	}

	switch e := ev.(type) {
	case models.ForksRefreshed:
		m.replaceForks(e.Forks)
		now := m.now()
		m.cache = models.CacheStatus{Kind: models.CacheFresh, LastSync: &now}
		m.showMessage("Forks refreshed!")
	case models.RefreshFailed:
		m.cache.Refreshing = false
		m.showMessage("Refresh failed: " + e.Reason)
	}
}

func (m *Model) applyFork(i int, ev models.ProgressEvent) {
	switch e := ev.(type) {
	case models.StatusUpdate:
		m.statuses[i] = e.Status
	case models.ForkCloned:
		m.forks[i].IsCloned = true
		if m.cfg.Catalog != nil {
			m.cfg.Catalog.Remember(m.forks[i])
		}
		m.showMessage(fmt.Sprintf("Cloned %s", m.forks[i].Key()))
	case models.ForkArchived:
		if m.cfg.Catalog != nil {
			m.cfg.Catalog.Forget(m.forks[i])
		}
		m.removeFork(i)
		m.showMessage("Fork archived!")
	case models.ForkDeleted:
		if m.cfg.Catalog != nil {
			m.cfg.Catalog.Forget(m.forks[i])
		}
		m.removeFork(i)
		m.showMessage("Fork deleted!")
	case models.ActionableError:
		m.pushPopup(m.forks[i].Key(), e.Details)
	}
}

func (m *Model) recomputeCloned() {
	for i := range m.forks {
		m.forks[i] = m.forks[i].RefreshCloned()
	}
}
