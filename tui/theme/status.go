package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/forksync/pkg/models"
)

// ForStatus returns the style used to render a fork status.
func (t *Theme) ForStatus(s models.SyncStatus) lipgloss.Style {
	switch s.Kind {
	case models.StatusSynced:
		return t.Success
	case models.StatusFailed:
		return t.Error
	case models.StatusSkipped:
		return t.Warning
	case models.StatusPending:
		return t.Muted
	}
	return t.Info
}

// IconForStatus returns the glyph for a fork status.
func IconForStatus(s models.SyncStatus) string {
	switch s.Kind {
	case models.StatusSynced:
		return Icons.Success
	case models.StatusFailed:
		return Icons.Error
	case models.StatusSkipped:
		return Icons.Skipped
	case models.StatusPending:
		return Icons.Pending
	case models.StatusArchiving:
		return Icons.Archive
	case models.StatusDeleting:
		return Icons.Trash
	}
	return Icons.Running
}
