package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/grovetools/forksync/pkg/models"
)

func TestNewFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "kanagawa", New("does-not-exist").Name)
	assert.Equal(t, "gruvbox", New(" Gruvbox_Light ").Name)
	assert.Equal(t, "terminal", New("mono").Name)
}

func TestTerminalPaletteUsesANSI(t *testing.T) {
	th := New("terminal")
	assert.Equal(t, lipgloss.Color("2"), th.Colors.Green)
	assert.Equal(t, lipgloss.Color("1"), th.Colors.Red)
}

func TestTableStylesCarryNoBorder(t *testing.T) {
	for _, name := range Names() {
		th := New(name)
		assert.Equal(t, lipgloss.Border{}, th.TableBorder.GetBorderStyle(), name)
		assert.Equal(t, lipgloss.Border{}, th.TableHeader.GetBorderStyle(), name)
	}
}

func TestThemeEnvOverride(t *testing.T) {
	t.Setenv("FORKSYNC_THEME", "gruvbox")
	assert.Equal(t, "gruvbox", themeName())
}

func TestSetDefault(t *testing.T) {
	custom := New("terminal")
	SetDefault(custom)
	assert.Same(t, custom, Default())
}

func TestNamesMatchPalettes(t *testing.T) {
	for _, name := range Names() {
		_, ok := palettes[name]
		assert.True(t, ok, name)
	}
}

func TestSelectIcons(t *testing.T) {
	assert.Equal(t, NerdIcons, selectIcons("nerd"))
	assert.Equal(t, ASCIIIcons, selectIcons(""))
	assert.Equal(t, ASCIIIcons, selectIcons("ascii"))
}

func TestStatusIcons(t *testing.T) {
	assert.Equal(t, Icons.Success, IconForStatus(models.SyncedCount(3)))
	assert.Equal(t, Icons.Error, IconForStatus(models.Failed("sync failed")))
	assert.Equal(t, Icons.Skipped, IconForStatus(models.Skipped("unpushed commits")))
	assert.Equal(t, Icons.Running, IconForStatus(models.Fetching()))
	assert.Equal(t, Icons.Trash, IconForStatus(models.Deleting()))
}
