// Package tui holds terminal setup shared by the interactive views.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// InitializeTUI sets the lipgloss color profile from the environment.
// NO_COLOR disables color; CLICOLOR_FORCE=1 or COLORTERM=truecolor force
// true color even when stdout is not a terminal.
func InitializeTUI() {
	lipgloss.SetColorProfile(ColorProfile(os.Getenv))
}

// ColorProfile picks a profile from environment lookups.
func ColorProfile(getenv func(string) string) termenv.Profile {
	switch {
	case getenv("NO_COLOR") != "":
		return termenv.Ascii
	case getenv("CLICOLOR_FORCE") == "1" || getenv("COLORTERM") == "truecolor":
		return termenv.TrueColor
	}
	return termenv.EnvColorProfile()
}
