// Package theme holds the palettes and styles shared by the forksync
// interface and console output.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/forksync/config"
)

const defaultThemeName = "kanagawa"

// Kanagawa (dragon for dark terminals, lotus-inspired for light ones).
const (
	kanagawaDarkGreen    = "#98BB6C"
	kanagawaDarkYellow   = "#FF9E3B"
	kanagawaDarkRed      = "#FF5D62"
	kanagawaDarkOrange   = "#FFA066"
	kanagawaDarkCyan     = "#7E9CD8"
	kanagawaDarkViolet   = "#957FB8"
	kanagawaDarkText     = "#DCD7BA"
	kanagawaDarkMuted    = "#727169"
	kanagawaDarkBorder   = "#363646"
	kanagawaDarkSelected = "#223249"

	kanagawaLightGreen    = "#4E7C5A"
	kanagawaLightYellow   = "#A68A64"
	kanagawaLightRed      = "#C34043"
	kanagawaLightOrange   = "#CC6B4E"
	kanagawaLightCyan     = "#5B8BBE"
	kanagawaLightViolet   = "#674D7A"
	kanagawaLightText     = "#2B2F42"
	kanagawaLightMuted    = "#6C7086"
	kanagawaLightBorder   = "#B5BDC5"
	kanagawaLightSelected = "#E2E6F3"
)

// Gruvbox.
const (
	gruvboxDarkGreen    = "#B8BB26"
	gruvboxDarkYellow   = "#FABD2F"
	gruvboxDarkRed      = "#FB4934"
	gruvboxDarkOrange   = "#FE8019"
	gruvboxDarkCyan     = "#83A598"
	gruvboxDarkViolet   = "#B16286"
	gruvboxDarkText     = "#EBDBB2"
	gruvboxDarkMuted    = "#BDAE93"
	gruvboxDarkBorder   = "#504945"
	gruvboxDarkSelected = "#32302F"

	gruvboxLightGreen    = "#98971A"
	gruvboxLightYellow   = "#D79921"
	gruvboxLightRed      = "#CC241D"
	gruvboxLightOrange   = "#D65D0E"
	gruvboxLightCyan     = "#458588"
	gruvboxLightViolet   = "#8F3F71"
	gruvboxLightText     = "#3C3836"
	gruvboxLightMuted    = "#928374"
	gruvboxLightBorder   = "#D5C4A1"
	gruvboxLightSelected = "#F2E5BC"
)

// Colors is the palette a theme is built from.
type Colors struct {
	Green    lipgloss.TerminalColor
	Yellow   lipgloss.TerminalColor
	Red      lipgloss.TerminalColor
	Orange   lipgloss.TerminalColor
	Cyan     lipgloss.TerminalColor
	Violet   lipgloss.TerminalColor
	Text     lipgloss.TerminalColor
	Muted    lipgloss.TerminalColor
	Border   lipgloss.TerminalColor
	Selected lipgloss.TerminalColor
}

// Theme holds the pre-configured styles.
type Theme struct {
	Name   string
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold        lipgloss.Style
	Normal      lipgloss.Style
	Muted       lipgloss.Style
	Selected    lipgloss.Style
	SelectedRow lipgloss.Style

	TableHeader lipgloss.Style
	TableBorder lipgloss.Style

	Box        lipgloss.Style
	DetailsBox lipgloss.Style
	Popup      lipgloss.Style

	Highlight lipgloss.Style
	Accent    lipgloss.Style
	Cursor    lipgloss.Style
}

var palettes = map[string]func() Colors{
	"kanagawa": kanagawa,
	"gruvbox":  gruvbox,
	"terminal": terminal,
}

var (
	defaultOnce  sync.Once
	defaultTheme *Theme
)

// Default returns the theme selected by FORKSYNC_THEME or the config
// file, resolved once.
func Default() *Theme {
	defaultOnce.Do(func() {
		defaultTheme = New(themeName())
	})
	return defaultTheme
}

// SetDefault replaces the shared theme, for example after flags were
// parsed.
func SetDefault(t *Theme) {
	defaultOnce.Do(func() {})
	defaultTheme = t
}

// New builds the named theme. Unknown names fall back to kanagawa.
func New(name string) *Theme {
	key := normalizeName(name)
	build, ok := palettes[key]
	if !ok {
		key = defaultThemeName
		build = palettes[key]
	}
	return fromColors(key, build())
}

// Names lists the available themes.
func Names() []string {
	return append([]string(nil), config.Themes...)
}

func fromColors(name string, c Colors) *Theme {
	return &Theme{
		Name:   name,
		Colors: c,

		Header: lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(c.Violet),

		Success: lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(c.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(c.Cyan).Bold(true),

		Bold:        lipgloss.NewStyle().Bold(true),
		Normal:      lipgloss.NewStyle(),
		Muted:       lipgloss.NewStyle().Foreground(c.Muted),
		Selected:    lipgloss.NewStyle().Background(c.Selected).Foreground(c.Text),
		SelectedRow: lipgloss.NewStyle().Background(c.Selected),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(c.Violet),
		TableBorder: lipgloss.NewStyle().Foreground(c.Border),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(1, 2),
		DetailsBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c.Violet).
			Padding(0, 1),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(c.Red).
			Padding(1, 2),

		Highlight: lipgloss.NewStyle().Foreground(c.Orange).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(c.Violet).Bold(true),
		Cursor:    lipgloss.NewStyle().Foreground(c.Orange).Bold(true),
	}
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "kanagawa-dark", "kanagawa-dragon", "kanagawa-wave":
		return "kanagawa"
	case "gruvbox-dark", "gruvbox-light":
		return "gruvbox"
	case "ansi", "mono":
		return "terminal"
	}
	return n
}

func themeName() string {
	if name := normalizeName(os.Getenv("FORKSYNC_THEME")); name != "" {
		return name
	}
	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil || cfg.Theme == "" {
		return defaultThemeName
	}
	return cfg.Theme
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func kanagawa() Colors {
	return Colors{
		Green:    adaptive(kanagawaLightGreen, kanagawaDarkGreen),
		Yellow:   adaptive(kanagawaLightYellow, kanagawaDarkYellow),
		Red:      adaptive(kanagawaLightRed, kanagawaDarkRed),
		Orange:   adaptive(kanagawaLightOrange, kanagawaDarkOrange),
		Cyan:     adaptive(kanagawaLightCyan, kanagawaDarkCyan),
		Violet:   adaptive(kanagawaLightViolet, kanagawaDarkViolet),
		Text:     adaptive(kanagawaLightText, kanagawaDarkText),
		Muted:    adaptive(kanagawaLightMuted, kanagawaDarkMuted),
		Border:   adaptive(kanagawaLightBorder, kanagawaDarkBorder),
		Selected: adaptive(kanagawaLightSelected, kanagawaDarkSelected),
	}
}

func gruvbox() Colors {
	return Colors{
		Green:    adaptive(gruvboxLightGreen, gruvboxDarkGreen),
		Yellow:   adaptive(gruvboxLightYellow, gruvboxDarkYellow),
		Red:      adaptive(gruvboxLightRed, gruvboxDarkRed),
		Orange:   adaptive(gruvboxLightOrange, gruvboxDarkOrange),
		Cyan:     adaptive(gruvboxLightCyan, gruvboxDarkCyan),
		Violet:   adaptive(gruvboxLightViolet, gruvboxDarkViolet),
		Text:     adaptive(gruvboxLightText, gruvboxDarkText),
		Muted:    adaptive(gruvboxLightMuted, gruvboxDarkMuted),
		Border:   adaptive(gruvboxLightBorder, gruvboxDarkBorder),
		Selected: adaptive(gruvboxLightSelected, gruvboxDarkSelected),
	}
}

// terminal uses the 16 ANSI colors so the user's terminal scheme applies.
func terminal() Colors {
	return Colors{
		Green:    lipgloss.Color("2"),
		Yellow:   lipgloss.Color("3"),
		Red:      lipgloss.Color("1"),
		Orange:   lipgloss.Color("208"),
		Cyan:     lipgloss.Color("6"),
		Violet:   lipgloss.Color("5"),
		Text:     lipgloss.Color("7"),
		Muted:    lipgloss.Color("8"),
		Border:   lipgloss.Color("8"),
		Selected: lipgloss.Color("8"),
	}
}
