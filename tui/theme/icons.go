package theme

import "os"

// IconSet is the glyphs used for statuses and markers.
type IconSet struct {
	Success  string
	Error    string
	Warning  string
	Info     string
	Running  string
	Pending  string
	Skipped  string
	Selected string
	Cursor   string
	Bullet   string
	Repo     string
	Branch   string
	Archive  string
	Trash    string
	Cloned   string
	Remote   string
}

// NerdIcons needs a patched Nerd Font.
var NerdIcons = IconSet{
	Success:  "󰄬",
	Error:    "\uea87",
	Warning:  "\uf071",
	Info:     "󰋼",
	Running:  "\uf021",
	Pending:  "󰦖",
	Skipped:  "󰒭",
	Selected: "󰱒",
	Cursor:   "󰁔",
	Bullet:   "\uf444",
	Repo:     "\uea62",
	Branch:   "\ue725",
	Archive:  "󰀼",
	Trash:    "󰩹",
	Cloned:   "\uf413",
	Remote:   "\uf0c2",
}

// ASCIIIcons works in any terminal font.
var ASCIIIcons = IconSet{
	Success:  "✓",
	Error:    "✗",
	Warning:  "⚠",
	Info:     "ℹ",
	Running:  "◐",
	Pending:  "…",
	Skipped:  "»",
	Selected: "■",
	Cursor:   "▶",
	Bullet:   "•",
	Repo:     "●",
	Branch:   "⎇",
	Archive:  "▣",
	Trash:    "⌫",
	Cloned:   "◆",
	Remote:   "◇",
}

// Icons is the active set. FORKSYNC_ICONS=nerd opts into Nerd Font glyphs.
var Icons = selectIcons(os.Getenv("FORKSYNC_ICONS"))

func selectIcons(mode string) IconSet {
	if mode == "nerd" {
		return NerdIcons
	}
	return ASCIIIcons
}
