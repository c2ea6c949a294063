package style

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the interface uses.
var (
	Base    = lipgloss.Color("#1e1e2e")
	Text    = lipgloss.Color("#cdd6f4")
	Overlay = lipgloss.Color("#6c7086")
	Mauve   = lipgloss.Color("#cba6f7")
	Red     = lipgloss.Color("#f38ba8")
	Peach   = lipgloss.Color("#fab387")
	Yellow  = lipgloss.Color("#f9e2af")
	Green   = lipgloss.Color("#a6e3a1")
	Sky     = lipgloss.Color("#89dceb")
)

var (
	AccentColor = Mauve
	ErrorColor  = Red
	HiRed       = Red
	FaintColor  = Overlay
)

// Playback state colors of the now-playing view.
var (
	PlayingColor    = Green
	PausedColor     = Yellow
	ConnectingColor = Sky
	StoppedColor    = Peach
)
