// Package style holds the lipgloss styles shared by the terminal interface and the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/relayplay/relayplay/color"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored is a style with fg on bg. An empty color leaves that side alone.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer painting text in c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a view heading.
var Title = func(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

var ErrorTitle = func(s string) string {
	return Colored(color.New("230"), color.Red).Padding(0, 1).Render(s)
}

// ListTitle renders the heading of the channel history list.
var ListTitle = Colored(Base, Yellow).Padding(0, 1)
