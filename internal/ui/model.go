// Package ui keeps short-lived status toasts for the terminal interface.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/relayplay/relayplay/style"
)

// Lifetime is how long a toast stays visible.
const Lifetime = 3 * time.Second

// Toast is a message to show next to the last line of the view.
type Toast string

// ClearMsg ends the toast raised at At. Newer toasts outlive it.
type ClearMsg struct {
	At time.Time
}

// Notify returns a command raising a toast.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return Toast(text)
	}
}

// Model is the toast state.
type Model struct {
	text string
	at   time.Time
}

// Update consumes toasts and their expiry.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Toast:
		m.text = string(msg)
		m.at = time.Now()

		at := m.at
		return tea.Tick(Lifetime, func(time.Time) tea.Msg {
			return ClearMsg{At: at}
		})
	case ClearMsg:
		if msg.At.Equal(m.at) {
			m.text = ""
		}
	}
	return nil
}

// Text is the visible toast, empty when none.
func (m *Model) Text() string {
	return m.text
}

// View appends the toast to the last line of content.
func (m *Model) View(content string) string {
	if m.text == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.text)
	return strings.Join(lines, "\n")
}
