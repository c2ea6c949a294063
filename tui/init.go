package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts listening to the session and opens the initial target, if any.
func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{b.waitForNotification(), b.spinnerC.Tick}

	if b.options.Target != "" {
		cmds = append(cmds, b.open(b.options.Target))
	} else {
		b.setState(historyState)
		cmds = append(cmds, textinput.Blink)
	}

	return tea.Batch(cmds...)
}
