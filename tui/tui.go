// Package tui is the terminal interface: a history of relay channels and a now-playing screen
// driven by the session's notifications.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/relayplay/relayplay/session"
)

// Player is the playback session as the interface sees it.
type Player interface {
	Open(target string)
	Play()
	TogglePause()
	Stop()
	Seek(seconds float64)
	ToggleRepeat()
	SetSpeed(speed float64)
	SetVolume(volume int)
	Screenshot()
	Notifications() <-chan session.Notification
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Player Player
	// Target is opened right away when set.
	Target string
	// Continue reopens the most recently played channel.
	Continue bool
}

// Run executes the interface until the user quits. Stopping the session is left to the caller.
func Run(options *Options) error {
	bubble := newBubble(options)

	if err := bubble.loadHistory(); err != nil {
		return err
	}

	if options.Target == "" && options.Continue {
		recent, ok := bubble.mostRecent()
		if !ok {
			return errNothingToContinue
		}
		options.Target = recent.Target
	}

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
