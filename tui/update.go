package tui

import (
	"math"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/relayplay/relayplay/session"
	"github.com/relayplay/relayplay/util"
)

const (
	seekStep   = 10.0
	volumeStep = 5
	speedStep  = 0.1
)

// notificationMsg carries one session notification into the program.
type notificationMsg struct {
	n session.Notification
}

func (b *statefulBubble) waitForNotification() tea.Cmd {
	notes := b.player.Notifications()
	return func() tea.Msg {
		n, ok := <-notes
		if !ok {
			return nil
		}
		return notificationMsg{n: n}
	}
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{b.toast.Update(msg)}

	switch msg := msg.(type) {
	case notificationMsg:
		cmds = append(cmds, b.apply(msg.n), b.waitForNotification())
		return b, tea.Batch(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, tea.Batch(append(cmds, cmd)...)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch b.state {
	case historyState:
		cmd = b.updateHistory(msg)
	case openState:
		cmd = b.updateOpen(msg)
	case playerState:
		cmd = b.updatePlayer(msg)
	case errorState:
		cmd = b.updateError(msg)
	}

	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateHistory(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && b.historyC.FilterState() != list.Filtering {
		selected, hasSelection := b.selected()

		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if hasSelection {
				return b.open(selected.Target)
			}
		case bubblesKey.Matches(msg, b.keymap.newTarget):
			b.inputC.SetValue("")
			b.newState(openState)
			return b.inputC.Focus()
		case bubblesKey.Matches(msg, b.keymap.remove):
			if hasSelection {
				return b.remove(selected)
			}
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if hasSelection {
				return openContact(selected.ContactURL)
			}
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.historyC.FilterState() == list.Unfiltered && b.target != "" {
				b.newState(playerState)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	b.historyC, cmd = b.historyC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateOpen(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			b.inputC.Blur()
			return b.open(b.inputC.Value())
		case bubblesKey.Matches(msg, b.keymap.back):
			b.inputC.Blur()
			b.previousState()
			return nil
		}
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)
	return cmd
}

func (b *statefulBubble) updatePlayer(teaMsg tea.Msg) tea.Cmd {
	msg, ok := teaMsg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case bubblesKey.Matches(msg, b.keymap.quit):
		return tea.Quit
	case bubblesKey.Matches(msg, b.keymap.back):
		b.newState(historyState)
		return b.reloadHistory()
	case bubblesKey.Matches(msg, b.keymap.playPause):
		if b.playback.State == session.Stopped {
			b.player.Play()
		} else {
			b.player.TogglePause()
		}
	case bubblesKey.Matches(msg, b.keymap.play):
		b.player.Play()
	case bubblesKey.Matches(msg, b.keymap.stop):
		b.player.Stop()
	case bubblesKey.Matches(msg, b.keymap.repeat):
		b.player.ToggleRepeat()
	case bubblesKey.Matches(msg, b.keymap.screenshot):
		b.player.Screenshot()
	case bubblesKey.Matches(msg, b.keymap.seekForward):
		b.player.Seek(b.elapsed.Elapsed + seekStep)
	case bubblesKey.Matches(msg, b.keymap.seekBackward):
		b.player.Seek(max(b.elapsed.Elapsed-seekStep, 0))
	case bubblesKey.Matches(msg, b.keymap.volumeUp):
		b.setVolume(b.volume + volumeStep)
	case bubblesKey.Matches(msg, b.keymap.volumeDown):
		b.setVolume(b.volume - volumeStep)
	case bubblesKey.Matches(msg, b.keymap.speedUp):
		b.setSpeed(b.speed + speedStep)
	case bubblesKey.Matches(msg, b.keymap.speedDown):
		b.setSpeed(b.speed - speedStep)
	case bubblesKey.Matches(msg, b.keymap.speedReset):
		b.setSpeed(1)
	case bubblesKey.Matches(msg, b.keymap.openURL):
		if info, ok := b.channel.Info.Get(); ok {
			return openContact(info.ContactURL)
		}
	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
		case bubblesKey.Matches(msg, b.keymap.quit):
			return tea.Quit
		}
	}
	return nil
}

func (b *statefulBubble) setVolume(volume int) {
	b.volume = util.Clamp(volume, 0, session.MaxVolume)
	b.player.SetVolume(b.volume)
}

func (b *statefulBubble) setSpeed(speed float64) {
	b.speed = util.Clamp(math.Round(speed*10)/10, session.MinSpeed, session.MaxSpeed)
	b.player.SetSpeed(b.speed)
}
