package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm, back,
	remove, newTarget, openURL,
	up, down, left, right,
	top, bottom,
	playPause, play, stop,
	repeat, screenshot,
	volumeUp, volumeDown,
	speedUp, speedDown, speedReset,
	seekForward, seekBackward,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

// bind makes a binding whose help label is the first of its keys unless label is set.
func bind(label, description string, keys ...string) key.Binding {
	if label == "" {
		label = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, description))
}

func newStatefulKeymap() *statefulKeymap {
	accent := style.Fg(color.Orange)

	return &statefulKeymap{
		quit:      bind("", "quit", "q"),
		forceQuit: bind("ctrl+c", "quit", "ctrl+c", "ctrl+d"),
		confirm:   bind(accent("enter"), accent("play"), "enter"),
		back:      bind("", "back", "esc"),

		remove:    bind("", "remove", "d"),
		newTarget: bind("", "open url", "n"),
		openURL:   bind("", "contact page", "o"),

		up:     bind("↑", "up", "up", "k"),
		down:   bind("↓", "down", "down", "j"),
		left:   bind("←", "left", "left", "h"),
		right:  bind("→", "right", "right", "l"),
		top:    bind("", "top", "g"),
		bottom: bind("", "bottom", "G"),

		playPause:  bind("space", "pause/resume", " "),
		play:       bind("", "play/restart", "p"),
		stop:       bind("", "stop", "s"),
		repeat:     bind("", "a-b repeat", "r"),
		screenshot: bind("", "screenshot", "c"),

		volumeUp:   bind("+", "volume up", "+", "=", "0"),
		volumeDown: bind("-", "volume down", "-", "9"),
		speedUp:    bind("", "faster", "]"),
		speedDown:  bind("", "slower", "["),
		speedReset: bind("", "normal speed", "backspace"),

		seekForward:  bind("→", "+10s", "right", "l"),
		seekBackward: bind("←", "-10s", "left", "h"),

		showHelp: bind("", "help", "?"),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case historyState:
		return h(k.confirm, k.newTarget, k.remove), h(k.confirm, k.newTarget, k.remove, k.openURL, k.quit)
	case openState:
		return to2(h(withDescription(k.confirm, "open"), k.back))
	case playerState:
		return h(k.playPause, k.stop, k.showHelp, k.back),
			h(k.playPause, k.play, k.stop, k.seekBackward, k.seekForward, k.repeat, k.screenshot,
				k.volumeDown, k.volumeUp, k.speedDown, k.speedUp, k.speedReset, k.openURL, k.back, k.quit)
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		Filter:               bind("", "filter", "/"),
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: withDescription(k.confirm, "apply filter"),
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return bind(k.Help().Key, description, k.Keys()...)
}
