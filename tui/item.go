package tui

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/relayplay/relayplay/history"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/style"
)

// listItem wraps a saved channel for the history list.
type listItem struct {
	internal *history.SavedChannel
}

func (t *listItem) Title() string {
	name := t.internal.Name
	if name == "" {
		name = t.internal.ID
	}
	return icon.Get(icon.Relay) + " " + name
}

func (t *listItem) Description() string {
	parts := []string{t.internal.Channel().Node()}
	if t.internal.Dialect != "" {
		parts = append(parts, t.internal.Dialect)
	}
	if !t.internal.LastPlayed.IsZero() {
		parts = append(parts, humanize.Time(t.internal.LastPlayed))
	}
	return style.Faint(strings.Join(parts, " · "))
}

func (t *listItem) FilterValue() string {
	return t.internal.Name + " " + t.internal.ID
}
