package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/relayplay/relayplay/history"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/internal/ui"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/log"
	"github.com/relayplay/relayplay/open"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/session"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

var errNothingToContinue = errors.New("no channel has been played yet")

// apply mirrors one session notification.
func (b *statefulBubble) apply(n session.Notification) tea.Cmd {
	switch n := n.(type) {
	case session.StateChanged:
		b.playback = n
		if n.State != session.Ready {
			b.progress = mo.None[session.Progress]()
		}
	case session.TimeChanged:
		b.elapsed = n
	case session.ChannelChanged:
		b.channel = n
	case session.MetaChanged:
		b.meta[n.Kind] = n.Value
	case session.OutputLine:
		b.output = append(b.output, n.Text)
		if len(b.output) > outputLines {
			b.output = b.output[len(b.output)-outputLines:]
		}
	case session.Progress:
		b.progress = mo.Some(n)
	case session.RepeatChanged:
		b.repeat = n
	case session.Fatal:
		b.raiseError(n.Err)
	case session.GaveUp:
		return ui.Notify(fmt.Sprintf("%s %s", icon.Get(icon.Fail), n.Error()))
	case session.ScreenshotTaken:
		if n.Err != nil {
			return ui.Notify(fmt.Sprintf("%s screenshot: %v", icon.Get(icon.Fail), n.Err))
		}
		return ui.Notify(fmt.Sprintf("%s %s", icon.Get(icon.Camera), filepath.Base(n.Path)))
	}

	return nil
}

// open plays target and switches to the player view.
func (b *statefulBubble) open(target string) tea.Cmd {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	b.resetSession(target)
	b.player.Open(target)

	if ch := relay.ParseTarget(target); ch.IsRelay() && viper.GetBool(key.HistorySaveOnPlay) {
		if err := history.Save(target, ch); err != nil {
			log.Warnf("save %s: %v", ch, err)
		}
	}

	b.newState(playerState)
	return b.spinnerC.Tick
}

func (b *statefulBubble) remove(saved *history.SavedChannel) tea.Cmd {
	if err := history.Remove(saved.Channel()); err != nil {
		b.raiseError(err)
		return nil
	}

	return tea.Batch(b.reloadHistory(), ui.Notify(fmt.Sprintf("%s removed %s", icon.Get(icon.Success), saved)))
}

func (b *statefulBubble) loadHistory() error {
	recent, err := history.Recent()
	if err != nil {
		return err
	}

	b.historyC.SetItems(lo.Map(recent, func(s *history.SavedChannel, _ int) list.Item {
		return &listItem{internal: s}
	}))
	return nil
}

func (b *statefulBubble) reloadHistory() tea.Cmd {
	if err := b.loadHistory(); err != nil {
		b.raiseError(err)
	}
	return nil
}

func (b *statefulBubble) mostRecent() (*history.SavedChannel, bool) {
	items := b.historyC.Items()
	if len(items) == 0 {
		return nil, false
	}
	return items[0].(*listItem).internal, true
}

func (b *statefulBubble) selected() (*history.SavedChannel, bool) {
	item, ok := b.historyC.SelectedItem().(*listItem)
	if !ok {
		return nil, false
	}
	return item.internal, true
}

func openContact(url string) tea.Cmd {
	if err := open.URL(url); err != nil {
		return ui.Notify(fmt.Sprintf("%s %v", icon.Get(icon.Fail), err))
	}
	return ui.Notify(fmt.Sprintf("%s opened %s", icon.Get(icon.Success), url))
}
