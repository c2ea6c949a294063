package tui

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/history"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/session"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

const relayTarget = "http://tui.test:7144/stream/0123456789ABCDEF0123456789ABCDEF.flv"

type fakePlayer struct {
	calls []string
	notes chan session.Notification
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{notes: make(chan session.Notification, 16)}
}

func (p *fakePlayer) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePlayer) Open(target string) { p.record("open %s", target) }
func (p *fakePlayer) Play() { p.record("play") }
func (p *fakePlayer) TogglePause() { p.record("pause") }
func (p *fakePlayer) Stop() { p.record("stop") }
func (p *fakePlayer) Seek(seconds float64) { p.record("seek %.1f", seconds) }
func (p *fakePlayer) ToggleRepeat() { p.record("repeat") }
func (p *fakePlayer) SetSpeed(speed float64) { p.record("speed %.1f", speed) }
func (p *fakePlayer) SetVolume(volume int) { p.record("volume %d", volume) }
func (p *fakePlayer) Screenshot() { p.record("screenshot") }
func (p *fakePlayer) Notifications() <-chan session.Notification { return p.notes }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(b *statefulBubble, msgs ...tea.Msg) {
	for _, msg := range msgs {
		b.Update(msg)
	}
}

func TestPlayerView(t *testing.T) {
	Convey("Given a bubble playing a relay channel", t, func() {
		viper.Set(key.PlayerVolume, 50)
		viper.Set(key.PlayerSpeed, 1.0)
		viper.Set(key.HistorySaveOnPlay, true)

		player := newFakePlayer()
		b := newBubble(&Options{Player: player})
		b.open(relayTarget)

		So(b.state, ShouldEqual, playerState)
		So(player.calls, ShouldResemble, []string{"open " + relayTarget})

		ch := relay.ParseTarget(relayTarget)
		press(b,
			notificationMsg{session.StateChanged{State: session.Playing, Status: "Playing · Receive, 1/3 relays"}},
			notificationMsg{session.TimeChanged{Elapsed: 65, Display: "01:05"}},
			notificationMsg{session.ChannelChanged{Channel: ch, Dialect: relay.DialectClassic, Info: mo.Some(relay.ChannelInfo{Name: "Evening show", Bitrate: 500})}},
		)

		Convey("The view should mirror the session", func() {
			view := b.View()
			So(view, ShouldContainSubstring, "Evening show")
			So(view, ShouldContainSubstring, "01:05")
			So(view, ShouldContainSubstring, "Receive, 1/3 relays")
			So(view, ShouldContainSubstring, "500 kbps")
		})

		Convey("Keys should drive the player", func() {
			press(b, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, runes("s"), runes("+"), runes("]"), runes("r"), runes("c"), runes("l"))
			So(player.calls[1:], ShouldResemble, []string{"pause", "stop", "volume 55", "speed 1.1", "repeat", "screenshot", "seek 75.0"})

			Convey("and space should play again once stopped", func() {
				press(b, notificationMsg{session.StateChanged{State: session.Stopped, Status: "Stopped"}}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
				So(player.calls[len(player.calls)-1], ShouldEqual, "play")
			})
		})

		Convey("Volume should stay within bounds", func() {
			for i := 0; i < 20; i++ {
				press(b, runes("+"))
			}
			So(b.volume, ShouldEqual, session.MaxVolume)
		})

		Convey("Only the last decoder lines should be kept", func() {
			for i := 0; i < outputLines+3; i++ {
				press(b, notificationMsg{session.OutputLine{Text: fmt.Sprintf("line %d", i)}})
			}
			So(b.output, ShouldHaveLength, outputLines)
			So(b.output[len(b.output)-1], ShouldEqual, fmt.Sprintf("line %d", outputLines+2))
		})

		Convey("A fatal error should show and esc should go back", func() {
			press(b, notificationMsg{session.Fatal{Err: errors.New("decoder not found")}})
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "decoder not found")

			press(b, tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, playerState)
		})

		Convey("The channel should be in the history list", func() {
			press(b, tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, historyState)

			recent, ok := b.mostRecent()
			So(ok, ShouldBeTrue)
			So(recent.Channel(), ShouldResemble, ch)
			So(recent.Target, ShouldEqual, relayTarget)

			Convey("and removing it should empty the list", func() {
				press(b, runes("d"))
				_, ok := b.mostRecent()
				So(ok, ShouldBeFalse)

				saved, err := history.Get()
				So(err, ShouldBeNil)
				So(saved, ShouldNotContainKey, ch.String())
			})
		})
	})
}

func TestKeymapHelp(t *testing.T) {
	Convey("Every state should offer a way out", t, func() {
		k := newStatefulKeymap()
		for _, s := range []state{historyState, openState, playerState, errorState} {
			k.setState(s)
			So(k.ShortHelp(), ShouldNotBeEmpty)
			So(k.FullHelp()[0], ShouldNotBeEmpty)
		}
	})
}

func TestBind(t *testing.T) {
	Convey("Given a binding with several keys", t, func() {
		b := bind("", "volume down", "-", "9")

		Convey("The help label should default to the first key", func() {
			So(b.Help().Key, ShouldEqual, "-")
			So(b.Keys(), ShouldResemble, []string{"-", "9"})
		})

		Convey("withDescription should keep keys and label", func() {
			d := withDescription(b, "quieter")
			So(d.Help().Key, ShouldEqual, "-")
			So(d.Help().Desc, ShouldEqual, "quieter")
			So(d.Keys(), ShouldResemble, b.Keys())
		})
	})
}
