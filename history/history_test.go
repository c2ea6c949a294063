package history

import (
	"testing"
	"time"

	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/relay"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a relay channel", t, func() {
		target := "http://history.test:7144/stream/0123456789ABCDEF0123456789ABCDEF.flv"
		ch := relay.ParseTarget(target)

		Convey("When saving the channel", func() {
			err := Save(target, ch)
			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the channel should be saved", func() {
					channels, err := Get()
					So(err, ShouldBeNil)
					So(channels[ch.String()].Target, ShouldEqual, target)
					So(channels[ch.String()].Channel(), ShouldResemble, ch)
				})
			})

			Convey("And its info should be kept with it", func() {
				So(SaveInfo(ch, relay.ChannelInfo{Name: "Evening show", ContactURL: "http://example.com"}), ShouldBeNil)

				channels, _ := Get()
				So(channels[ch.String()].Name, ShouldEqual, "Evening show")
				So(channels[ch.String()].String(), ShouldEqual, "Evening show @ history.test:7144")
				So(channels[ch.String()].Target, ShouldEqual, target)
			})

			Convey("And removing it should forget it", func() {
				So(Remove(ch), ShouldBeNil)
				channels, _ := Get()
				So(channels, ShouldNotContainKey, ch.String())
			})
		})
	})
}

func TestRecent(t *testing.T) {
	Convey("Given channels played at different times", t, func() {
		defer func() { now = time.Now }()

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		first := relay.Channel{Host: "recent.test", Port: 7144, ID: "11111111111111111111111111111111"}
		second := relay.Channel{Host: "recent.test", Port: 7144, ID: "22222222222222222222222222222222"}

		now = func() time.Time { return base }
		So(Save("a", first), ShouldBeNil)
		now = func() time.Time { return base.Add(time.Hour) }
		So(Save("b", second), ShouldBeNil)

		recent, err := Recent()
		So(err, ShouldBeNil)

		var order []string
		for _, s := range recent {
			if s.Host == "recent.test" {
				order = append(order, s.Target)
			}
		}
		So(order, ShouldResemble, []string{"b", "a"})
	})
}

func TestDialects(t *testing.T) {
	Convey("Given the dialect store", t, func() {
		viper.Set(key.HistoryRememberDialect, true)
		viper.Set(key.HistorySaveOnPlay, true)
		So(cacher.Set(make(map[string]*SavedChannel)), ShouldBeNil)
		defer func() { now = time.Now }()

		var store Channels
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		ch := relay.Channel{Host: "dialect.test", Port: 7144, ID: "33333333333333333333333333333333"}
		sibling := relay.Channel{Host: "dialect.test", Port: 7144, ID: "44444444444444444444444444444444"}

		Convey("An unseen node should be unknown", func() {
			So(store.Dialect(relay.Channel{Host: "nowhere.test", Port: 1}), ShouldEqual, relay.DialectUnknown)
		})

		Convey("A remembered dialect should apply to every channel of the node", func() {
			now = func() time.Time { return base }
			store.RememberDialect(ch, relay.DialectStation)
			So(store.Dialect(ch), ShouldEqual, relay.DialectStation)
			So(store.Dialect(sibling), ShouldEqual, relay.DialectStation)

			Convey("The most recent record should win", func() {
				now = func() time.Time { return base.Add(time.Minute) }
				store.RememberDialect(sibling, relay.DialectClassic)
				So(store.Dialect(ch), ShouldEqual, relay.DialectClassic)
			})

			Convey("Unknown dialects should not overwrite it", func() {
				store.RememberDialect(ch, relay.DialectUnknown)
				So(store.Dialect(ch), ShouldEqual, relay.DialectStation)
			})
		})

		Convey("Info should be stored with the channel", func() {
			store.RememberInfo(ch, relay.ChannelInfo{Name: "Night radio"})
			channels, _ := Get()
			So(channels[ch.String()].Name, ShouldEqual, "Night radio")
		})

		Convey("Hints should be ignored when disabled", func() {
			store.RememberDialect(ch, relay.DialectStation)
			viper.Set(key.HistoryRememberDialect, false)
			defer viper.Set(key.HistoryRememberDialect, true)
			So(store.Dialect(ch), ShouldEqual, relay.DialectUnknown)
		})
	})
}
