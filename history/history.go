// Package history remembers the relay channels the user has opened, and the dialect their nodes speak
// so the next detection can probe the right one first.
package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/metafates/gache"
	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/log"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var cacher = gache.New[map[string]*SavedChannel](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// now is replaced in tests.
var now = time.Now

// Get returns every saved channel, keyed by channel.
func Get() (map[string]*SavedChannel, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedChannel), nil
	}
	return cached, nil
}

// Recent returns the saved channels, most recently played first.
func Recent() ([]*SavedChannel, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	channels := lo.Values(saved)
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].LastPlayed.After(channels[j].LastPlayed)
	})
	return channels, nil
}

// Save records that target, a stream of ch, is being played. Known names and dialects are kept.
func Save(target string, ch relay.Channel) error {
	return update(ch, func(s *SavedChannel) {
		s.Target = target
		s.LastPlayed = now()
	})
}

// SaveInfo stores the channel's name and contact URL.
func SaveInfo(ch relay.Channel, info relay.ChannelInfo) error {
	return update(ch, func(s *SavedChannel) {
		s.Name = info.Name
		s.ContactURL = info.ContactURL
	})
}

// Remove forgets a channel.
func Remove(ch relay.Channel) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, ch.String())
	return cacher.Set(saved)
}

func update(ch relay.Channel, fn func(*SavedChannel)) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record, ok := saved[ch.String()]
	if !ok {
		record = newSavedChannel(fmt.Sprintf("%s/stream/%s", ch.Base(), ch.ID), ch)
		record.LastPlayed = now()
	}

	fn(record)
	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Channels is the channel store backed by the history file.
type Channels struct{}

// Dialect returns the dialect last seen on ch's node, DialectUnknown when none was recorded.
func (Channels) Dialect(ch relay.Channel) relay.Dialect {
	if !viper.GetBool(key.HistoryRememberDialect) {
		return relay.DialectUnknown
	}

	saved, err := Get()
	if err != nil {
		log.Warnf("read history: %v", err)
		return relay.DialectUnknown
	}

	var (
		best   relay.Dialect
		bestAt time.Time
	)
	for _, s := range saved {
		if s.Channel().Node() != ch.Node() || s.Dialect == "" {
			continue
		}
		if d := relay.ParseDialect(s.Dialect); d != relay.DialectUnknown && s.LastPlayed.After(bestAt) {
			best, bestAt = d, s.LastPlayed
		}
	}
	return best
}

// RememberDialect stores d for ch. Unknown dialects are not stored.
func (Channels) RememberDialect(ch relay.Channel, d relay.Dialect) {
	if d == relay.DialectUnknown || !viper.GetBool(key.HistoryRememberDialect) {
		return
	}

	if err := update(ch, func(s *SavedChannel) { s.Dialect = d.String() }); err != nil {
		log.Warnf("save dialect of %s: %v", ch.Node(), err)
	}
}

// RememberInfo stores the name and contact URL of ch, unless channels are not being saved.
func (Channels) RememberInfo(ch relay.Channel, info relay.ChannelInfo) {
	if !viper.GetBool(key.HistorySaveOnPlay) {
		return
	}

	if err := SaveInfo(ch, info); err != nil {
		log.Warnf("save info of %s: %v", ch, err)
	}
}
