package session

import (
	"time"

	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/player"
	"github.com/relayplay/relayplay/protocol"
	"github.com/relayplay/relayplay/task"
	"github.com/relayplay/relayplay/where"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// DefaultMaxAttempts is how many automatic reconnects a relay stream gets.
	DefaultMaxAttempts = 3
	// DefaultControlInterval separates stall checks of a playing relay stream.
	DefaultControlInterval = 6 * time.Second
	// DefaultStallErrors is the cache starvation count per control interval treated as a stall.
	DefaultStallErrors = 20
	// DefaultRenameDelay leaves the decoder time to finish writing a screenshot.
	DefaultRenameDelay = 500 * time.Millisecond
)

// Adjustments are the video equalizer values, each from -100 to 100.
type Adjustments struct {
	Brightness, Contrast, Hue, Saturation, Gamma int
}

// Options configure a controller. Launcher, Relay and Tasks are required.
type Options struct {
	Launcher player.Launcher
	Relay    Relay
	Tasks    *task.Registry

	Channels ChannelStore
	Playlist Playlist
	Parser   *protocol.Parser

	MaxAttempts     int
	ControlInterval time.Duration
	StallErrors     int

	DisconnectOnStop bool
	DisconnectDelay  time.Duration

	Volume      int
	Speed       float64
	Adjustments Adjustments

	ScreenshotDir string
	RenameDelay   time.Duration
}

// ConfigOptions fills the tunables from the configuration. The collaborators are left to the caller.
func ConfigOptions() Options {
	return Options{
		MaxAttempts:      viper.GetInt(key.RelayReconnectAttempts),
		ControlInterval:  time.Duration(viper.GetInt(key.RelayControlInterval)) * time.Second,
		StallErrors:      viper.GetInt(key.RelayStallErrors),
		DisconnectOnStop: viper.GetBool(key.RelayDisconnectOnStop),
		DisconnectDelay:  time.Duration(viper.GetInt(key.RelayDisconnectDelay)) * time.Second,
		Volume:           viper.GetInt(key.PlayerVolume),
		Speed:            cast.ToFloat64(viper.Get(key.PlayerSpeed)),
		Adjustments: Adjustments{
			Brightness: viper.GetInt(key.PlayerBrightness),
			Contrast:   viper.GetInt(key.PlayerContrast),
			Hue:        viper.GetInt(key.PlayerHue),
			Saturation: viper.GetInt(key.PlayerSaturation),
			Gamma:      viper.GetInt(key.PlayerGamma),
		},
		ScreenshotDir: where.Screenshots(),
		RenameDelay:   DefaultRenameDelay,
	}
}

func (o *Options) fill() {
	if o.Parser == nil {
		o.Parser = protocol.New()
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.ControlInterval <= 0 {
		o.ControlInterval = DefaultControlInterval
	}
	if o.StallErrors <= 0 {
		o.StallErrors = DefaultStallErrors
	}
	if o.Speed <= 0 {
		o.Speed = 1
	}
	if o.RenameDelay <= 0 {
		o.RenameDelay = DefaultRenameDelay
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = where.Screenshots()
	}
}
