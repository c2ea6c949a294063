// Package config holds the settings registry and the viper setup behind it.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Field is a setting with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

var fields = []Field{
	{key.PlayerBinary, "mplayer", "Decoder executable, resolved through PATH when not absolute"},
	{key.PlayerArgs, []string{"-slave", "-identify"}, "Arguments passed to the decoder before the media target"},
	{key.PlayerVolume, 50, "Initial decoder volume. From 0 to 100"},
	{key.PlayerSpeed, 1.0, "Playback speed applied once playback starts.\nOnly values other than 1.0 are sent to the decoder"},
	{key.PlayerBrightness, 0, "Video brightness adjustment. From -100 to 100"},
	{key.PlayerContrast, 0, "Video contrast adjustment. From -100 to 100"},
	{key.PlayerHue, 0, "Video hue adjustment. From -100 to 100"},
	{key.PlayerSaturation, 0, "Video saturation adjustment. From -100 to 100"},
	{key.PlayerGamma, 0, "Video gamma adjustment. From -100 to 100"},

	{key.RelayDisconnectOnStop, true, "Ask the relay to drop the channel after playback is stopped,\nunless it is broadcasting or still relaying to others"},
	{key.RelayDisconnectDelay, 3, "Seconds to wait before the first disconnect poll"},
	{key.RelayReconnectAttempts, 3, "Reconnect attempts before giving up on a relay stream"},
	{key.RelayControlInterval, 6, "Seconds between stall checks and channel info refreshes"},
	{key.RelayRepollInterval, 5, "Seconds between disconnect polls while the relay is still searching"},
	{key.RelayRequestTimeout, 10, "Timeout in seconds for a single relay request"},
	{key.RelayStallErrors, 20, "Cache starvation reports per control interval treated as a stall"},

	{key.HistorySaveOnPlay, true, "Remember relay channels when they are opened"},
	{key.HistoryRememberDialect, true, "Remember which API each relay node speaks"},
	{key.ScreenshotDir, "", "Directory screenshots are moved into.\nDefaults to the screenshots directory inside the config path"},

	{key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)"},
	{key.LogsWrite, false, "Write logs"},
	{key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace"},
	{key.LogsJson, false, "Use json format for logs"},
	{key.CliColored, true, "Enable colored CLI output"},
}

// Default maps every key to its field.
var Default = lo.KeyBy(fields, func(f Field) string { return f.Key })

// EnvExposed lists the keys bound to environment variables, in declaration order.
var EnvExposed = lo.Map(fields, func(f Field, _ int) string { return f.Key })

func init() {
	if len(Default) != len(fields) {
		panic("duplicate config keys: " + strings.Join(lo.FindDuplicates(EnvExposed), ", "))
	}
}

// Env is the environment variable overriding the field, e.g. RELAYPLAY_PLAYER_VOLUME.
func (f *Field) Env() string {
	return strings.ToUpper(constant.App + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Current is the effective value.
func (f *Field) Current() any {
	return viper.Get(f.Key)
}

// Type names the kind of value the field holds.
func (f *Field) Type() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return fmt.Sprintf("%T", f.Value)
	}
}

func (f *Field) MarshalJSON() ([]byte, error) {
	type field struct {
		Key         string `json:"key"`
		Env         string `json:"env"`
		Type        string `json:"type"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
	}

	return json.Marshal(field{
		Key:         f.Key,
		Env:         f.Env(),
		Type:        f.Type(),
		Value:       f.Current(),
		Default:     f.Value,
		Description: f.Description,
	})
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(fieldTemplate.Execute(&b, f))
	return b.String()
}

func highlight(v any) string {
	switch value := v.(type) {
	case bool:
		return style.Fg(lo.Ternary(value, color.Green, color.Red))(cast.ToString(value))
	case string:
		if value == "" {
			return style.Faint(`""`)
		}
		return style.Fg(color.Yellow)(value)
	case []string:
		return style.Fg(color.Yellow)(strings.Join(value, " "))
	default:
		return cast.ToString(value)
	}
}

var fieldTemplate = template.Must(template.New("field").Funcs(template.FuncMap{
	"faint": style.Faint,
	"label": style.Fg(color.Blue),
	"name":  style.Fg(color.Purple),
	"hl":    highlight,
}).Parse(`{{ faint .Description }}
{{ label "Key:" }}     {{ name .Key }}
{{ label "Env:" }}     {{ .Env }}
{{ label "Type:" }}    {{ .Type }}
{{ label "Value:" }}   {{ hl .Current }}
{{ label "Default:" }} {{ hl .Value }}`))
