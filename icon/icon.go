// Package icon renders the symbols of the interface in the variant picked by icons.variant:
// emoji, nerd-font glyphs, plain text, kaomoji or coloured squares.
package icon

import (
	"github.com/relayplay/relayplay/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Variant is a family of symbols.
type Variant string

const (
	Emoji   Variant = "emoji"
	Nerd    Variant = "nerd"
	Plain   Variant = "plain"
	Kaomoji Variant = "kaomoji"
	Squares Variant = "squares"
)

var variants = []Variant{Emoji, Nerd, Plain, Kaomoji, Squares}

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return lo.Map(variants, func(v Variant, _ int) string { return string(v) })
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) in(v Variant) string {
	switch v {
	case Emoji:
		return d.emoji
	case Nerd:
		return d.nerd
	case Plain:
		return d.plain
	case Kaomoji:
		return d.kaomoji
	case Squares:
		return d.squares
	default:
		return ""
	}
}

// Get renders i in the configured variant. An unknown variant renders nothing.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.in(Variant(viper.GetString(key.IconsVariant)))
}
