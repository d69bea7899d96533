// Package icon renders the small status symbols printed by the CLI.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/reelplay/reelplay/key"
	"github.com/spf13/viper"
)

// Visual variants.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns every supported icons.variant value.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Resume
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "+",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "x",
		kaomoji: "(×﹏×)",
		squares: "🟥",
	},
	Resume: {
		emoji:   "🔖",
		nerd:    "",
		plain:   "@",
		kaomoji: "(￣▽￣)ノ",
		squares: "🟨",
	},
}

// Get returns the rendered icon for the configured variant, or an empty string
// when no variant is set.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.Get()
}
