package icon

// Icon names a UI symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Question
	Mark
	Play
	Pause
	Stop
	Relay
	Local
	Repeat
	Camera
	Volume
	Speed
	Reconnect
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "ﮊ",
		plain:   "✗",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・)…",
		squares: "🟦",
	},
	Question: {
		emoji:   "🤨",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・・ )?",
		squares: "🟪",
	},
	Mark: {
		emoji:   "📌",
		nerd:    "",
		plain:   "*",
		kaomoji: "(＾▽＾)",
		squares: "🟨",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "ヽ(・∀・)ﾉ",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "🟨",
	},
	Stop: {
		emoji:   "⏹️",
		nerd:    "",
		plain:   "[]",
		kaomoji: "(￣ー￣)",
		squares: "⬛",
	},
	Relay: {
		emoji:   "📡",
		nerd:    "",
		plain:   "@",
		kaomoji: "(((o(*ﾟ▽ﾟ*)o)))",
		squares: "🟧",
	},
	Local: {
		emoji:   "📼",
		nerd:    "",
		plain:   "#",
		kaomoji: "( ´ ▽ ` )",
		squares: "🟫",
	},
	Repeat: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "AB",
		kaomoji: "(ง •̀_•́)ง",
		squares: "🟦",
	},
	Camera: {
		emoji:   "📸",
		nerd:    "",
		plain:   "[o]",
		kaomoji: "(◕‿◕)📷",
		squares: "⬜",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "vol",
		kaomoji: "♪(´▽｀)",
		squares: "🟪",
	},
	Speed: {
		emoji:   "⏩",
		nerd:    "",
		plain:   ">>",
		kaomoji: "ε=ε=(ノ≧∇≦)ノ",
		squares: "🟧",
	},
	Reconnect: {
		emoji:   "🔄",
		nerd:    "",
		plain:   "~",
		kaomoji: "(＠_＠;)",
		squares: "🟨",
	},
}
