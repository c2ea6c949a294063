package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/internal/ui"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/session"
	"github.com/relayplay/relayplay/style"
	"github.com/relayplay/relayplay/timetrack"
	"github.com/relayplay/relayplay/util"
	"github.com/samber/mo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// outputLines is how many decoder lines the player view keeps.
const outputLines = 6

// statefulBubble holds the interface state and a mirror of the session built from its notifications.
type statefulBubble struct {
	state         state
	statesHistory []state

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	inputC    textinput.Model
	historyC  list.Model
	progressC progress.Model
	helpC     help.Model
	toast     *ui.Model

	player  Player
	options *Options

	// session mirror
	target   string
	playback session.StateChanged
	elapsed  session.TimeChanged
	channel  session.ChannelChanged
	meta     map[string]string
	output   []string
	repeat   session.RepeatChanged
	progress mo.Option[session.Progress]

	volume int
	speed  float64

	lastError     error
	width, height int
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s and remembers where it came from.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if b.state != errorState {
		b.statesHistory = append(b.statesHistory, b.state)
	}
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if n := len(b.statesHistory); n > 0 {
		s := b.statesHistory[n-1]
		b.statesHistory = b.statesHistory[:n-1]
		b.setState(s)
	}
}

// resetSession clears what is known about the previous target.
func (b *statefulBubble) resetSession(target string) {
	b.target = target
	b.playback = session.StateChanged{State: session.Ready, Status: session.Ready.String()}
	b.elapsed = session.TimeChanged{Display: util.FormatElapsed(0)}
	b.channel = session.ChannelChanged{}
	b.meta = make(map[string]string)
	b.output = nil
	b.repeat = session.RepeatChanged{Start: timetrack.Unset, End: timetrack.Unset}
	b.progress = mo.None[session.Progress]()
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.progressC.Width = width - x
	b.inputC.Width = width - x

	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

func newBubble(options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:  newStatefulKeymap(),
		player:  options.Player,
		options: options,
		toast:   &ui.Model{},
		volume:  viper.GetInt(key.PlayerVolume),
		speed:   cast.ToFloat64(viper.Get(key.PlayerSpeed)),
	}
	if bubble.speed <= 0 {
		bubble.speed = 1
	}
	bubble.resetSession("")
	bubble.playback = session.StateChanged{State: session.Stopped, Status: session.Stopped.String()}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.historyC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.historyC.KeyMap = bubble.keymap.forList()
	bubble.historyC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
	bubble.historyC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return bubble.keymap.FullHelp()[0]
	}
	bubble.historyC.Title = "Channels"
	bubble.historyC.Styles.Title = style.ListTitle
	bubble.historyC.Styles.NoItems = paddingStyle
	bubble.historyC.SetStatusBarItemName("channel", "channels")
	bubble.historyC.SetShowPagination(false)

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("http://localhost:7144/stream/<channel id>.flv (v%s)", constant.Version)
	bubble.inputC.Prompt = "> "
	bubble.inputC.CharLimit = 512

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
