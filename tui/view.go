package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/protocol"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/session"
	"github.com/relayplay/relayplay/style"
	"github.com/relayplay/relayplay/timetrack"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case historyState:
		output = listExtraPaddingStyle.Render(b.historyC.View())
	case openState:
		output = b.viewOpen()
	case playerState:
		output = b.viewPlayer()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.toast.View(output)
}

func (b *statefulBubble) viewOpen() string {
	return b.renderLines(true, []string{
		style.Title("Open"),
		"",
		b.inputC.View(),
	})
}

func (b *statefulBubble) viewPlayer() string {
	lines := []string{
		style.Title("Now Playing"),
		"",
		b.clip(b.stateLine()),
		b.clip(b.sourceLine()),
		b.clip(b.timeLine()),
	}

	if p, ok := b.progress.Get(); ok && b.playback.State == session.Ready {
		label := fmt.Sprintf("%s %s", b.spinnerC.View(), p.Kind)
		if p.Kind == session.ProgressConnecting {
			lines = append(lines, "", label)
		} else {
			lines = append(lines, "", fmt.Sprintf("%s %.0f%%", label, p.Percent), b.progressC.ViewAs(p.Percent/100))
		}
	}

	if meta := b.metaLines(); len(meta) > 0 {
		lines = append(lines, "")
		lines = append(lines, meta...)
	}

	if len(b.output) > 0 {
		lines = append(lines, "")
		for _, line := range b.output {
			lines = append(lines, style.Faint(b.clip(line)))
		}
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) stateLine() string {
	var (
		i icon.Icon
		c lipgloss.Color
	)

	switch b.playback.State {
	case session.Playing:
		i, c = icon.Play, style.PlayingColor
	case session.Paused:
		i, c = icon.Pause, style.PausedColor
	case session.Ready:
		i, c = icon.Reconnect, style.ConnectingColor
	default:
		i, c = icon.Stop, style.StoppedColor
	}

	return fmt.Sprintf("%s %s", icon.Get(i), style.Fg(c)(b.playback.Status))
}

func (b *statefulBubble) sourceLine() string {
	ch := b.channel.Channel
	if !ch.IsRelay() {
		return fmt.Sprintf("%s %s", icon.Get(icon.Local), style.Fg(color.Purple)(b.title()))
	}

	parts := []string{ch.Node()}
	if b.channel.Dialect != relay.DialectUnknown {
		parts = append(parts, b.channel.Dialect.String())
	}
	if info, ok := b.channel.Info.Get(); ok && info.Bitrate > 0 {
		parts = append(parts, fmt.Sprintf("%d kbps", info.Bitrate))
	}

	return fmt.Sprintf("%s %s %s", icon.Get(icon.Relay), style.Fg(color.Purple)(b.title()), style.Faint(strings.Join(parts, " · ")))
}

func (b *statefulBubble) timeLine() string {
	parts := []string{
		style.Bold(b.elapsed.Display),
		fmt.Sprintf("%s %d", icon.Get(icon.Volume), b.volume),
		fmt.Sprintf("%s ×%.1f", icon.Get(icon.Speed), b.speed),
	}

	if b.repeat.Start != timetrack.Unset {
		bounds := fmt.Sprintf("%.1f-", float64(b.repeat.Start)/10)
		if b.repeat.End != timetrack.Unset {
			bounds += fmt.Sprintf("%.1f", float64(b.repeat.End)/10)
		}
		parts = append(parts, fmt.Sprintf("%s %s", icon.Get(icon.Repeat), bounds))
	}

	return strings.Join(parts, "  ")
}

// title is the best name known for what is playing.
func (b *statefulBubble) title() string {
	if info, ok := b.channel.Info.Get(); ok && info.Name != "" {
		return info.Name
	}
	if t := b.meta[protocol.MetaTitle.String()]; t != "" {
		return t
	}
	if b.channel.Channel.IsRelay() {
		return b.channel.Channel.ID
	}
	return b.target
}

func (b *statefulBubble) metaLines() []string {
	var lines []string
	for _, kind := range []protocol.MetaKind{protocol.MetaTitle, protocol.MetaAuthor, protocol.MetaCopyright, protocol.MetaComment} {
		if v := b.meta[kind.String()]; v != "" {
			lines = append(lines, b.clip(fmt.Sprintf("%s %s", style.Faint(kind.String()+":"), v)))
		}
	}
	return lines
}

func (b *statefulBubble) clip(s string) string {
	if b.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(b.width), "…")
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	body := errorStyle.Render(b.lastError.Error())
	if b.width > 0 {
		body = wrap.String(body, b.width)
	}

	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " Playback could not start:",
		"",
		body,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
