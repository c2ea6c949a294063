package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/style"
	"github.com/spf13/viper"
)

// CheckDependencies exits when the configured decoder cannot be found.
func CheckDependencies() {
	binary := viper.GetString(key.PlayerBinary)
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func installHint(dep string) string {
	if filepath.Base(dep) != "mplayer" {
		return ""
	}

	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install mplayer"
	case constant.Linux:
		return "sudo apt install mplayer"
	case constant.Windows:
		return "scoop install mplayer"
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Decoder", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The decoder '%s' was not found in your PATH.", dep))

	suggestion := fmt.Sprintf("\n\nPoint %s at another executable with:\n  %s",
		style.Fg(style.AccentColor)(key.PlayerBinary),
		style.New().Foreground(style.AccentColor).Bold(true).Render(fmt.Sprintf("%s config set %s <path>", constant.App, key.PlayerBinary)),
	)
	if hint := installHint(dep); hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(hint)) + suggestion
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
