package cmd

import (
	"fmt"
	"os"

	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/style"
	"github.com/relayplay/relayplay/util"
	"github.com/relayplay/relayplay/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// pathTarget is a location the where command prints and, when clearable, the clear command removes.
type pathTarget struct {
	name      string
	flag      string
	short     mo.Option[string]
	location  func() string
	listed    bool
	clearable bool
}

var pathTargets = []*pathTarget{
	{name: "config", flag: "config", short: mo.Some("c"), location: where.Config, listed: true},
	{name: "screenshots", flag: "screenshots", short: mo.Some("s"), location: where.Screenshots, listed: true, clearable: true},
	{name: "logs", flag: "logs", short: mo.Some("l"), location: where.Logs, listed: true, clearable: true},
	{name: "channel history", flag: "history", short: mo.Some("H"), location: where.History, clearable: true},
	{name: "cache directory", flag: "cache", location: where.Cache, clearable: true},
	{name: "temporary files", flag: "temp", location: where.Temp, clearable: true},
}

func addPathFlag(cmd *cobra.Command, t *pathTarget, usage string) {
	if short, ok := t.short.Get(); ok {
		cmd.Flags().BoolP(t.flag, short, false, usage)
	} else {
		cmd.Flags().Bool(t.flag, false, usage)
	}
}

func init() {
	rootCmd.AddCommand(whereCmd, clearCmd)

	for _, t := range pathTargets {
		addPathFlag(whereCmd, t, t.name+" path")
		if !t.listed {
			lo.Must0(whereCmd.Flags().MarkHidden(t.flag))
		}

		if t.clearable {
			addPathFlag(clearCmd, t, "clear "+t.name)
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(pathTargets, func(t *pathTarget, _ int) string {
		return t.flag
	})...)
	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration, screenshots and logs are kept",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range pathTargets {
			if lo.Must(cmd.Flags().GetBool(t.flag)) {
				cmd.Println(t.location())
				return
			}
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		listed := lo.Filter(pathTargets, func(t *pathTarget, _ int) bool { return t.listed })

		for i, t := range listed {
			cmd.Printf("%s %s\n", header(util.Capitalize(t.name)+"?"), style.Fg(color.Yellow)("--"+t.flag))
			cmd.Println(t.location())

			if i < len(listed)-1 {
				cmd.Println()
			}
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached data, the channel history, logs or screenshots",
	Run: func(cmd *cobra.Command, args []string) {
		cleared := 0

		for _, t := range pathTargets {
			if !t.clearable || !lo.Must(cmd.Flags().GetBool(t.flag)) {
				continue
			}

			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), t.name))
			err := filesystem.API().RemoveAll(t.location())
			erase()
			handleErr(err)

			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(t.name))
			cleared++
		}

		if cleared == 0 {
			handleErr(cmd.Help())
		}
	},
}
