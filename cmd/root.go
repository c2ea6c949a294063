// Package cmd implements the command-line interface for relayplay.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/history"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/log"
	"github.com/relayplay/relayplay/network"
	"github.com/relayplay/relayplay/player"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/session"
	"github.com/relayplay/relayplay/style"
	"github.com/relayplay/relayplay/task"
	"github.com/relayplay/relayplay/tui"
	"github.com/relayplay/relayplay/util"
	"github.com/relayplay/relayplay/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// shutdownBound is how long pending relay requests, such as a disconnect, may hold up the exit.
const shutdownBound = 15 * time.Second

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Remember relay channels when they are opened")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnPlay, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.Flags().BoolP("continue", "c", false, "Reopen the most recently played channel")
	rootCmd.Flags().Bool("no-disconnect", false, "Leave the channel on the relay after stopping")

	go func() {
		_ = util.Delete(where.Temp())
	}()
}

var rootCmd = &cobra.Command{
	Use:   constant.App + " [targets...]",
	Short: "A terminal player for relay streams and local media",
	Long: constant.Banner + "\n\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A terminal player for relay streams and local media"),
	Example: strings.Join([]string{
		"  " + constant.App + " http://localhost:7144/stream/0123456789ABCDEF0123456789ABCDEF.flv",
		"  " + constant.App + " intro.avi episode.avi",
		"  " + constant.App + " --continue",
	}, "\n"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		if lo.Must(cmd.Flags().GetBool("no-disconnect")) {
			viper.Set(key.RelayDisconnectOnStop, false)
		}

		options := tui.Options{
			Continue: lo.Must(cmd.Flags().GetBool("continue")),
		}
		if len(args) > 0 {
			options.Target = args[0]
		}

		handleErr(play(&options, lo.Drop(args, 1)))
	},
}

// play runs a session for the lifetime of the interface.
func play(options *tui.Options, queued []string) error {
	tasks := task.NewRegistry(context.Background())
	httpClient := network.New(time.Duration(viper.GetInt(key.RelayRequestTimeout)) * time.Second)

	var controller *session.Controller
	client := relay.NewClient(httpClient, tasks, task.DispatcherFunc(func(fn func()) {
		controller.Post(fn)
	}))

	opts := session.ConfigOptions()
	opts.Launcher = player.Decoder{
		Binary: viper.GetString(key.PlayerBinary),
		Args:   viper.GetStringSlice(key.PlayerArgs),
		Dir:    where.Temp(),
	}
	opts.Relay = client
	opts.Tasks = tasks
	opts.Channels = history.Channels{}
	opts.Playlist = session.NewQueue(queued...)
	controller = session.New(opts)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- controller.Run(ctx)
	}()

	options.Player = controller
	err := tui.Run(options)

	controller.Quit()
	if runErr := <-done; runErr != nil && runErr != context.Canceled {
		log.Warnf("session: %v", runErr)
	}

	if !controller.Close(shutdownBound) {
		log.Warnf("%s still running after %s", util.Quantify(tasks.Len(), "task", "tasks"), shutdownBound)
	}

	return err
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
