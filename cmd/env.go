package cmd

import (
	"os"

	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/config"
	"github.com/relayplay/relayplay/style"
	"github.com/relayplay/relayplay/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are not set")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envName is the environment variable overriding a config key.
func envName(configKey string) string {
	field := config.Field{Key: configKey}
	return field.Env()
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables relayplay reads",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
		)

		names := append(lo.Map(config.EnvExposed, func(k string, _ int) string { return envName(k) }), where.EnvConfigPath)
		slices.Sort(names)

		for _, name := range names {
			value, present := os.LookupEnv(name)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			shown := lo.Ternary(present, style.Fg(color.Green)(value), style.Fg(color.Red)("unset"))
			cmd.Printf("%s=%s\n", style.New().Bold(true).Foreground(color.Purple).Render(name), shown)
		}
	},
}
