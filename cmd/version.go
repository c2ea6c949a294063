package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version number")
	versionCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON object")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

type buildInfo struct {
	App      string `json:"app"`
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"built_at"`
	BuiltBy  string `json:"built_by"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Decoder  string `json:"decoder"`
}

func currentBuild() buildInfo {
	return buildInfo{
		App:      constant.App,
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		BuiltBy:  constant.BuiltBy,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Decoder:  viper.GetString(key.PlayerBinary),
	}
}

var versionTemplate = template.Must(template.New("version").Funcs(map[string]any{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"orDash": func(s string) string {
		return lo.Ternary(s == "", "-", s)
	},
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}     {{ bold .Version }}
  {{ faint "Revision" }}    {{ bold (orDash .Revision) }}
  {{ faint "Built" }}       {{ bold (orDash .BuiltAt) }} {{ faint "by" }} {{ bold (orDash .BuiltBy) }}
  {{ faint "Platform" }}    {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Decoder" }}     {{ bold .Decoder }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := currentBuild()

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
