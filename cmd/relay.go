package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/relayplay/relayplay/color"
	"github.com/relayplay/relayplay/history"
	"github.com/relayplay/relayplay/icon"
	"github.com/relayplay/relayplay/key"
	"github.com/relayplay/relayplay/network"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/style"
	"github.com/relayplay/relayplay/task"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	errNotRelay       = errors.New("not a relay stream url")
	errUnknownDialect = errors.New("the relay node did not answer as any known dialect")
	errNoInfo         = errors.New("the relay node did not report complete channel information")
)

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.AddCommand(relayDetectCmd, relayInfoCmd, relayBumpCmd, relayStopCmd)
	relayInfoCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON object")
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Query and control the relay node serving a channel",
}

// relayCall runs one relay client request to completion outside of a playback session.
type relayCall struct {
	client  *relay.Client
	tasks   *task.Registry
	channel relay.Channel
}

func newRelayCall(target string) (*relayCall, error) {
	ch := relay.ParseTarget(target)
	if !ch.IsRelay() {
		return nil, fmt.Errorf("%w: %s", errNotRelay, target)
	}

	tasks := task.NewRegistry(context.Background())
	httpClient := network.New(time.Duration(viper.GetInt(key.RelayRequestTimeout)) * time.Second)

	return &relayCall{
		client:  relay.NewClient(httpClient, tasks, task.Inline),
		tasks:   tasks,
		channel: ch,
	}, nil
}

// dialect returns the dialect of the channel's node, detecting it when nothing is remembered.
func (r *relayCall) dialect() (relay.Dialect, error) {
	channels := history.Channels{}
	cached := channels.Dialect(r.channel)

	found := make(chan relay.Dialect, 1)
	r.client.Detect(r.channel, cached, func(d relay.Dialect) { found <- d })

	d := <-found
	if d == relay.DialectUnknown {
		return d, errUnknownDialect
	}

	channels.RememberDialect(r.channel, d)
	return d, nil
}

func (r *relayCall) info() (relay.ChannelInfo, error) {
	d, err := r.dialect()
	if err != nil {
		return relay.ChannelInfo{}, err
	}

	found := make(chan mo.Option[relay.ChannelInfo], 1)
	r.client.FetchInfo(r.channel, d, func(info mo.Option[relay.ChannelInfo]) { found <- info })

	info, ok := (<-found).Get()
	if !ok {
		return relay.ChannelInfo{}, errNoInfo
	}
	return info, nil
}

func (r *relayCall) command(send func(relay.Channel, relay.Dialect, func(error))) error {
	d, err := r.dialect()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	send(r.channel, d, func(err error) { done <- err })
	return <-done
}

func (r *relayCall) close() {
	r.tasks.Drain(time.Second)
}

var relayDetectCmd = &cobra.Command{
	Use:   "detect <url>",
	Short: "Find out which API the relay node speaks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		call, err := newRelayCall(args[0])
		handleErr(err)
		defer call.close()

		d, err := call.dialect()
		handleErr(err)

		fmt.Printf("%s %s speaks %s\n", icon.Get(icon.Success), call.channel.Node(), style.Fg(color.Yellow)(d.String()))
	},
}

var relayInfoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show what the relay node reports about a channel",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		call, err := newRelayCall(args[0])
		handleErr(err)
		defer call.close()

		info, err := call.info()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(info))
			return
		}

		fmt.Print(formatInfo(call.channel, info))
	},
}

func formatInfo(ch relay.Channel, info relay.ChannelInfo) string {
	header := style.New().Bold(true).Foreground(color.HiPurple).Render
	row := func(name, value string) string {
		return fmt.Sprintf("  %s %s\n", style.Faint(fmt.Sprintf("%-10s", name)), value)
	}

	out := fmt.Sprintf("%s %s\n", icon.Get(icon.Relay), header(lo.Ternary(info.Name != "", info.Name, ch.ID)))
	out += row("Node", ch.Node())
	out += row("Status", style.Fg(color.Yellow)(info.Status.String()))
	out += row("Bitrate", fmt.Sprintf("%s/s", humanize.Bytes(uint64(info.Bitrate)*1000/8)))
	out += row("Relays", fmt.Sprintf("%d local, %d total", info.LocalRelays, info.TotalRelays))
	out += row("Directs", fmt.Sprintf("%d", info.LocalDirects))
	if info.ContactURL != "" {
		out += row("Contact", info.ContactURL)
	}
	return out
}

var relayBumpCmd = &cobra.Command{
	Use:   "bump <url>",
	Short: "Ask the relay node to reconnect the channel to another source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		call, err := newRelayCall(args[0])
		handleErr(err)
		defer call.close()

		handleErr(call.command(call.client.Bump))
		fmt.Printf("%s bumped %s\n", icon.Get(icon.Success), call.channel)
	},
}

var relayStopCmd = &cobra.Command{
	Use:   "stop <url>",
	Short: "Ask the relay node to drop the channel",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		call, err := newRelayCall(args[0])
		handleErr(err)
		defer call.close()

		handleErr(call.command(call.client.Stop))
		fmt.Printf("%s stopped %s\n", icon.Get(icon.Success), call.channel)
	},
}
