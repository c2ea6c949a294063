package relay

import (
	"time"

	"github.com/relayplay/relayplay/task"
	"github.com/samber/mo"
)

// DisconnectOutcome is how a disconnect chain ended.
type DisconnectOutcome int

const (
	// OutcomeKept means the node still serves the channel to someone, or is its origin.
	OutcomeKept DisconnectOutcome = iota
	// OutcomeStopped means a stop command was issued.
	OutcomeStopped
	// OutcomeUnavailable means the status could not be fetched; nothing was done this cycle.
	OutcomeUnavailable
	// OutcomeSuperseded means the owner moved on before the chain concluded.
	OutcomeSuperseded
)

func (o DisconnectOutcome) String() string {
	switch o {
	case OutcomeKept:
		return "kept"
	case OutcomeStopped:
		return "stopped"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

type verdict int

const (
	verdictKeep verdict = iota
	verdictRepoll
	verdictStop
)

// decideDisconnect maps a channel snapshot to the next step of the disconnect chain.
func decideDisconnect(info ChannelInfo) verdict {
	switch {
	case info.Status == StatusBroadcast:
		return verdictKeep
	case info.Status == StatusSearch, info.Status == StatusConnect:
		return verdictRepoll
	case info.Consumers() == 0:
		return verdictStop
	case info.Status == StatusReceive:
		return verdictKeep
	default:
		return verdictStop
	}
}

// Disconnect waits delay, then polls the channel status and stops the channel on the node
// unless it is still broadcast or relayed. While the node searches or connects the poll is
// repeated every RepollInterval, without a cap.
//
// guard runs on the dispatcher before every decision; when it returns false the chain ends
// with OutcomeSuperseded. Both guard and done may be nil.
func (c *Client) Disconnect(ch Channel, d Dialect, delay time.Duration, guard func() bool, done func(DisconnectOutcome)) {
	finish := func(o DisconnectOutcome) {
		logger.Debugf("disconnect %s: %s", ch, o)
		if done != nil {
			done(o)
		}
	}

	var poll func()
	poll = func() {
		c.FetchInfo(ch, d, func(info mo.Option[ChannelInfo]) {
			if guard != nil && !guard() {
				finish(OutcomeSuperseded)
				return
			}

			snapshot, ok := info.Get()
			if !ok {
				finish(OutcomeUnavailable)
				return
			}

			switch decideDisconnect(snapshot) {
			case verdictKeep:
				finish(OutcomeKept)
			case verdictRepoll:
				logger.Debugf("disconnect %s: node is %s, polling again", ch, snapshot.Status)
				c.tasks.Spawn(task.After{Label: "repoll " + ch.ID, Delay: c.RepollInterval, Fn: poll})
			case verdictStop:
				c.Stop(ch, d, func(error) { finish(OutcomeStopped) })
			}
		})
	}

	c.tasks.Spawn(task.After{Label: "disconnect " + ch.ID, Delay: delay, Fn: poll})
}
