// Package session drives one decoder at a time and, for relay streams, keeps the relay healthy:
// it reconnects after stalls and decoder deaths, and asks the relay to drop the channel when done.
package session

import (
	"fmt"
	"time"

	"github.com/relayplay/relayplay/relay"
	"github.com/samber/mo"
)

// State is the playback state. Only the controller's loop changes it.
type State int

const (
	Stopped State = iota
	Ready
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Affordances tell the UI which commands currently make sense.
type Affordances struct {
	Play       bool
	Pause      bool
	Stop       bool
	Screenshot bool
	Repeat     bool
}

// ReconnectBudget bounds automatic reconnects of a relay stream.
type ReconnectBudget struct {
	Attempts int
	// ControlTimestamp is the elapsed time at the last good control tick.
	ControlTimestamp float64
	// Errors counts cache starvation reports since the last control tick.
	Errors int
}

// Reset clears the budget after a clean cycle or an explicit restart.
func (b *ReconnectBudget) Reset() {
	*b = ReconnectBudget{}
}

// Playlist supplies the entry to play after local media ends.
type Playlist interface {
	Next() (string, bool)
}

// ChannelStore keeps what is learnt about relay channels between runs.
type ChannelStore interface {
	Dialect(ch relay.Channel) relay.Dialect
	RememberDialect(ch relay.Channel, d relay.Dialect)
	RememberInfo(ch relay.Channel, info relay.ChannelInfo)
}

// Relay is the subset of the relay client the controller uses. Every callback is delivered through
// the controller's dispatcher.
type Relay interface {
	Detect(ch relay.Channel, cached relay.Dialect, done func(relay.Dialect))
	FetchInfo(ch relay.Channel, d relay.Dialect, done func(mo.Option[relay.ChannelInfo]))
	Bump(ch relay.Channel, d relay.Dialect, done func(error))
	Disconnect(ch relay.Channel, d relay.Dialect, delay time.Duration, guard func() bool, done func(relay.DisconnectOutcome))
}

// ProgressKind names what a Progress notification measures.
type ProgressKind int

const (
	ProgressConnecting ProgressKind = iota
	ProgressCache
	ProgressIndex
)

func (k ProgressKind) String() string {
	switch k {
	case ProgressCache:
		return "caching"
	case ProgressIndex:
		return "indexing"
	default:
		return "connecting"
	}
}

// Notification is sent to the UI.
type Notification interface {
	notification()
}

type (
	// StateChanged carries the state, a status line and the affordances.
	StateChanged struct {
		State       State
		Status      string
		Affordances Affordances
	}

	// TimeChanged carries the displayable elapsed time.
	TimeChanged struct {
		Elapsed float64
		Display string
	}

	// ChannelChanged carries the latest channel snapshot, None when nothing is known.
	ChannelChanged struct {
		Channel relay.Channel
		Dialect relay.Dialect
		Info    mo.Option[relay.ChannelInfo]
	}

	MetaChanged struct {
		Kind  string
		Value string
	}

	// OutputLine is a decoder line worth showing.
	OutputLine struct {
		Text string
	}

	// Fatal reports an open that cannot proceed, such as a decoder that does not start.
	Fatal struct {
		Err error
	}

	// GaveUp reports that the reconnect budget is exhausted.
	GaveUp struct {
		Attempts int
	}

	// RepeatChanged carries the A-B bounds in tenths of a second, -1 when unset.
	RepeatChanged struct {
		Start, End int
	}

	Progress struct {
		Kind    ProgressKind
		Percent float64
	}

	// ScreenshotTaken reports where a screenshot ended up.
	ScreenshotTaken struct {
		Path string
		Err  error
	}
)

func (StateChanged) notification()    {}
func (TimeChanged) notification()     {}
func (ChannelChanged) notification()  {}
func (MetaChanged) notification()     {}
func (OutputLine) notification()      {}
func (Fatal) notification()           {}
func (GaveUp) notification()          {}
func (RepeatChanged) notification()   {}
func (Progress) notification()        {}
func (ScreenshotTaken) notification() {}

func (g GaveUp) Error() string {
	return fmt.Sprintf("gave up after %d reconnect attempts", g.Attempts)
}
