// Package timetrack turns the decoder's raw status times into a steadily increasing elapsed time,
// and drives the A-B repeat of seekable local media.
package timetrack

import (
	"math"

	"github.com/samber/mo"
)

const (
	// DefaultCacheJump is the largest tick-to-tick jump taken at face value on a relay stream.
	DefaultCacheJump = 1.0
	// DefaultReconnectJump is the jump past which a relay stream gets its decoder restarted.
	DefaultReconnectJump = 10.0
)

// Unset marks an empty repeat bound.
const Unset = -1

// Result is what a tick asks of the caller.
type Result struct {
	// Seek is the absolute position to seek to, in seconds.
	Seek mo.Option[float64]
	// SoftReconnect asks for a decoder-only restart. It is raised once per playing segment.
	SoftReconnect bool
}

// Tracker holds the time state of one logical session. It is not safe for concurrent use.
type Tracker struct {
	CacheJump     float64
	ReconnectJump float64

	relay   bool
	started bool

	start, current, old float64
	offset              float64

	// tenths of a second
	repeatStart, repeatEnd int
	seekedForRepeat        bool

	softRequested bool
}

// New returns a tracker for a relay stream or for local media.
func New(relay bool) *Tracker {
	t := &Tracker{
		CacheJump:     DefaultCacheJump,
		ReconnectJump: DefaultReconnectJump,
	}
	t.Reset(relay)
	return t
}

// Reset starts a new logical session: the offset and the repeat bounds are cleared.
func (t *Tracker) Reset(relay bool) {
	t.relay = relay
	t.offset = 0
	t.repeatStart, t.repeatEnd = Unset, Unset
	t.Restart()
}

// Restart prepares for a new Ready to Playing edge. The next tick is recorded as the start;
// the offset carries over.
func (t *Tracker) Restart() {
	t.started = false
	t.start, t.current, t.old = 0, 0, 0
	t.seekedForRepeat = false
	t.softRequested = false
}

// Rebase folds the running segment into the offset. Call it before restarting the decoder
// within a session so the time watched so far is kept.
func (t *Tracker) Rebase() {
	if t.started && t.current > t.start {
		t.offset += t.current - t.start
	}
	t.Restart()
}

// Tick consumes one status time.
func (t *Tracker) Tick(seconds float64) Result {
	var res Result

	if !t.started {
		t.started = true
		t.start, t.current, t.old = seconds, seconds, seconds
		return res
	}

	if seconds <= t.start {
		return res
	}
	t.current = seconds

	jump := t.current - t.old

	if t.relay {
		if jump > t.CacheJump {
			t.offset += t.old - t.start
			t.start = t.current
		}
		if jump > t.ReconnectJump && !t.softRequested {
			t.softRequested = true
			res.SoftReconnect = true
		}
	} else if t.repeatStart != Unset && t.repeatEnd != Unset {
		end := float64(t.repeatEnd) / 10

		switch {
		case t.current >= end+1, t.current >= end && !t.seekedForRepeat:
			t.seekedForRepeat = true
			res.Seek = mo.Some(float64(t.repeatStart) / 10)
		case t.current < end:
			t.seekedForRepeat = false
		}
	}

	t.old = t.current
	return res
}

// Elapsed is the displayable time in seconds.
func (t *Tracker) Elapsed() float64 {
	if !t.started {
		return t.offset
	}
	return (t.current - t.start) + t.offset
}

// Offset is the accumulated correction.
func (t *Tracker) Offset() float64 {
	return t.offset
}

// Current is the last raw time reported by the decoder.
func (t *Tracker) Current() float64 {
	return t.current
}

// PressRepeat applies one press of the A-B button: the first press sets the start at the current
// position, the second sets the end (or moves the start if the position is not past it),
// the third clears both.
func (t *Tracker) PressRepeat() (start, end int) {
	pos := int(math.Floor(t.current * 10))

	switch {
	case t.repeatStart == Unset:
		t.repeatStart = pos
	case t.repeatEnd == Unset:
		if pos > t.repeatStart {
			t.repeatEnd = pos
		} else {
			t.repeatStart = pos
		}
	default:
		t.ClearRepeat()
	}

	return t.Repeat()
}

// SetRepeat sets both bounds, in tenths of a second.
func (t *Tracker) SetRepeat(start, end int) {
	t.repeatStart, t.repeatEnd = start, end
	t.seekedForRepeat = false
}

// ClearRepeat removes both bounds.
func (t *Tracker) ClearRepeat() {
	t.SetRepeat(Unset, Unset)
}

// Repeat returns the bounds in tenths of a second, Unset when empty.
func (t *Tracker) Repeat() (start, end int) {
	return t.repeatStart, t.repeatEnd
}
