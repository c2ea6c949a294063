package task

import (
	"context"
	"time"

	"github.com/relayplay/relayplay/filesystem"
)

// Dispatcher delivers task results back to their owner. The session controller posts onto its
// event loop so that results are applied on the same goroutine as everything else.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Post(fn func()) { f(fn) }

// Inline runs posted functions immediately on the posting goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Func is a named closure task.
type Func struct {
	Label   string
	Timeout time.Duration
	Fn      func(ctx context.Context)
}

func (f Func) Name() string            { return f.Label }
func (f Func) Limit() time.Duration    { return f.Timeout }
func (f Func) Run(ctx context.Context) { f.Fn(ctx) }

// After waits Delay and then calls Fn, unless the registry's base context is cancelled first.
type After struct {
	Label string
	Delay time.Duration
	Fn    func()
}

func (a After) Name() string { return a.Label }

// Limit leaves headroom over the delay so the timer is never cut short by the task timeout.
func (a After) Limit() time.Duration { return a.Delay + time.Second }

func (a After) Run(ctx context.Context) {
	timer := time.NewTimer(a.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		a.Fn()
	case <-ctx.Done():
	}
}

// Rename moves From to To after Delay. The decoder writes screenshots asynchronously, so the
// move is deferred to let the file be flushed. Done, when set, receives the outcome.
type Rename struct {
	From, To string
	Delay    time.Duration
	Done     func(err error)
}

func (r Rename) Name() string         { return "rename " + r.From }
func (r Rename) Limit() time.Duration { return r.Delay + 5*time.Second }

func (r Rename) Run(ctx context.Context) {
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			if r.Done != nil {
				r.Done(ctx.Err())
			}
			return
		}
	}

	err := filesystem.Move(r.From, r.To)
	if err != nil {
		logger.Warnf("rename %s: %v", r.From, err)
	} else {
		logger.Debugf("moved %s to %s", r.From, r.To)
	}

	if r.Done != nil {
		r.Done(err)
	}
}
