package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/relayplay/relayplay/log"
	"github.com/relayplay/relayplay/player"
	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/timetrack"
	"github.com/relayplay/relayplay/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const notificationBuffer = 1024

var logger = log.For("session")

// Controller is the playback session. All of its state is owned by the goroutine running Run;
// commands and task results reach it as closures posted onto its inbox.
type Controller struct {
	opts Options

	// inbox
	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	loopDone bool
	draining bool

	notes chan Notification

	state   State
	target  string
	channel relay.Channel
	dialect relay.Dialect
	info    mo.Option[relay.ChannelInfo]
	title   string

	tracker *timetrack.Tracker
	budget  ReconnectBudget
	control *time.Ticker

	proc  player.Process
	lines <-chan string

	// epoch invalidates callbacks of superseded operations
	epoch uint64

	quitting bool

	// per launch
	eofReached       bool
	noVideo          bool
	seekable         bool
	reconnectPending bool
	childPID         int

	lastDisplay string
}

// New returns a stopped controller.
func New(opts Options) *Controller {
	opts.fill()

	return &Controller{
		opts:    opts,
		wake:    make(chan struct{}, 1),
		notes:   make(chan Notification, notificationBuffer),
		tracker: timetrack.New(false),
	}
}

// Notifications delivers state changes for the UI. Notifications are dropped when the buffer is full.
func (c *Controller) Notifications() <-chan Notification {
	return c.notes
}

// Post implements task.Dispatcher. Once Run has returned, closures run on the posting goroutine,
// still one at a time.
func (c *Controller) Post(fn func()) {
	c.mu.Lock()
	c.queue = append(c.queue, fn)
	done := c.loopDone
	c.mu.Unlock()

	if done {
		c.drainInline()
		return
	}

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// drainInline runs queued closures on the calling goroutine unless another goroutine already does.
func (c *Controller) drainInline() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	for len(c.queue) > 0 {
		fn := c.queue[0]
		c.queue = c.queue[1:]

		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}

	c.draining = false
	c.mu.Unlock()
}

func (c *Controller) takeQueue() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.queue
	c.queue = nil
	return queue
}

// Run is the event loop. It returns after Quit once the decoder is gone, or when ctx ends.
func (c *Controller) Run(ctx context.Context) error {
	c.control = time.NewTicker(c.opts.ControlInterval)
	defer c.control.Stop()

	defer c.endLoop()

	for {
		select {
		case <-ctx.Done():
			c.quitting = true
			c.stop()
			return ctx.Err()
		case <-c.wake:
			for _, fn := range c.takeQueue() {
				fn()
			}
		case line, ok := <-c.lines:
			if !ok {
				c.onExit()
				break
			}
			c.onLine(line)
		case <-c.control.C:
			c.onControl()
		}

		if c.quitting && c.proc == nil {
			logger.Debugf("loop done")
			return nil
		}
	}
}

func (c *Controller) endLoop() {
	c.mu.Lock()
	c.loopDone = true
	c.mu.Unlock()

	c.drainInline()
}

// Close terminates a decoder left behind and waits up to bound for in-flight tasks, such as a
// disconnect chain, to finish. Call it after Run has returned.
func (c *Controller) Close(bound time.Duration) bool {
	c.endLoop()

	stopped := make(chan struct{})
	c.Post(func() {
		c.quitting = true
		c.stop()
		close(stopped)
	})
	<-stopped

	return c.opts.Tasks.Drain(bound)
}

func (c *Controller) notify(n Notification) {
	select {
	case c.notes <- n:
	default:
		logger.Debugf("dropped %T", n)
	}
}

func (c *Controller) setState(s State) {
	if c.state != s {
		logger.Debugf("%s -> %s", c.state, s)
	}
	c.state = s
	c.notifyState()
}

func (c *Controller) notifyState() {
	c.notify(StateChanged{
		State:       c.state,
		Status:      c.statusText(),
		Affordances: c.affordances(),
	})
}

func (c *Controller) statusText() string {
	parts := []string{c.state.String()}

	if c.reconnectPending {
		parts = append(parts, "reconnecting")
	}

	if info, ok := c.info.Get(); ok && c.channel.IsRelay() {
		parts = append(parts, fmt.Sprintf("%s, %d/%d relays", info.Status, info.LocalRelays, info.TotalRelays))
	}

	return strings.Join(parts, " · ")
}

func (c *Controller) affordances() Affordances {
	switch c.state {
	case Ready:
		return Affordances{Stop: true}
	case Playing:
		return Affordances{
			Pause:      true,
			Stop:       true,
			Screenshot: !c.noVideo,
			Repeat:     c.seekable && !c.channel.IsRelay(),
		}
	case Paused:
		return Affordances{Play: true, Stop: true}
	default:
		return Affordances{Play: c.target != ""}
	}
}

func (c *Controller) send(cmd string) {
	if c.proc == nil {
		return
	}
	if err := c.proc.Send(cmd); err != nil {
		logger.Warnf("%v", err)
	}
}

// open starts a new logical session on target.
func (c *Controller) open(target string) {
	c.epoch++
	c.target = target
	c.channel = relay.ParseTarget(target)
	c.dialect = relay.DialectUnknown
	c.info = mo.None[relay.ChannelInfo]()
	c.title = ""
	c.tracker.Reset(c.channel.IsRelay())
	c.budget.Reset()

	logger.Infof("open %s (%s)", target, c.channel)
	c.notifyChannel()

	if c.channel.IsRelay() {
		c.detect()
	}

	c.relaunch()
}

// relaunch replaces the decoder process of the current session.
func (c *Controller) relaunch() {
	epoch := c.epoch
	c.setState(Ready)
	c.retire(func() {
		if c.epoch == epoch {
			c.launch()
		}
	})
}

func (c *Controller) launch() {
	c.eofReached = false
	c.noVideo = false
	c.seekable = false
	c.childPID = 0

	proc, err := c.opts.Launcher.Launch(c.target)
	if err != nil {
		logger.Errorf("launch %s: %v", c.target, err)
		c.reconnectPending = false
		c.setState(Stopped)
		c.notify(Fatal{Err: err})
		return
	}

	c.proc = proc
	c.lines = proc.Lines()
	c.setState(Ready)
}

// retire detaches the current decoder and terminates it in a task. then runs on the loop once
// the process is gone, or right away when there is none.
func (c *Controller) retire(then func()) {
	proc := c.proc
	c.proc, c.lines = nil, nil

	if proc == nil {
		if then != nil {
			then()
		}
		return
	}

	c.opts.Tasks.Spawn(terminateTask{proc: proc, done: func() {
		if then != nil {
			c.Post(then)
		}
	}})
}

// stop ends playback on the user's behalf.
func (c *Controller) stop() {
	if c.proc == nil && c.state == Stopped {
		return
	}

	c.epoch++
	c.reconnectPending = false

	if c.state != Stopped {
		c.tracker.Rebase()
	}
	c.setState(Stopped)

	epoch := c.epoch
	c.retire(func() {
		if c.epoch == epoch {
			c.requestDisconnect()
		}
	})
}

func (c *Controller) requestDisconnect() {
	if !c.channel.IsRelay() || !c.opts.DisconnectOnStop || c.dialect == relay.DialectUnknown {
		return
	}

	epoch, ch := c.epoch, c.channel
	guard := func() bool {
		return c.epoch == epoch && c.state == Stopped
	}

	logger.Infof("disconnect %s in %s", ch, c.opts.DisconnectDelay)
	c.opts.Relay.Disconnect(ch, c.dialect, c.opts.DisconnectDelay, guard, func(o relay.DisconnectOutcome) {
		logger.Infof("disconnect %s: %s", ch, o)
	})
}

func (c *Controller) detect() {
	ch := c.channel

	hint := relay.DialectUnknown
	if c.opts.Channels != nil {
		hint = c.opts.Channels.Dialect(ch)
	}

	c.opts.Relay.Detect(ch, hint, func(d relay.Dialect) {
		if c.channel != ch {
			return
		}

		c.dialect = d
		c.notifyChannel()

		if d == relay.DialectUnknown {
			return
		}
		if c.opts.Channels != nil {
			c.opts.Channels.RememberDialect(ch, d)
		}
		c.refreshInfo()
	})
}

func (c *Controller) refreshInfo() {
	if !c.channel.IsRelay() || c.dialect == relay.DialectUnknown {
		return
	}

	ch := c.channel
	c.opts.Relay.FetchInfo(ch, c.dialect, func(info mo.Option[relay.ChannelInfo]) {
		if c.channel != ch {
			return
		}

		snapshot, ok := info.Get()
		if !ok {
			return
		}

		prev, known := c.info.Get()
		c.info = info

		changed := !known || prev.Name != snapshot.Name || prev.ContactURL != snapshot.ContactURL
		if changed && c.opts.Channels != nil {
			c.opts.Channels.RememberInfo(ch, snapshot)
		}
		c.notifyChannel()
		c.notifyState()
	})
}

func (c *Controller) notifyChannel() {
	c.notify(ChannelChanged{Channel: c.channel, Dialect: c.dialect, Info: c.info})
}

// lastStatus is the relay status from the last successful fetch.
func (c *Controller) lastStatus() relay.Status {
	if info, ok := c.info.Get(); ok {
		return info.Status
	}
	return relay.StatusUnknown
}

// started handles the Ready to Playing edge.
func (c *Controller) started() {
	c.tracker.Restart()
	c.reconnectPending = false
	c.setState(Playing)

	adj := c.opts.Adjustments
	c.send(fmt.Sprintf("brightness %d 1", adj.Brightness))
	c.send(fmt.Sprintf("contrast %d 1", adj.Contrast))
	c.send(fmt.Sprintf("hue %d 1", adj.Hue))
	c.send(fmt.Sprintf("saturation %d 1", adj.Saturation))
	c.send(fmt.Sprintf("gamma %d 1", adj.Gamma))
	c.send(fmt.Sprintf("volume %d 1", util.Clamp(c.opts.Volume, 0, 100)))

	if pid, ok := c.proc.ChildPID(); ok {
		c.childPID = pid
		logger.Debugf("decoder child pid %d", pid)
	}

	if speed := c.opts.Speed; math.Abs(speed-1) > 1e-9 {
		c.send(fmt.Sprintf("speed_set %.2f", speed))
	}

	if c.channel.IsRelay() {
		// the first stall check comes a full interval after the edge
		if c.control != nil {
			c.control.Reset(c.opts.ControlInterval)
		}
		c.budget.ControlTimestamp = c.tracker.Elapsed()
		c.budget.Errors = 0
	}
}

// decoderPID is the pid doing the decoding: the child behind a wrapper script when one was
// reported, the launched process otherwise, 0 without a decoder.
func (c *Controller) decoderPID() int {
	switch {
	case c.childPID != 0:
		return c.childPID
	case c.proc != nil:
		return c.proc.PID()
	default:
		return 0
	}
}

// onExit handles a decoder that ended on its own. Decoders stopped by the controller are retired
// first, so their exit never reaches here.
func (c *Controller) onExit() {
	exit := c.proc.ExitStatus()
	c.proc, c.lines = nil, nil

	logger.Infof("decoder exited (code %d, crashed %t)", exit.Code, exit.Crashed)

	if !c.channel.IsRelay() {
		if c.eofReached && c.opts.Playlist != nil {
			if next, ok := c.opts.Playlist.Next(); ok {
				c.open(next)
				return
			}
		}
		c.tracker.Rebase()
		c.setState(Stopped)
		return
	}

	c.recover("decoder exited")
}

// recover spends one reconnect attempt, or gives up when the budget is exhausted.
func (c *Controller) recover(reason string) {
	c.budget.Attempts++

	if c.budget.Attempts > c.opts.MaxAttempts {
		logger.With(map[string]any{"pid": c.decoderPID()}).Warnf("%s: %s, giving up", c.channel, reason)
		attempts := c.budget.Attempts - 1

		c.reconnectPending = false
		c.tracker.Rebase()
		c.setState(Stopped)
		c.notify(GaveUp{Attempts: attempts})

		epoch := c.epoch
		c.retire(func() {
			if c.epoch == epoch {
				c.requestDisconnect()
			}
		})
		return
	}

	full := c.lastStatus() != relay.StatusSearch
	logger.With(map[string]any{"pid": c.decoderPID()}).Warnf("%s: %s, reconnect %d/%d (%s)",
		c.channel, reason, c.budget.Attempts, c.opts.MaxAttempts, lo.Ternary(full, "full", "cheap"))

	c.restart(full)
}

// restart relaunches the decoder of the current session, keeping the elapsed time. A full restart
// bumps the relay first.
func (c *Controller) restart(full bool) {
	c.epoch++
	epoch := c.epoch

	c.tracker.Rebase()
	c.reconnectPending = true
	c.budget.Errors = 0
	c.setState(Ready)

	launch := func() {
		if c.epoch == epoch {
			c.launch()
		}
	}

	c.retire(func() {
		if !full || c.dialect == relay.DialectUnknown {
			launch()
			return
		}
		c.opts.Relay.Bump(c.channel, c.dialect, func(error) { launch() })
	})
}

// onControl checks a playing relay stream for stalls.
func (c *Controller) onControl() {
	if !c.channel.IsRelay() || c.state != Playing {
		return
	}

	elapsed := c.tracker.Elapsed()
	advanced := elapsed > c.budget.ControlTimestamp

	if !advanced || c.budget.Errors > c.opts.StallErrors {
		c.recover(fmt.Sprintf("stalled (advanced %t, %d errors)", advanced, c.budget.Errors))
		return
	}

	if c.budget.Errors == 0 && c.budget.Attempts > 0 {
		logger.Debugf("%s: clean cycle, reconnect budget reset", c.channel)
		c.budget.Attempts = 0
	}

	c.budget.ControlTimestamp = elapsed
	c.budget.Errors = 0
	c.refreshInfo()
}

type terminateTask struct {
	proc player.Process
	done func()
}

func (t terminateTask) Name() string         { return fmt.Sprintf("terminate pid %d", t.proc.PID()) }
func (t terminateTask) Limit() time.Duration { return player.TerminateLimit }

func (t terminateTask) Run(ctx context.Context) {
	if err := t.proc.Terminate(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnf("terminate pid %d: %v", t.proc.PID(), err)
	}

	// the process may still be writing; drain so it is never blocked on a full pipe
	lines := t.proc.Lines()
	for open := true; open; {
		select {
		case _, open = <-lines:
		case <-ctx.Done():
			open = false
		}
	}

	t.done()
}
