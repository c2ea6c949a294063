package session

import (
	"fmt"

	"github.com/relayplay/relayplay/relay"
	"github.com/relayplay/relayplay/util"
)

// Speed and volume bounds.
const (
	MinSpeed  = 0.1
	MaxSpeed  = 10.0
	MaxVolume = 100
)

// Open starts a new session on target, replacing the current one.
func (c *Controller) Open(target string) {
	c.Post(func() { c.open(target) })
}

// Play resumes a paused decoder, restarts a stopped session on the same target, or restarts the
// decoder of a running one. An explicit play always refills the reconnect budget.
func (c *Controller) Play() {
	c.Post(c.play)
}

func (c *Controller) play() {
	switch c.state {
	case Paused:
		c.send("pause")
	case Stopped:
		if c.target == "" {
			return
		}

		c.epoch++
		c.budget.Reset()

		// playback starts over from the beginning, so only the repeat bounds survive
		start, end := c.tracker.Repeat()
		c.tracker.Reset(c.channel.IsRelay())
		c.tracker.SetRepeat(start, end)
		c.lastDisplay = ""

		logger.Infof("play %s", c.target)

		if c.channel.IsRelay() && c.dialect == relay.DialectUnknown {
			c.detect()
		}
		c.relaunch()
	default:
		c.budget.Reset()
		c.restart(false)
	}
}

// TogglePause pauses or resumes playback.
func (c *Controller) TogglePause() {
	c.Post(func() {
		if c.state == Playing || c.state == Paused {
			c.send("pause")
		}
	})
}

// Stop ends playback. For relay streams it may ask the relay to drop the channel afterwards.
func (c *Controller) Stop() {
	c.Post(c.stop)
}

// Seek moves to an absolute position in seconds when the stream allows it.
func (c *Controller) Seek(seconds float64) {
	c.Post(func() {
		if c.state != Playing && c.state != Paused {
			return
		}
		if !c.seekable {
			logger.Debugf("seek ignored, stream is not seekable")
			return
		}
		c.send(fmt.Sprintf("seek %.1f 2", max(seconds, 0)))
	})
}

// ToggleRepeat presses the A-B repeat button. Relay streams cannot repeat.
func (c *Controller) ToggleRepeat() {
	c.Post(func() {
		if c.channel.IsRelay() || c.state == Stopped {
			return
		}

		start, end := c.tracker.PressRepeat()
		c.notify(RepeatChanged{Start: start, End: end})
	})
}

// SetSpeed changes the playback speed. It also applies to later launches.
func (c *Controller) SetSpeed(speed float64) {
	c.Post(func() {
		c.opts.Speed = util.Clamp(speed, MinSpeed, MaxSpeed)
		if c.state == Playing || c.state == Paused {
			c.send(fmt.Sprintf("speed_set %.2f", c.opts.Speed))
		}
	})
}

// SetVolume changes the volume, from 0 to 100. It also applies to later launches.
func (c *Controller) SetVolume(volume int) {
	c.Post(func() {
		c.opts.Volume = util.Clamp(volume, 0, MaxVolume)
		if c.state == Playing || c.state == Paused {
			c.send(fmt.Sprintf("volume %d 1", c.opts.Volume))
		}
	})
}

// Screenshot asks the decoder for a screenshot of the current frame.
func (c *Controller) Screenshot() {
	c.Post(func() {
		if c.state == Playing && !c.noVideo {
			c.send("screenshot 0")
		}
	})
}

// Quit stops playback and makes Run return.
func (c *Controller) Quit() {
	c.Post(func() {
		c.quitting = true
		c.stop()
	})
}
