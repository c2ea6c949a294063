package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/relayplay/relayplay/protocol"
	"github.com/relayplay/relayplay/task"
	"github.com/relayplay/relayplay/util"
)

var errScreenshot = errors.New("decoder could not write the screenshot")

// now is replaced in tests.
var now = time.Now

// onLine applies one decoder line.
func (c *Controller) onLine(line string) {
	ev := c.opts.Parser.Parse(line, c.state == Stopped)

	switch e := ev.(type) {
	case nil:
		return
	case protocol.StatusTick:
		c.onTick(e.Seconds)
		return
	case protocol.FrameTick:
		c.onTick(e.Seconds)
		return
	case protocol.GeometryReport:
		logger.Debugf("video output %s %dx%d", e.Driver, e.Width, e.Height)
		if c.state == Ready {
			c.started()
		}
	case protocol.PausedToggle:
		if c.state == Playing {
			c.setState(Paused)
		}
	case protocol.ConnectingNotice:
		c.notify(Progress{Kind: ProgressConnecting})
	case protocol.CacheFillPercent:
		c.notify(Progress{Kind: ProgressCache, Percent: e.Percent})
	case protocol.IndexingPercent:
		c.notify(Progress{Kind: ProgressIndex, Percent: float64(e.Percent)})
	case protocol.LengthReport:
		logger.Debugf("length %.1fs", e.Seconds)
	case protocol.SeekableReport:
		c.seekable = e.Seekable
		c.notifyState()
	case protocol.MetaField:
		if e.Kind == protocol.MetaTitle {
			c.title = e.Value
		}
		c.notify(MetaChanged{Kind: e.Kind.String(), Value: e.Value})
	case protocol.NoVideoNotice:
		c.noVideo = true
	case protocol.StartingNotice:
		if c.state == Ready && c.noVideo {
			c.started()
		}
	case protocol.CacheStarved:
		if c.channel.IsRelay() {
			c.budget.Errors++
		}
	case protocol.EndOfFile:
		c.eofReached = true
	case protocol.ScreenshotSaved:
		c.moveScreenshot(e.Path)
	case protocol.ScreenshotError:
		c.notify(ScreenshotTaken{Err: errScreenshot})
	}

	c.notify(OutputLine{Text: line})
}

// onTick feeds a status time to the tracker. Ticks before playback has started are ignored.
func (c *Controller) onTick(seconds float64) {
	switch c.state {
	case Playing:
	case Paused:
		c.setState(Playing)
	default:
		return
	}

	res := c.tracker.Tick(seconds)

	if to, ok := res.Seek.Get(); ok {
		c.send(fmt.Sprintf("seek %.1f 2", to))
	}

	c.notifyTime()

	if res.SoftReconnect && c.channel.IsRelay() {
		logger.Infof("%s: position jumped, restarting decoder", c.channel)
		c.restart(false)
	}
}

func (c *Controller) notifyTime() {
	elapsed := c.tracker.Elapsed()
	display := util.FormatElapsed(elapsed)
	if display == c.lastDisplay {
		return
	}

	c.lastDisplay = display
	c.notify(TimeChanged{Elapsed: elapsed, Display: display})
}

// moveScreenshot moves a file written by the decoder into the screenshot directory once the
// decoder had time to finish it.
func (c *Controller) moveScreenshot(path string) {
	from := path
	if !filepath.IsAbs(from) && c.proc != nil {
		from = filepath.Join(c.proc.Dir(), path)
	}

	name := fmt.Sprintf("%s-%s%s", util.SanitizeFilename(c.screenshotTitle()), now().Format("20060102-150405"), filepath.Ext(path))
	to := filepath.Join(c.opts.ScreenshotDir, name)

	c.opts.Tasks.Spawn(task.Rename{
		From:  from,
		To:    to,
		Delay: c.opts.RenameDelay,
		Done: func(err error) {
			c.Post(func() {
				if err != nil {
					c.notify(ScreenshotTaken{Path: from, Err: err})
					return
				}
				c.notify(ScreenshotTaken{Path: to})
			})
		},
	})
}

func (c *Controller) screenshotTitle() string {
	if c.title != "" {
		return c.title
	}
	if info, ok := c.info.Get(); ok && info.Name != "" {
		return info.Name
	}

	base := strings.TrimSuffix(filepath.Base(c.target), filepath.Ext(c.target))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "screenshot"
	}
	return base
}
