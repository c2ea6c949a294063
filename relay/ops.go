package relay

import (
	"context"
	"time"

	"github.com/relayplay/relayplay/task"
	"github.com/samber/mo"
)

// probeTask tries one candidate dialect. On failure it hands the detection over to a probe
// for the next candidate, so at most one request is in flight per detection.
type probeTask struct {
	client     *Client
	channel    Channel
	candidates []Dialect
	done       func(Dialect)
}

func (p probeTask) Name() string         { return "probe " + p.candidates[0].String() }
func (p probeTask) Limit() time.Duration { return p.client.limit() }

func (p probeTask) Run(ctx context.Context) {
	d := p.candidates[0]

	if p.client.probe(ctx, p.channel, d) {
		logger.Infof("%s speaks the %s dialect", p.channel.Node(), d)
		p.client.post.Post(func() { p.done(d) })
		return
	}

	if len(p.candidates) > 1 {
		next := p
		next.candidates = p.candidates[1:]
		p.client.tasks.Spawn(next)
		return
	}

	logger.Warnf("%s: no known dialect answered", p.channel.Node())
	p.client.post.Post(func() { p.done(DialectUnknown) })
}

// Detect works out which dialect the channel's node speaks, probing cached first.
// done receives DialectUnknown when no candidate validates.
func (c *Client) Detect(ch Channel, cached Dialect, done func(Dialect)) {
	c.tasks.Spawn(probeTask{
		client:     c,
		channel:    ch,
		candidates: candidates(cached),
		done:       done,
	})
}

// FetchInfo retrieves a complete ChannelInfo. done receives mo.None when the dialect is
// unknown, a request fails, or a required field is missing.
func (c *Client) FetchInfo(ch Channel, d Dialect, done func(mo.Option[ChannelInfo])) {
	switch d {
	case DialectClassic:
		c.tasks.Spawn(task.Func{Label: "viewxml " + ch.ID, Timeout: c.limit(), Fn: func(ctx context.Context) {
			info, err := c.fetchClassic(ctx, ch)
			if err != nil {
				logger.Debugf("viewxml %s: %v", ch, err)
				c.post.Post(func() { done(mo.None[ChannelInfo]()) })
				return
			}
			c.post.Post(func() { done(mo.Some(info)) })
		}})
	case DialectStation:
		c.tasks.Spawn(task.Func{Label: "getChannelInfo " + ch.ID, Timeout: c.limit(), Fn: func(ctx context.Context) {
			raw, err := c.stationCall(ctx, ch, "getChannelInfo", channelParams{ChannelID: ch.ID})
			if err == nil {
				var info ChannelInfo
				if info, err = decodeStationInfo(raw); err == nil {
					c.tasks.Spawn(stationStatusTask{client: c, channel: ch, info: info, done: done})
					return
				}
			}

			logger.Debugf("getChannelInfo %s: %v", ch, err)
			c.post.Post(func() { done(mo.None[ChannelInfo]()) })
		}})
	default:
		c.post.Post(func() { done(mo.None[ChannelInfo]()) })
	}
}

// stationStatusTask completes a getChannelInfo result with getChannelStatus.
type stationStatusTask struct {
	client  *Client
	channel Channel
	info    ChannelInfo
	done    func(mo.Option[ChannelInfo])
}

func (s stationStatusTask) Name() string         { return "getChannelStatus " + s.channel.ID }
func (s stationStatusTask) Limit() time.Duration { return s.client.limit() }

func (s stationStatusTask) Run(ctx context.Context) {
	result := mo.None[ChannelInfo]()

	raw, err := s.client.stationCall(ctx, s.channel, "getChannelStatus", channelParams{ChannelID: s.channel.ID})
	if err == nil {
		var info ChannelInfo
		if info, err = applyStationStatus(s.info, raw); err == nil {
			result = mo.Some(info)
		}
	}
	if err != nil {
		logger.Debugf("getChannelStatus %s: %v", s.channel, err)
	}

	s.client.post.Post(func() { s.done(result) })
}

// Bump asks the node to reconnect the channel upstream. done may be nil.
func (c *Client) Bump(ch Channel, d Dialect, done func(error)) {
	c.spawnCommand(ch, d, "bump", done)
}

// Stop asks the node to drop the channel. done may be nil.
func (c *Client) Stop(ch Channel, d Dialect, done func(error)) {
	c.spawnCommand(ch, d, "stop", done)
}

func (c *Client) spawnCommand(ch Channel, d Dialect, cmd string, done func(error)) {
	c.tasks.Spawn(task.Func{Label: cmd + " " + ch.ID, Timeout: c.limit(), Fn: func(ctx context.Context) {
		err := c.command(ctx, ch, d, cmd)
		if err != nil {
			logger.Warnf("%s %s: %v", cmd, ch, err)
		} else {
			logger.Infof("%s %s", cmd, ch)
		}

		if done != nil {
			c.post.Post(func() { done(err) })
		}
	}})
}
