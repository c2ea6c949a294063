package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relayplay/relayplay/task"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

const testID = "0123456789ABCDEF0123456789ABCDEF"

func channelOf(srv *httptest.Server) Channel {
	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	return Channel{Host: u.Hostname(), Port: port, ID: testID}
}

func viewXML(status string, relays, listeners int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<peercast session="00">
<channels_relayed total="2">
<channel id="FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF" name="Other" bitrate="100" url="" genre="" desc="">
<relay listeners="9" relays="9" hosts="0" status="RECEIVE" firewalled="0"/>
<hits hosts="1" listeners="0" relays="9"/>
</channel>
<channel id="%s" name="Test channel" bitrate="500" url="http://example.com/contact" genre="" desc="">
<relay listeners="%d" relays="%d" hosts="0" status="%s" firewalled="0"/>
<hits hosts="1" listeners="0" relays="7"/>
</channel>
</channels_relayed>
</peercast>`, testID, listeners, relays, status)
}

// classicNode fakes a classic relay node. status is read on every viewxml request.
type classicNode struct {
	status    atomic.Value
	requests  atomic.Int32
	viewxml   atomic.Int32
	stops     atomic.Int32
	bumps     atomic.Int32
	consumers int
}

func (n *classicNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.requests.Add(1)

	switch r.URL.Path {
	case classicProbePath:
		fmt.Fprint(w, `<html><head><title>PeerCast on localhost</title></head><body></body></html>`)
	case classicAdminPath:
		switch r.URL.Query().Get("cmd") {
		case "viewxml":
			n.viewxml.Add(1)
			fmt.Fprint(w, viewXML(n.status.Load().(string), n.consumers, 0))
		case "stop":
			if r.URL.Query().Get("id") == testID {
				n.stops.Add(1)
			}
		case "bump":
			n.bumps.Add(1)
		}
	default:
		http.NotFound(w, r)
	}
}

func newClassicNode(status string, consumers int) *classicNode {
	n := &classicNode{consumers: consumers}
	n.status.Store(status)
	return n
}

// stationNode fakes a station relay node.
type stationNode struct {
	requests atomic.Int32
	methods  chan string
	status   map[string]any
}

func (n *stationNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.requests.Add(1)

	if r.URL.Path != stationRPCPath || r.Method != http.MethodPost || r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Method string `json:"method"`
		ID     int64  `json:"id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if n.methods != nil {
		n.methods <- req.Method
	}

	var result any
	switch req.Method {
	case "getVersionInfo":
		result = map[string]any{"agentName": "PeerCastStation/3.0"}
	case "getChannelInfo":
		result = map[string]any{"info": map[string]any{"name": "Station channel", "url": "http://example.com", "bitrate": 800}}
	case "getChannelStatus":
		result = n.status
	case "stopChannel", "bumpChannel":
		result = nil
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

func newClient() (*Client, *task.Registry) {
	tasks := task.NewRegistry(context.Background())
	return NewClient(&http.Client{Timeout: 2 * time.Second}, tasks, task.Inline), tasks
}

func receive[T any](ch <-chan T) (T, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(3 * time.Second):
		var zero T
		return zero, false
	}
}

func TestParseTarget(t *testing.T) {
	Convey("Given stream URLs", t, func() {
		Convey("A relay stream should yield its channel", func() {
			ch := ParseTarget("http://localhost:7144/stream/0123456789abcdef0123456789abcdef.flv?tip=1.2.3.4:7144")
			So(ch.IsRelay(), ShouldBeTrue)
			So(ch.Host, ShouldEqual, "localhost")
			So(ch.Port, ShouldEqual, 7144)
			So(ch.ID, ShouldEqual, testID)
			So(ch.Base(), ShouldEqual, "http://localhost:7144")
		})

		Convey("Playlist and mms URLs should be accepted", func() {
			So(ParseTarget("http://127.0.0.1:7145/pls/"+testID).IsRelay(), ShouldBeTrue)
			So(ParseTarget("mmsh://127.0.0.1:7145/stream/"+testID+".wmv").IsRelay(), ShouldBeTrue)
		})

		Convey("Anything else should not be a relay stream", func() {
			So(ParseTarget("/home/user/video.mkv").IsRelay(), ShouldBeFalse)
			So(ParseTarget("http://localhost/stream/"+testID).IsRelay(), ShouldBeFalse)
			So(ParseTarget("http://localhost:7144/stream/0123").IsRelay(), ShouldBeFalse)
			So(ParseTarget("http://localhost:99999/stream/"+testID).IsRelay(), ShouldBeFalse)
			So(ParseTarget("").String(), ShouldEqual, "<local>")
		})
	})
}

func TestDialect(t *testing.T) {
	Convey("Dialects should round trip through their names", t, func() {
		for _, d := range []Dialect{DialectUnknown, DialectClassic, DialectStation} {
			So(ParseDialect(d.String()), ShouldEqual, d)
		}
		So(ParseDialect("garbage"), ShouldEqual, DialectUnknown)
	})

	Convey("The cached dialect should be probed first", t, func() {
		So(candidates(DialectStation), ShouldResemble, []Dialect{DialectStation, DialectClassic})
		So(candidates(DialectClassic), ShouldResemble, []Dialect{DialectClassic, DialectStation})
		So(candidates(DialectUnknown), ShouldResemble, []Dialect{DialectClassic, DialectStation})
	})
}

func TestStatusFromString(t *testing.T) {
	Convey("Given the two status tables", t, func() {
		So(StatusFromString(DialectClassic, "RECEIVE"), ShouldEqual, StatusReceive)
		So(StatusFromString(DialectClassic, "NOHOSTS"), ShouldEqual, StatusNoHosts)
		So(StatusFromString(DialectClassic, "Receiving"), ShouldEqual, StatusUnknown)

		So(StatusFromString(DialectStation, "Receiving"), ShouldEqual, StatusReceive)
		So(StatusFromString(DialectStation, "Searching"), ShouldEqual, StatusSearch)
		So(StatusFromString(DialectStation, "Finished"), ShouldEqual, StatusClose)
		So(StatusFromString(DialectStation, "RECEIVE"), ShouldEqual, StatusUnknown)

		So(StatusFromString(DialectUnknown, "RECEIVE"), ShouldEqual, StatusUnknown)
		So(StatusNotFound.String(), ShouldEqual, "NotFound")
		So(Status(99).String(), ShouldEqual, "Unknown")
	})
}

func TestParsing(t *testing.T) {
	Convey("Given a viewxml document", t, func() {
		Convey("The channel should be matched by id", func() {
			info, err := parseViewXML([]byte(viewXML("RECEIVE", 2, 1)), "0123456789abcdef0123456789abcdef")
			So(err, ShouldBeNil)
			So(info, ShouldResemble, ChannelInfo{
				Name:         "Test channel",
				ContactURL:   "http://example.com/contact",
				Bitrate:      500,
				LocalRelays:  2,
				LocalDirects: 1,
				TotalRelays:  7,
				Status:       StatusReceive,
			})
		})

		Convey("A channel that is not relayed should fail", func() {
			_, err := parseViewXML([]byte(viewXML("RECEIVE", 0, 0)), "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
			So(err, ShouldNotBeNil)
		})

		Convey("A channel missing its relay element should fail", func() {
			doc := `<peercast><channels_relayed><channel id="` + testID + `" name="x" bitrate="1" url=""><hits relays="0"/></channel></channels_relayed></peercast>`
			_, err := parseViewXML([]byte(doc), testID)
			So(errors.Is(err, errIncomplete), ShouldBeTrue)
		})
	})

	Convey("Given station RPC results", t, func() {
		info, err := decodeStationInfo(json.RawMessage(`{"info":{"name":"n","url":"u","bitrate":300}}`))
		So(err, ShouldBeNil)

		Convey("A complete status should fill the snapshot", func() {
			info, err = applyStationStatus(info, json.RawMessage(`{"status":"Receiving","localRelays":1,"localDirects":2,"totalRelays":5,"isBroadcasting":false}`))
			So(err, ShouldBeNil)
			So(info.Status, ShouldEqual, StatusReceive)
			So(info.Consumers(), ShouldEqual, 3)
			So(info.Bitrate, ShouldEqual, 300)
		})

		Convey("Broadcasting should override the status", func() {
			info, err = applyStationStatus(info, json.RawMessage(`{"status":"Idle","localRelays":0,"localDirects":0,"totalRelays":0,"isBroadcasting":true}`))
			So(err, ShouldBeNil)
			So(info.Status, ShouldEqual, StatusBroadcast)
		})

		Convey("Missing fields should fail", func() {
			_, err = applyStationStatus(info, json.RawMessage(`{"status":"Idle"}`))
			So(errors.Is(err, errIncomplete), ShouldBeTrue)
			_, err = decodeStationInfo(json.RawMessage(`{"info":{"url":"u"}}`))
			So(errors.Is(err, errIncomplete), ShouldBeTrue)
		})
	})

	Convey("Given status pages", t, func() {
		So(isClassicStatusPage([]byte(`<html><head><title>PeerCast on host</title></head></html>`)), ShouldBeTrue)
		So(isClassicStatusPage([]byte(`<html><head><title>PeerCastStation</title></head></html>`)), ShouldBeFalse)
		So(isClassicStatusPage([]byte(`<html><body>PeerCast</body></html>`)), ShouldBeFalse)
	})
}

func TestDetect(t *testing.T) {
	Convey("Given a classic node", t, func() {
		node := newClassicNode("RECEIVE", 1)
		srv := httptest.NewServer(node)
		defer srv.Close()

		client, tasks := newClient()
		result := make(chan Dialect, 1)

		Convey("When the station dialect is cached", func() {
			client.Detect(channelOf(srv), DialectStation, func(d Dialect) { result <- d })

			d, ok := receive(result)
			So(ok, ShouldBeTrue)
			So(tasks.Drain(time.Second), ShouldBeTrue)

			Convey("It should fall back to classic after exactly two requests", func() {
				So(d, ShouldEqual, DialectClassic)
				So(node.requests.Load(), ShouldEqual, 2)
			})
		})

		Convey("When nothing is cached only one request should be needed", func() {
			client.Detect(channelOf(srv), DialectUnknown, func(d Dialect) { result <- d })

			d, ok := receive(result)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, DialectClassic)
			So(tasks.Drain(time.Second), ShouldBeTrue)
			So(node.requests.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given a station node", t, func() {
		node := &stationNode{}
		srv := httptest.NewServer(node)
		defer srv.Close()

		client, tasks := newClient()
		result := make(chan Dialect, 1)
		client.Detect(channelOf(srv), DialectUnknown, func(d Dialect) { result <- d })

		d, ok := receive(result)
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, DialectStation)
		So(tasks.Drain(time.Second), ShouldBeTrue)
		So(node.requests.Load(), ShouldEqual, 2)
	})

	Convey("Given an unreachable node", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		ch := channelOf(srv)
		srv.Close()

		client, tasks := newClient()
		result := make(chan Dialect, 1)
		client.Detect(ch, DialectClassic, func(d Dialect) { result <- d })

		d, ok := receive(result)
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, DialectUnknown)
		So(tasks.Drain(time.Second), ShouldBeTrue)
	})
}

func TestFetchInfo(t *testing.T) {
	Convey("Given a classic node", t, func() {
		srv := httptest.NewServer(newClassicNode("RECEIVE", 3))
		defer srv.Close()

		client, tasks := newClient()
		result := make(chan mo.Option[ChannelInfo], 1)
		client.FetchInfo(channelOf(srv), DialectClassic, func(o mo.Option[ChannelInfo]) { result <- o })

		o, ok := receive(result)
		So(ok, ShouldBeTrue)
		info, present := o.Get()
		So(present, ShouldBeTrue)
		So(info.Name, ShouldEqual, "Test channel")
		So(info.LocalRelays, ShouldEqual, 3)
		So(tasks.Drain(time.Second), ShouldBeTrue)
	})

	Convey("Given a station node", t, func() {
		node := &stationNode{
			methods: make(chan string, 4),
			status:  map[string]any{"status": "Receiving", "localRelays": 1, "localDirects": 0, "totalRelays": 4},
		}
		srv := httptest.NewServer(node)
		defer srv.Close()

		client, tasks := newClient()
		result := make(chan mo.Option[ChannelInfo], 1)
		client.FetchInfo(channelOf(srv), DialectStation, func(o mo.Option[ChannelInfo]) { result <- o })

		o, ok := receive(result)
		So(ok, ShouldBeTrue)
		So(tasks.Drain(time.Second), ShouldBeTrue)

		Convey("Info and status should be requested in order", func() {
			So(<-node.methods, ShouldEqual, "getChannelInfo")
			So(<-node.methods, ShouldEqual, "getChannelStatus")

			info := o.MustGet()
			So(info.Name, ShouldEqual, "Station channel")
			So(info.Bitrate, ShouldEqual, 800)
			So(info.Status, ShouldEqual, StatusReceive)
			So(info.TotalRelays, ShouldEqual, 4)
		})
	})

	Convey("Given an incomplete station status", t, func() {
		srv := httptest.NewServer(&stationNode{status: map[string]any{"status": "Idle"}})
		defer srv.Close()

		client, tasks := newClient()
		result := make(chan mo.Option[ChannelInfo], 1)
		client.FetchInfo(channelOf(srv), DialectStation, func(o mo.Option[ChannelInfo]) { result <- o })

		o, ok := receive(result)
		So(ok, ShouldBeTrue)
		So(o.IsAbsent(), ShouldBeTrue)
		So(tasks.Drain(time.Second), ShouldBeTrue)
	})

	Convey("An unknown dialect should yield nothing without a request", t, func() {
		client, tasks := newClient()
		result := make(chan mo.Option[ChannelInfo], 1)
		client.FetchInfo(Channel{Host: "127.0.0.1", Port: 1, ID: testID}, DialectUnknown, func(o mo.Option[ChannelInfo]) { result <- o })

		o, ok := receive(result)
		So(ok, ShouldBeTrue)
		So(o.IsAbsent(), ShouldBeTrue)
		So(tasks.Len(), ShouldEqual, 0)
	})
}

func TestCommands(t *testing.T) {
	Convey("Given a classic node", t, func() {
		node := newClassicNode("RECEIVE", 0)
		srv := httptest.NewServer(node)
		defer srv.Close()

		client, tasks := newClient()
		errs := make(chan error, 2)
		client.Bump(channelOf(srv), DialectClassic, func(err error) { errs <- err })
		client.Stop(channelOf(srv), DialectClassic, func(err error) { errs <- err })

		for i := 0; i < 2; i++ {
			err, ok := receive(errs)
			So(ok, ShouldBeTrue)
			So(err, ShouldBeNil)
		}
		So(tasks.Drain(time.Second), ShouldBeTrue)
		So(node.bumps.Load(), ShouldEqual, 1)
		So(node.stops.Load(), ShouldEqual, 1)
	})

	Convey("A station node answering null should count as success", t, func() {
		srv := httptest.NewServer(&stationNode{})
		defer srv.Close()

		client, tasks := newClient()
		errs := make(chan error, 1)
		client.Stop(channelOf(srv), DialectStation, func(err error) { errs <- err })

		err, ok := receive(errs)
		So(ok, ShouldBeTrue)
		So(err, ShouldBeNil)
		So(tasks.Drain(time.Second), ShouldBeTrue)
	})

	Convey("An unknown dialect should fail", t, func() {
		client, tasks := newClient()
		errs := make(chan error, 1)
		client.Bump(Channel{Host: "127.0.0.1", Port: 1, ID: testID}, DialectUnknown, func(err error) { errs <- err })

		err, ok := receive(errs)
		So(ok, ShouldBeTrue)
		So(err, ShouldNotBeNil)
		So(tasks.Drain(time.Second), ShouldBeTrue)
	})
}

func TestDecideDisconnect(t *testing.T) {
	Convey("Given channel snapshots", t, func() {
		So(decideDisconnect(ChannelInfo{Status: StatusBroadcast}), ShouldEqual, verdictKeep)
		So(decideDisconnect(ChannelInfo{Status: StatusSearch}), ShouldEqual, verdictRepoll)
		So(decideDisconnect(ChannelInfo{Status: StatusConnect, LocalRelays: 2}), ShouldEqual, verdictRepoll)
		So(decideDisconnect(ChannelInfo{Status: StatusReceive, LocalRelays: 1}), ShouldEqual, verdictKeep)
		So(decideDisconnect(ChannelInfo{Status: StatusReceive, LocalDirects: 1}), ShouldEqual, verdictKeep)
		So(decideDisconnect(ChannelInfo{Status: StatusReceive}), ShouldEqual, verdictStop)
		So(decideDisconnect(ChannelInfo{Status: StatusIdle}), ShouldEqual, verdictStop)
		So(decideDisconnect(ChannelInfo{Status: StatusError, LocalRelays: 4}), ShouldEqual, verdictStop)
	})
}

func TestDisconnect(t *testing.T) {
	Convey("Given a classic node", t, func() {
		client, tasks := newClient()
		client.RepollInterval = 50 * time.Millisecond
		outcomes := make(chan DisconnectOutcome, 1)

		So(DefaultRepollInterval, ShouldEqual, 5*time.Second)

		Convey("An idle channel without listeners should be stopped exactly once", func() {
			node := newClassicNode("IDLE", 0)
			srv := httptest.NewServer(node)
			defer srv.Close()

			client.Disconnect(channelOf(srv), DialectClassic, 0, nil, func(o DisconnectOutcome) { outcomes <- o })

			o, ok := receive(outcomes)
			So(ok, ShouldBeTrue)
			So(o, ShouldEqual, OutcomeStopped)
			So(tasks.Drain(time.Second), ShouldBeTrue)
			So(node.stops.Load(), ShouldEqual, 1)
		})

		Convey("A relayed channel should be kept and the chain should end", func() {
			node := newClassicNode("RECEIVE", 2)
			srv := httptest.NewServer(node)
			defer srv.Close()

			client.Disconnect(channelOf(srv), DialectClassic, 0, nil, func(o DisconnectOutcome) { outcomes <- o })

			o, ok := receive(outcomes)
			So(ok, ShouldBeTrue)
			So(o, ShouldEqual, OutcomeKept)
			So(tasks.Drain(time.Second), ShouldBeTrue)
			So(node.stops.Load(), ShouldEqual, 0)
			So(node.viewxml.Load(), ShouldEqual, 1)
		})

		Convey("A searching channel should be polled again without a stop", func() {
			node := newClassicNode("SEARCH", 0)
			srv := httptest.NewServer(node)
			defer srv.Close()

			var current atomic.Bool
			current.Store(true)

			client.Disconnect(channelOf(srv), DialectClassic, 0, current.Load, func(o DisconnectOutcome) { outcomes <- o })

			So(waitFor(func() bool { return node.viewxml.Load() >= 3 }), ShouldBeTrue)
			So(node.stops.Load(), ShouldEqual, 0)

			Convey("Until the node settles", func() {
				node.status.Store("IDLE")

				o, ok := receive(outcomes)
				So(ok, ShouldBeTrue)
				So(o, ShouldEqual, OutcomeStopped)
				So(tasks.Drain(time.Second), ShouldBeTrue)
				So(node.stops.Load(), ShouldEqual, 1)
			})

			Convey("Until the owner moves on", func() {
				current.Store(false)

				o, ok := receive(outcomes)
				So(ok, ShouldBeTrue)
				So(o, ShouldEqual, OutcomeSuperseded)
				So(tasks.Drain(time.Second), ShouldBeTrue)
				So(node.stops.Load(), ShouldEqual, 0)
			})
		})

		Convey("An unreachable node should give up the cycle", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()

			client.Disconnect(channelOf(srv), DialectClassic, 0, nil, func(o DisconnectOutcome) { outcomes <- o })

			o, ok := receive(outcomes)
			So(ok, ShouldBeTrue)
			So(o, ShouldEqual, OutcomeUnavailable)
			So(tasks.Drain(time.Second), ShouldBeTrue)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
