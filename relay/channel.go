// Package relay talks to the relay node serving a channel: it works out which of the two
// incompatible APIs the node speaks, reads channel metadata, and issues bump and stop commands.
package relay

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/relayplay/relayplay/util"
)

// Channel identifies a relay stream. Port zero marks a resource that is not a relay stream.
type Channel struct {
	Host string
	Port int
	ID   string
}

var targetPattern = regexp.MustCompile(
	`^(?i)(?:https?|mmsh?|rtsp|pcp)://(?P<host>[^/:?#]+):(?P<port>\d{1,5})/(?:stream|pls)/(?P<id>[0-9a-f]{32})(?:\.\w+)?(?:[?#].*)?$`,
)

// ParseTarget extracts the channel behind a stream URL such as
// http://localhost:7144/stream/0123456789ABCDEF0123456789ABCDEF.flv.
// Anything else yields the zero Channel.
func ParseTarget(target string) Channel {
	groups := util.ReGroups(targetPattern, strings.TrimSpace(target))
	if groups == nil {
		return Channel{}
	}

	port, err := strconv.Atoi(groups["port"])
	if err != nil || port <= 0 || port > 65535 {
		return Channel{}
	}

	return Channel{
		Host: groups["host"],
		Port: port,
		ID:   strings.ToUpper(groups["id"]),
	}
}

// IsRelay reports whether c names a relay stream.
func (c Channel) IsRelay() bool {
	return c.Port != 0
}

// Base is the root URL of the node's HTTP interface.
func (c Channel) Base() string {
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Node identifies the relay node regardless of channel.
func (c Channel) Node() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Channel) String() string {
	if !c.IsRelay() {
		return "<local>"
	}
	return fmt.Sprintf("%s/%s", c.Node(), c.ID)
}

// Dialect is the API flavour a relay node speaks.
type Dialect int

const (
	DialectUnknown Dialect = iota
	// DialectClassic serves an HTML status page and an XML admin endpoint (viewxml).
	DialectClassic
	// DialectStation serves a JSON-RPC endpoint.
	DialectStation
)

func (d Dialect) String() string {
	switch d {
	case DialectClassic:
		return "classic"
	case DialectStation:
		return "station"
	default:
		return "unknown"
	}
}

// ParseDialect is the inverse of Dialect.String.
func ParseDialect(s string) Dialect {
	switch strings.ToLower(s) {
	case "classic":
		return DialectClassic
	case "station":
		return DialectStation
	default:
		return DialectUnknown
	}
}

// candidates orders the dialects to probe, trying the cached one first.
func candidates(cached Dialect) []Dialect {
	if cached == DialectStation {
		return []Dialect{DialectStation, DialectClassic}
	}
	return []Dialect{DialectClassic, DialectStation}
}
