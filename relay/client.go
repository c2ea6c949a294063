package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/relayplay/relayplay/log"
	"github.com/relayplay/relayplay/task"
	"golang.org/x/net/html"
)

// DefaultRepollInterval separates disconnect polls while the node is still searching or connecting.
const DefaultRepollInterval = 5 * time.Second

const (
	classicProbePath = "/html/en/index.html"
	classicAdminPath = "/admin"
	stationRPCPath   = "/api/1"

	// maxBody caps how much of a response is read; viewxml of a busy node stays well below this.
	maxBody = 4 << 20
)

var logger = log.For("relay")

// errEmptyResult is returned for an RPC answered with a null result.
var errEmptyResult = errors.New("empty result")

// Client issues requests against relay nodes. Every request runs inside a task of the
// registry, and every result is handed back through the dispatcher. The client keeps no
// per-channel state: each call carries the channel and dialect it needs.
type Client struct {
	http  *http.Client
	tasks *task.Registry
	post  task.Dispatcher
	rpcID atomic.Int64

	// RepollInterval separates disconnect polls; see DefaultRepollInterval.
	RepollInterval time.Duration
}

// NewClient returns a client that spawns its work in tasks and reports through post.
func NewClient(httpClient *http.Client, tasks *task.Registry, post task.Dispatcher) *Client {
	return &Client{
		http:           httpClient,
		tasks:          tasks,
		post:           post,
		RepollInterval: DefaultRepollInterval,
	}
}

func (c *Client) limit() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout + time.Second
	}
	return task.DefaultLimit
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

// classicGet requests a path of a classic node.
func (c *Client) classicGet(ctx context.Context, ch Channel, path string, query url.Values) ([]byte, error) {
	u := ch.Base() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return c.do(req)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type channelParams struct {
	ChannelID string `json:"channelId"`
}

// stationCall invokes an RPC method on a station node and returns its raw, non-null result.
func (c *Client) stationCall(ctx context.Context, ch Channel, method string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.rpcID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ch.Base()+stationRPCPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", method, err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%s: rpc error %d: %s", method, resp.Error.Code, resp.Error.Message)
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, fmt.Errorf("%s: %w", method, errEmptyResult)
	}

	return resp.Result, nil
}

// probe sends the characteristic request of d and applies its validation predicate.
func (c *Client) probe(ctx context.Context, ch Channel, d Dialect) bool {
	switch d {
	case DialectClassic:
		body, err := c.classicGet(ctx, ch, classicProbePath, nil)
		if err != nil {
			logger.Debugf("classic probe %s: %v", ch.Node(), err)
			return false
		}
		return isClassicStatusPage(body)
	case DialectStation:
		raw, err := c.stationCall(ctx, ch, "getVersionInfo", nil)
		if err != nil {
			logger.Debugf("station probe %s: %v", ch.Node(), err)
			return false
		}

		var version struct {
			AgentName string `json:"agentName"`
		}
		return json.Unmarshal(raw, &version) == nil && version.AgentName != ""
	default:
		return false
	}
}

// isClassicStatusPage reports whether the document's title names a classic node.
// Station nodes also serve HTML pages titled after themselves, so those are excluded.
func isClassicStatusPage(doc []byte) bool {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return false
	}

	title := strings.ToLower(findTitle(root))
	return strings.Contains(title, "peercast") && !strings.Contains(title, "peercaststation")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var b strings.Builder
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				b.WriteString(child.Data)
			}
		}
		return b.String()
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if title := findTitle(child); title != "" {
			return title
		}
	}
	return ""
}

func (c *Client) fetchClassic(ctx context.Context, ch Channel) (ChannelInfo, error) {
	body, err := c.classicGet(ctx, ch, classicAdminPath, url.Values{"cmd": {"viewxml"}})
	if err != nil {
		return ChannelInfo{}, err
	}
	return parseViewXML(body, ch.ID)
}

// command sends bump or stop for the channel.
func (c *Client) command(ctx context.Context, ch Channel, d Dialect, cmd string) error {
	switch d {
	case DialectClassic:
		_, err := c.classicGet(ctx, ch, classicAdminPath, url.Values{"cmd": {cmd}, "id": {ch.ID}})
		return err
	case DialectStation:
		_, err := c.stationCall(ctx, ch, cmd+"Channel", channelParams{ChannelID: ch.ID})
		if errors.Is(err, errEmptyResult) {
			// bumpChannel and stopChannel answer with a null result on success
			return nil
		}
		return err
	default:
		return fmt.Errorf("%s %s: dialect unknown", cmd, ch)
	}
}
