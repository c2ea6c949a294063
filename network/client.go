// Package network provides pre-configured HTTP clients for talking to relay nodes.
package network

import (
	"net/http"
	"time"

	"github.com/relayplay/relayplay/constant"
)

// New returns a client with a tuned transport, the given per-request timeout and the application User-Agent.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgent{next: newTransport()},
	}
}

// newTransport initializes a tuned http.Transport. Relay nodes are usually local, so the pool stays small.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 16
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	t.ExpectContinueTimeout = 1 * time.Second
	return t
}

type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.next.RoundTrip(req)
}
