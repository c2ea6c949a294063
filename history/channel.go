package history

import (
	"fmt"
	"time"

	"github.com/relayplay/relayplay/relay"
)

// SavedChannel is a relay channel the user has opened, with what was learnt about its node.
type SavedChannel struct {
	Host       string    `json:"host"`
	Port       int       `json:"port"`
	ID         string    `json:"id"`
	Target     string    `json:"target"`
	Name       string    `json:"name,omitempty"`
	ContactURL string    `json:"contact_url,omitempty"`
	Dialect    string    `json:"dialect,omitempty"`
	LastPlayed time.Time `json:"last_played"`
}

func (s *SavedChannel) encode() string {
	return s.Channel().String()
}

// Channel is the identity of the saved record.
func (s *SavedChannel) Channel() relay.Channel {
	return relay.Channel{Host: s.Host, Port: s.Port, ID: s.ID}
}

func (s *SavedChannel) String() string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	return fmt.Sprintf("%s @ %s", name, s.Channel().Node())
}

func newSavedChannel(target string, ch relay.Channel) *SavedChannel {
	return &SavedChannel{
		Host:   ch.Host,
		Port:   ch.Port,
		ID:     ch.ID,
		Target: target,
	}
}
