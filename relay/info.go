package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// ChannelInfo is a complete snapshot of a channel as reported by its relay node.
type ChannelInfo struct {
	Name         string
	ContactURL   string
	Bitrate      int
	LocalRelays  int
	LocalDirects int
	TotalRelays  int
	Status       Status
}

// Consumers counts the peers and players fed by this node.
func (i ChannelInfo) Consumers() int {
	return i.LocalRelays + i.LocalDirects
}

var errIncomplete = errors.New("incomplete channel description")

var (
	viewxmlChannels = xmlpath.MustCompile("/peercast/channels_relayed/channel")
	viewxmlID       = xmlpath.MustCompile("@id")
	viewxmlName     = xmlpath.MustCompile("@name")
	viewxmlBitrate  = xmlpath.MustCompile("@bitrate")
	viewxmlURL      = xmlpath.MustCompile("@url")
	viewxmlStatus   = xmlpath.MustCompile("relay/@status")
	viewxmlRelays   = xmlpath.MustCompile("relay/@relays")
	viewxmlDirects  = xmlpath.MustCompile("relay/@listeners")
	viewxmlTotal    = xmlpath.MustCompile("hits/@relays")
)

// parseViewXML finds the channel with the given id in a viewxml document.
func parseViewXML(doc []byte, id string) (ChannelInfo, error) {
	root, err := xmlpath.Parse(bytes.NewReader(doc))
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("parse viewxml: %w", err)
	}

	iter := viewxmlChannels.Iter(root)
	for iter.Next() {
		node := iter.Node()

		if got, ok := viewxmlID.String(node); !ok || !strings.EqualFold(got, id) {
			continue
		}

		return channelFromNode(node)
	}

	return ChannelInfo{}, fmt.Errorf("channel %s: not relayed", id)
}

func channelFromNode(node *xmlpath.Node) (ChannelInfo, error) {
	var (
		info  ChannelInfo
		texts = make(map[*xmlpath.Path]string)
	)

	for _, p := range []*xmlpath.Path{viewxmlName, viewxmlURL, viewxmlStatus} {
		s, ok := p.String(node)
		if !ok {
			return ChannelInfo{}, errIncomplete
		}
		texts[p] = s
	}

	ints := []struct {
		path *xmlpath.Path
		dst  *int
	}{
		{viewxmlBitrate, &info.Bitrate},
		{viewxmlRelays, &info.LocalRelays},
		{viewxmlDirects, &info.LocalDirects},
		{viewxmlTotal, &info.TotalRelays},
	}

	for _, field := range ints {
		s, ok := field.path.String(node)
		if !ok {
			return ChannelInfo{}, errIncomplete
		}

		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return ChannelInfo{}, fmt.Errorf("%w: %v", errIncomplete, err)
		}
		*field.dst = n
	}

	info.Name = texts[viewxmlName]
	info.ContactURL = texts[viewxmlURL]
	info.Status = StatusFromString(DialectClassic, texts[viewxmlStatus])

	return info, nil
}

// stationInfo is the result of getChannelInfo. Pointers tell absent fields from zero values.
type stationInfo struct {
	Info *struct {
		Name    *string `json:"name"`
		URL     string  `json:"url"`
		Bitrate *int    `json:"bitrate"`
	} `json:"info"`
}

// stationStatus is the result of getChannelStatus.
type stationStatus struct {
	Status         *string `json:"status"`
	LocalRelays    *int    `json:"localRelays"`
	LocalDirects   *int    `json:"localDirects"`
	TotalRelays    *int    `json:"totalRelays"`
	IsBroadcasting bool    `json:"isBroadcasting"`
}

func decodeStationInfo(raw json.RawMessage) (ChannelInfo, error) {
	var res stationInfo
	if err := json.Unmarshal(raw, &res); err != nil {
		return ChannelInfo{}, fmt.Errorf("decode getChannelInfo: %w", err)
	}

	if res.Info == nil || res.Info.Name == nil || res.Info.Bitrate == nil {
		return ChannelInfo{}, errIncomplete
	}

	return ChannelInfo{
		Name:       *res.Info.Name,
		ContactURL: res.Info.URL,
		Bitrate:    *res.Info.Bitrate,
	}, nil
}

// applyStationStatus completes info with a getChannelStatus result.
func applyStationStatus(info ChannelInfo, raw json.RawMessage) (ChannelInfo, error) {
	var res stationStatus
	if err := json.Unmarshal(raw, &res); err != nil {
		return ChannelInfo{}, fmt.Errorf("decode getChannelStatus: %w", err)
	}

	if res.Status == nil || res.LocalRelays == nil || res.LocalDirects == nil || res.TotalRelays == nil {
		return ChannelInfo{}, errIncomplete
	}

	info.LocalRelays = *res.LocalRelays
	info.LocalDirects = *res.LocalDirects
	info.TotalRelays = *res.TotalRelays
	info.Status = StatusFromString(DialectStation, *res.Status)

	if res.IsBroadcasting {
		info.Status = StatusBroadcast
	}

	return info, nil
}
