package relay

// Status is the relay's view of a channel. The two dialects expose different subsets.
type Status int

const (
	StatusUnknown Status = iota
	StatusNone
	StatusWait
	StatusConnect
	StatusRequest
	StatusClose
	StatusReceive
	StatusBroadcast
	StatusAbort
	StatusSearch
	StatusNoHosts
	StatusIdle
	StatusError
	StatusNotFound
)

var statusNames = map[Status]string{
	StatusUnknown:   "Unknown",
	StatusNone:      "None",
	StatusWait:      "Wait",
	StatusConnect:   "Connect",
	StatusRequest:   "Request",
	StatusClose:     "Close",
	StatusReceive:   "Receive",
	StatusBroadcast: "Broadcast",
	StatusAbort:     "Abort",
	StatusSearch:    "Search",
	StatusNoHosts:   "NoHosts",
	StatusIdle:      "Idle",
	StatusError:     "Error",
	StatusNotFound:  "NotFound",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

var classicStatuses = map[string]Status{
	"NONE":      StatusNone,
	"WAIT":      StatusWait,
	"CONNECT":   StatusConnect,
	"REQUEST":   StatusRequest,
	"CLOSE":     StatusClose,
	"RECEIVE":   StatusReceive,
	"BROADCAST": StatusBroadcast,
	"ABORT":     StatusAbort,
	"SEARCH":    StatusSearch,
	"NOHOSTS":   StatusNoHosts,
	"IDLE":      StatusIdle,
	"ERROR":     StatusError,
	"NOTFOUND":  StatusNotFound,
}

var stationStatuses = map[string]Status{
	"Idle":       StatusIdle,
	"Connecting": StatusConnect,
	"Searching":  StatusSearch,
	"Receiving":  StatusReceive,
	"Error":      StatusError,
	"Finished":   StatusClose,
}

// StatusFromString maps a dialect's status text onto Status. Unknown text maps to StatusUnknown.
func StatusFromString(d Dialect, text string) Status {
	var table map[string]Status

	switch d {
	case DialectClassic:
		table = classicStatuses
	case DialectStation:
		table = stationStatuses
	default:
		return StatusUnknown
	}

	if s, ok := table[text]; ok {
		return s
	}
	return StatusUnknown
}
