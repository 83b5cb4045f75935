package pubsub

// StatusType classifies connection health events.
type StatusType int

// Connection health events.
const (
	StatusPingTimer StatusType = iota + 1
	StatusReconnecting
	StatusStaleConnection
	StatusDisconnect
	StatusError
	StatusReconnect
	StatusLDM
	StatusUpdate
)

var statusNames = map[StatusType]string{
	StatusPingTimer:       "pingTimer",
	StatusReconnecting:    "reconnecting",
	StatusStaleConnection: "staleConnection",
	StatusDisconnect:      "disconnect",
	StatusError:           "error",
	StatusReconnect:       "reconnect",
	StatusLDM:             "ldm",
	StatusUpdate:          "update",
}

// String returns the wire name of the status type.
func (t StatusType) String() string {
	if name, ok := statusNames[t]; ok {
		return name
	}
	return "unknown"
}

// Status is a connection health event.
type Status struct {
	Type StatusType
	// Data is a scalar (string, error, number) or a structured value for
	// StatusUpdate (see ServerUpdate).
	Data interface{}
}

// ServerUpdate is the data of a StatusUpdate event.
type ServerUpdate struct {
	Added   []string `json:"added"`
	Deleted []string `json:"deleted"`
}
