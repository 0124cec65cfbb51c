package types

import "encoding/json"

// ConnectionStatus tracks the sync engine's link to the remote store.
// Transitions: disconnected -> connecting -> connected; error is
// reachable from connecting on any store failure; connected goes back
// to disconnected only via an explicit leave.
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s ConnectionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
