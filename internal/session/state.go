package session

// State is the connection manager's position in its lifecycle.
type State int

const (
	Disconnected State = iota
	TransportConnected
	ProtocolConnected
	Executing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case TransportConnected:
		return "TransportConnected"
	case ProtocolConnected:
		return "ProtocolConnected"
	case Executing:
		return "Executing"
	default:
		return "Unknown"
	}
}
