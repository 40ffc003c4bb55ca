package domain

// SessionState is the lifecycle state of one authenticated session.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateAwaitingAuth
	StateAuthenticated
	StateErrored
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingAuth:
		return "awaiting-auth"
	case StateAuthenticated:
		return "authenticated"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}
