package domain

// Event names shared with the server.
const (
	EventAuthenticate  = "authenticate"
	EventAuthenticated = "authenticated"
	EventError         = "error"
	EventMessage       = "message"
)

// Reserved events raised by the transport itself.
const (
	EventConnect      = "connect"
	EventConnectError = "connect_error"
	EventDisconnect   = "disconnect"
)

// AuthenticatePayload is the body of the outbound authenticate event.
type AuthenticatePayload struct {
	Token string `json:"token"`
}

// ErrorPayload is the body the server sends with an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
