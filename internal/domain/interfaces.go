package domain

import (
	"context"
	"encoding/json"
)

// Handler receives the raw JSON payload of one event. Payload is nil when
// the event carried no arguments.
type Handler func(payload json.RawMessage)

// Transport is the real-time event connection a session runs over.
//
// Handlers registered with On are invoked one at a time by the transport's
// own event loop.
type Transport interface {
	Connect(ctx context.Context) error
	On(event string, h Handler)
	Emit(event string, payload any) error
}

// TokenIssuer produces a fresh credential for each handshake attempt.
type TokenIssuer interface {
	Issue() (Token, error)
}

// Replier produces the outbound text for one inbound message.
type Replier interface {
	Reply(ctx context.Context, in InboundMessage) (string, error)
}

// CredentialStore persists the bot secret sealed under a passphrase.
type CredentialStore interface {
	SaveSecret(passphrase string, secret []byte) error
	LoadSecret(passphrase string) ([]byte, error)
}
