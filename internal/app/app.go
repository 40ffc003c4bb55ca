package app

import (
	"context"
	"fmt"

	"rtchat/internal/domain"
	"rtchat/internal/relay"
	"rtchat/internal/services/session"
	"rtchat/internal/util/memzero"
)

// Bot is one running chat session and the transport it owns.
type Bot struct {
	Identity domain.BotIdentity
	Client   *relay.Client
	Session  *session.Service
}

// Run starts the session and blocks until ctx ends, the session errors or
// the server goes away. The transport is closed and the secret wiped on
// return; a Bot runs once.
func (b *Bot) Run(ctx context.Context) error {
	defer func() {
		_ = b.Client.Close()
		// The read loop may still be issuing a token from the secret.
		<-b.Client.Done()
		memzero.Zero(b.Identity.Secret)
	}()

	if err := b.Session.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case <-b.Session.Done():
		return b.Session.Err()
	case <-b.Client.Done():
		// An error event can race the close; prefer the session's reason.
		if err := b.Session.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w from %s", session.ErrDisconnected, b.Client.Endpoint())
	}
}
