package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"rtchat/internal/domain"
	"rtchat/internal/protocol/token"
	"rtchat/internal/relay"
	"rtchat/internal/services/identity"
	"rtchat/internal/services/message"
	"rtchat/internal/services/reply"
	"rtchat/internal/services/session"
	"rtchat/internal/store"
)

// ErrPassphraseRequired means no plaintext secret is configured and the
// sealed credential needs a passphrase to open.
var ErrPassphraseRequired = errors.New("passphrase required to open the sealed credential (-p)")

// Wire bundles the long-lived services the CLI needs.
type Wire struct {
	Config      Config
	Logger      *slog.Logger
	Credentials *store.CredentialFileStore
	Identity    *identity.Service
}

// NewWire constructs the dependency graph from cfg. A nil logger discards output.
func NewWire(cfg Config, log *slog.Logger) *Wire {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	creds := store.NewCredentialFileStore(cfg.Home)
	return &Wire{
		Config:      cfg,
		Logger:      log,
		Credentials: creds,
		Identity:    identity.New(creds),
	}
}

// BotIdentity resolves the bot secret: a configured plaintext secret wins,
// otherwise the sealed credential is opened with passphrase.
func (w *Wire) BotIdentity(passphrase string) (domain.BotIdentity, error) {
	if w.Config.Secret != "" {
		return domain.BotIdentity{Issuer: w.Config.Issuer, Secret: []byte(w.Config.Secret)}, nil
	}
	if passphrase == "" {
		return domain.BotIdentity{}, ErrPassphraseRequired
	}
	return w.Identity.Identity(passphrase, w.Config.Issuer)
}

// NewBot assembles one session for id against the configured server.
func (w *Wire) NewBot(id domain.BotIdentity) (*Bot, error) {
	if err := w.Config.Validate(); err != nil {
		return nil, err
	}
	sid := uuid.NewString()
	log := w.Logger.With("session", sid)
	client, err := relay.NewClient(w.Config.ServerURL, relay.WithLogger(log))
	if err != nil {
		return nil, err
	}

	signer := token.NewSigner(id, nil)
	dispatcher := message.New(client, reply.NewStatic(w.Config.ReplyText), log)
	sess := session.New(client, signer, dispatcher, session.Options{
		ID:          sid,
		Logger:      w.Logger,
		AuthTimeout: w.Config.AuthTimeout,
	})
	return &Bot{
		Identity: id,
		Client:   client,
		Session:  sess,
	}, nil
}
