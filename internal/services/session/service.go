package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"rtchat/internal/domain"
)

var (
	// ErrHandshakeRejected wraps the server's error payload when it refuses
	// the session before authentication completes.
	ErrHandshakeRejected = errors.New("session: handshake rejected")
	// ErrHandshakeTimeout means the server did not confirm authentication
	// within the configured wait.
	ErrHandshakeTimeout = errors.New("session: authentication timed out")
	// ErrDisconnected means the transport went away.
	ErrDisconnected = errors.New("session: disconnected")

	errAlreadyStarted = errors.New("session: already started")
)

// Dispatcher is activated once the session is authenticated.
type Dispatcher interface {
	Attach(ctx context.Context, active func() bool) bool
}

// Options tune a Service. The zero value is usable.
type Options struct {
	// ID correlates log lines; empty generates a UUID.
	ID     string
	Logger *slog.Logger
	// AuthTimeout bounds the wait for "authenticated". Zero waits forever.
	AuthTimeout time.Duration
}

// Service is one authenticated session over a transport.
type Service struct {
	id          string
	transport   domain.Transport
	issuer      domain.TokenIssuer
	dispatcher  Dispatcher
	log         *slog.Logger
	authTimeout time.Duration

	mu        sync.Mutex
	state     domain.SessionState
	started   bool
	listening bool
	err       error
	ctx       context.Context
	timer     *time.Timer

	authed     chan struct{}
	authedOnce sync.Once
	done       chan struct{}
	doneOnce   sync.Once
}

// New constructs a session over transport. issuer supplies a fresh token per
// connection attempt and dispatcher is attached after authentication.
func New(transport domain.Transport, issuer domain.TokenIssuer, dispatcher Dispatcher, opts Options) *Service {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		id:          id,
		transport:   transport,
		issuer:      issuer,
		dispatcher:  dispatcher,
		log:         log.With("session", id),
		authTimeout: opts.AuthTimeout,
		state:       domain.StateDisconnected,
		ctx:         context.Background(),
		authed:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// ID returns the session's correlation ID.
func (s *Service) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Service) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns why the session errored, or nil.
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Authenticated is closed the first time the server confirms the session.
func (s *Service) Authenticated() <-chan struct{} { return s.authed }

// Done is closed when the session reaches Errored.
func (s *Service) Done() <-chan struct{} { return s.done }

// Start registers the handshake handlers and connects the transport.
//
// Steps:
//  1. Move Disconnected -> Connecting (a Service starts at most once).
//  2. Register connect, authenticated and error handlers.
//  3. Ask the transport to connect; authentication continues from its
//     "connect" event.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errAlreadyStarted
	}
	s.started = true
	s.state = domain.StateConnecting
	s.ctx = ctx
	s.mu.Unlock()
	s.log.Info("session connecting")

	s.transport.On(domain.EventConnect, s.onConnect)
	s.transport.On(domain.EventAuthenticated, s.onAuthenticated)
	s.transport.On(domain.EventError, s.onError)
	s.transport.On(domain.EventConnectError, s.onError)
	s.transport.On(domain.EventDisconnect, s.onDisconnect)

	if s.authTimeout > 0 {
		s.mu.Lock()
		s.timer = time.AfterFunc(s.authTimeout, s.onAuthTimeout)
		s.mu.Unlock()
	}

	if err := s.transport.Connect(ctx); err != nil {
		err = fmt.Errorf("connect: %w", err)
		s.fail(err)
		return err
	}
	return nil
}

func (s *Service) onConnect(json.RawMessage) {
	s.mu.Lock()
	if s.state == domain.StateErrored {
		s.mu.Unlock()
		return
	}
	tok, err := s.issuer.Issue()
	if err != nil {
		s.mu.Unlock()
		s.fail(fmt.Errorf("issue token: %w", err))
		return
	}
	s.state = domain.StateAwaitingAuth
	s.mu.Unlock()

	s.log.Debug("session connected, authenticating")
	if err := s.transport.Emit(domain.EventAuthenticate, domain.AuthenticatePayload{Token: tok.String()}); err != nil {
		s.fail(fmt.Errorf("send authenticate: %w", err))
	}
}

func (s *Service) onAuthenticated(json.RawMessage) {
	s.mu.Lock()
	switch s.state {
	case domain.StateAwaitingAuth, domain.StateAuthenticated:
	default:
		st := s.state
		s.mu.Unlock()
		s.log.Warn("unexpected authenticated event", "state", st)
		return
	}
	s.state = domain.StateAuthenticated
	first := !s.listening
	s.listening = true
	ctx := s.ctx
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.log.Info("authenticated successfully")
	if first && s.dispatcher != nil {
		s.dispatcher.Attach(ctx, s.isAuthenticated)
		s.log.Debug("message listener registered")
	}
	s.authedOnce.Do(func() { close(s.authed) })
}

func (s *Service) onError(payload json.RawMessage) {
	reason := describe(payload)

	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	switch st {
	case domain.StateConnecting, domain.StateAwaitingAuth:
		s.fail(fmt.Errorf("%w: %s", ErrHandshakeRejected, reason))
	default:
		s.log.Warn("server error", "state", st, "error", reason)
	}
}

func (s *Service) onDisconnect(payload json.RawMessage) {
	s.mu.Lock()
	if s.state == domain.StateErrored {
		s.mu.Unlock()
		return
	}
	s.state = domain.StateDisconnected
	s.mu.Unlock()
	s.log.Info("session disconnected", "reason", describe(payload))
}

func (s *Service) onAuthTimeout() {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	if st == domain.StateConnecting || st == domain.StateAwaitingAuth {
		s.fail(ErrHandshakeTimeout)
	}
}

// fail moves the session to Errored once and records err.
func (s *Service) fail(err error) {
	s.mu.Lock()
	if s.state == domain.StateErrored {
		s.mu.Unlock()
		return
	}
	s.state = domain.StateErrored
	s.err = err
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.log.Error("session failed", "err", err)
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Service) isAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == domain.StateAuthenticated
}

// describe renders an event payload for logs and errors.
func describe(payload json.RawMessage) string {
	if len(payload) == 0 {
		return "no details"
	}
	var e domain.ErrorPayload
	if json.Unmarshal(payload, &e) == nil && e.Message != "" {
		return e.Message
	}
	var s string
	if json.Unmarshal(payload, &s) == nil {
		return s
	}
	return string(payload)
}
