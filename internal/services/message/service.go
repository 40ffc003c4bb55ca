package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"rtchat/internal/domain"
)

var (
	// ErrMalformedPayload indicates a message payload that is not a JSON object.
	ErrMalformedPayload = errors.New("message: payload is not an object")
)

// Service decodes inbound message events and answers them over the transport.
//
// Flow per event:
//   - Decode the payload into a domain.InboundMessage (drop it if that fails).
//   - Ask the Replier for the outbound text.
//   - Emit a "message" event carrying {"text": reply}, fire-and-forget.
type Service struct {
	transport domain.Transport
	replier   domain.Replier
	log       *slog.Logger

	mu       sync.Mutex
	attached bool
	ctx      context.Context
	active   func() bool
}

// New constructs a message Service. A nil logger discards output.
func New(transport domain.Transport, replier domain.Replier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		transport: transport,
		replier:   replier,
		log:       log,
		ctx:       context.Background(),
	}
}

// Attach registers the message listener on the transport. Only the first
// call registers; later calls return false and change nothing.
//
// active is consulted before every reply so nothing is emitted while the
// owning session is not authenticated. A nil active is always true.
func (s *Service) Attach(ctx context.Context, active func() bool) bool {
	s.mu.Lock()
	if s.attached {
		s.mu.Unlock()
		return false
	}
	s.attached = true
	if ctx != nil {
		s.ctx = ctx
	}
	s.active = active
	s.mu.Unlock()

	s.transport.On(domain.EventMessage, s.OnMessage)
	return true
}

// OnMessage handles one inbound message event.
func (s *Service) OnMessage(payload json.RawMessage) {
	s.mu.Lock()
	ctx, active := s.ctx, s.active
	s.mu.Unlock()

	if active != nil && !active() {
		s.log.Debug("message dropped: session not authenticated")
		return
	}

	in, err := Decode(payload)
	if err != nil {
		s.log.Debug("message dropped", "err", err)
		return
	}
	s.log.Info("received message", "text", in.Text)

	if err := s.Reply(ctx, in); err != nil {
		s.log.Warn("reply failed", "err", err)
	}
}

// Reply generates the answer to in and emits it. Transport errors are
// returned unchanged.
func (s *Service) Reply(ctx context.Context, in domain.InboundMessage) error {
	text, err := s.replier.Reply(ctx, in)
	if err != nil {
		return fmt.Errorf("generate reply: %w", err)
	}
	return s.transport.Emit(domain.EventMessage, domain.OutboundMessage{Text: text})
}

// Decode turns a raw event payload into an InboundMessage.
//
// Any JSON object decodes. A missing or non-string "text" field reads as
// the empty string.
func Decode(payload json.RawMessage) (domain.InboundMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return domain.InboundMessage{}, ErrMalformedPayload
	}
	in := domain.InboundMessage{Fields: fields}
	if raw, ok := fields["text"]; ok {
		var text string
		if json.Unmarshal(raw, &text) == nil {
			in.Text = text
		}
	}
	return in, nil
}
