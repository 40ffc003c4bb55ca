package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"rtchat/internal/domain"
)

// Emission is one recorded Emit call.
type Emission struct {
	Event   string
	Payload json.RawMessage
}

// Transport is an in-memory domain.Transport. Tests drive it by calling
// Fire, which runs handlers synchronously the way a transport event loop
// would.
type Transport struct {
	ConnectErr error
	EmitErr    error

	mu       sync.Mutex
	connects int
	handlers map[string][]domain.Handler
	emitted  []Emission
}

// NewTransport returns an empty fake transport.
func NewTransport() *Transport {
	return &Transport{handlers: make(map[string][]domain.Handler)}
}

func (t *Transport) Connect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connects++
	return t.ConnectErr
}

func (t *Transport) On(event string, h domain.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], h)
}

func (t *Transport) Emit(event string, payload any) error {
	if t.EmitErr != nil {
		return t.EmitErr
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitted = append(t.emitted, Emission{Event: event, Payload: body})
	return nil
}

// Fire delivers payload to every handler registered for event.
func (t *Transport) Fire(event string, payload string) {
	t.mu.Lock()
	hs := append([]domain.Handler(nil), t.handlers[event]...)
	t.mu.Unlock()

	var raw json.RawMessage
	if payload != "" {
		raw = json.RawMessage(payload)
	}
	for _, h := range hs {
		h(raw)
	}
}

// Handlers returns how many handlers are registered for event.
func (t *Transport) Handlers(event string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers[event])
}

// Connects returns how many times Connect was called.
func (t *Transport) Connects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects
}

// Emitted returns a copy of every recorded emission, optionally filtered
// to one event name.
func (t *Transport) Emitted(event string) []Emission {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Emission
	for _, e := range t.emitted {
		if event == "" || e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

var _ domain.Transport = (*Transport)(nil)
