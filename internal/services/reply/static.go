package reply

import (
	"context"

	"rtchat/internal/domain"
)

// DefaultGreeting is what the bot answers when nothing else is configured.
const DefaultGreeting = "Hello! I'm a chatbot!"

// Static answers every message with the same text.
type Static struct {
	text string
}

// NewStatic returns a Static replier. An empty text uses DefaultGreeting.
func NewStatic(text string) *Static {
	if text == "" {
		text = DefaultGreeting
	}
	return &Static{text: text}
}

// Reply returns the configured text regardless of the inbound message.
func (s *Static) Reply(context.Context, domain.InboundMessage) (string, error) {
	return s.text, nil
}

var _ domain.Replier = (*Static)(nil)
