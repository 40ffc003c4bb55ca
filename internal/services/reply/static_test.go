package reply_test

import (
	"context"
	"testing"

	"rtchat/internal/domain"
	"rtchat/internal/services/reply"
)

func TestStatic(t *testing.T) {
	got, err := reply.NewStatic("").Reply(context.Background(), domain.InboundMessage{Text: "hi"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != reply.DefaultGreeting {
		t.Fatalf("want %q, got %q", reply.DefaultGreeting, got)
	}

	got, _ = reply.NewStatic("pong").Reply(context.Background(), domain.InboundMessage{})
	if got != "pong" {
		t.Fatalf("want pong, got %q", got)
	}
}
