package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtchat/internal/app"
	"rtchat/internal/domain"
	"rtchat/internal/protocol/token"
	"rtchat/internal/relay"
	"rtchat/internal/services/session"
	"rtchat/internal/store"
)

func startRelay(t *testing.T, key string, onMessage func(string, json.RawMessage)) (*relay.Server, string) {
	t.Helper()
	srv := relay.NewServer(relay.ServerConfig{
		Verifier:  &token.Verifier{Key: []byte(key), MaxSkew: time.Minute},
		OnMessage: onMessage,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts.URL
}

// logBuffer is a goroutine-safe log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

func TestBotIdentity_PlaintextSecretWins(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.Secret = "plain"

	id, err := app.NewWire(cfg, nil).BotIdentity("")
	require.NoError(t, err)
	assert.Equal(t, domain.BotIdentity{Issuer: "rt-chat-bot", Secret: []byte("plain")}, id)
}

func TestBotIdentity_SealedCredential(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Home = t.TempDir()
	w := app.NewWire(cfg, nil)

	_, err := w.BotIdentity("")
	assert.ErrorIs(t, err, app.ErrPassphraseRequired)

	_, err = w.BotIdentity("Correct-Horse-9")
	assert.ErrorIs(t, err, store.ErrNoCredential)

	_, err = w.Identity.Seal("Correct-Horse-9", []byte("sealed-secret"))
	require.NoError(t, err)
	id, err := w.BotIdentity("Correct-Horse-9")
	require.NoError(t, err)
	assert.Equal(t, "sealed-secret", string(id.Secret))
}

func TestBot_RunAnswersUntilCancelled(t *testing.T) {
	replies := make(chan json.RawMessage, 1)
	srv, url := startRelay(t, "shared", func(_ string, p json.RawMessage) { replies <- p })

	cfg := app.DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.ServerURL = url
	cfg.ReplyText = "pong"
	logs := &logBuffer{}
	w := app.NewWire(cfg, slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	secret := []byte("shared")
	bot, err := w.NewBot(domain.BotIdentity{Issuer: "rt-chat-bot", Secret: secret})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	select {
	case <-bot.Session.Authenticated():
	case <-time.After(5 * time.Second):
		t.Fatal("bot never authenticated")
	}
	require.Equal(t, 1, srv.Broadcast(domain.EventMessage, map[string]string{"text": "ping"}))
	select {
	case p := <-replies:
		assert.JSONEq(t, `{"text":"pong"}`, string(p))
	case <-time.After(5 * time.Second):
		t.Fatal("bot never replied")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Run returns only after the transport is gone, then wipes the secret.
	select {
	case <-bot.Client.Done():
	default:
		t.Fatal("transport still running after Run returned")
	}
	assert.Equal(t, make([]byte, len(secret)), secret)

	tag := "session=" + bot.Session.ID()
	var sawReceive bool
	for _, line := range logs.Lines() {
		assert.Contains(t, line, tag)
		if strings.Contains(line, "received message") {
			sawReceive = true
		}
	}
	assert.True(t, sawReceive, "dispatcher did not log the inbound message")
}

func TestBot_RunReturnsHandshakeRejection(t *testing.T) {
	_, url := startRelay(t, "server-side", nil)

	cfg := app.DefaultConfig()
	cfg.ServerURL = url
	bot, err := app.NewWire(cfg, nil).NewBot(domain.BotIdentity{Issuer: "rt-chat-bot", Secret: []byte("bot-side")})
	require.NoError(t, err)

	err = bot.Run(context.Background())
	assert.ErrorIs(t, err, session.ErrHandshakeRejected)
}

func TestBot_RunReportsDisconnect(t *testing.T) {
	srv, url := startRelay(t, "shared", nil)

	cfg := app.DefaultConfig()
	cfg.ServerURL = url
	bot, err := app.NewWire(cfg, nil).NewBot(domain.BotIdentity{Issuer: "rt-chat-bot", Secret: []byte("shared")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- bot.Run(context.Background()) }()

	select {
	case <-bot.Session.Authenticated():
	case <-time.After(5 * time.Second):
		t.Fatal("bot never authenticated")
	}
	srv.Close()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, session.ErrDisconnected), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after disconnect")
	}
}

func TestNewBot_InvalidConfig(t *testing.T) {
	_, err := app.NewWire(app.DefaultConfig(), nil).NewBot(domain.BotIdentity{Secret: []byte("x")})
	assert.Error(t, err)
}
