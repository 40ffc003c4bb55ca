package app_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtchat/internal/app"
)

func TestDefaultConfig(t *testing.T) {
	cfg := app.DefaultConfig()
	assert.Equal(t, "rt-chat-bot", cfg.Issuer)
	assert.Equal(t, "Hello! I'm a chatbot!", cfg.ReplyText)
	assert.Error(t, cfg.Validate(), "server URL is required")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), app.ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`
server_url: https://chat.example.com
issuer: swift-rt-chat-bot
auth_timeout: 15s
log_level: debug
`), 0o600))

	cfg, err := app.LoadConfigFile(app.DefaultConfig(), path, false)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", cfg.ServerURL)
	assert.Equal(t, "swift-rt-chat-bot", cfg.Issuer)
	assert.Equal(t, 15*time.Second, cfg.AuthTimeout)
	assert.Equal(t, "Hello! I'm a chatbot!", cfg.ReplyText, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := app.LoadConfigFile(app.DefaultConfig(), path, true)
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig(), cfg)

	_, err = app.LoadConfigFile(app.DefaultConfig(), path, false)
	assert.Error(t, err)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), app.ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("auth_timeout: [not a duration\n"), 0o600))
	_, err := app.LoadConfigFile(app.DefaultConfig(), path, false)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.ServerURL = "http://from-file"
	env := map[string]string{app.EnvSecret: "env-secret"}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "http://from-file", cfg.ServerURL)
	assert.Equal(t, "env-secret", cfg.Secret)
}

func TestValidate(t *testing.T) {
	ok := app.DefaultConfig()
	ok.ServerURL = "http://127.0.0.1:8080"
	require.NoError(t, ok.Validate())

	bad := ok
	bad.ServerURL = "ftp://127.0.0.1"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.AuthTimeout = -time.Second
	assert.Error(t, bad.Validate())

	bad = ok
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())
}
