package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rtchat/internal/domain"
	"rtchat/internal/relay"
	"rtchat/internal/services/reply"
)

// Environment variables read by ApplyEnv.
const (
	EnvServerURL = "RTCHAT_SERVER_URL"
	EnvSecret    = "RTCHAT_BOT_SECRET"
)

// ConfigFile is the default config file name inside the home directory.
const ConfigFile = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string        `yaml:"-"`            // config directory, e.g. $HOME/.rtchat
	ServerURL   string        `yaml:"server_url"`   // e.g. http://127.0.0.1:8080
	Issuer      string        `yaml:"issuer"`       // iss claim
	Secret      string        `yaml:"secret"`       // plaintext secret; prefer the sealed credential
	AuthTimeout time.Duration `yaml:"auth_timeout"` // zero waits forever
	ReplyText   string        `yaml:"reply_text"`
	LogLevel    string        `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Issuer:    domain.DefaultIssuer,
		ReplyText: reply.DefaultGreeting,
		LogLevel:  "info",
	}
}

// LoadConfigFile overlays the YAML file at path onto cfg. A missing file is
// not an error when optional is true.
func LoadConfigFile(cfg Config, path string, optional bool) (Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && optional {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty environment values onto cfg.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := getenv(EnvSecret); v != "" {
		c.Secret = v
	}
}

// Validate checks the options a running session needs.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server URL required (--server or " + EnvServerURL + ")")
	}
	if _, err := relay.ParseURL(c.ServerURL); err != nil {
		return err
	}
	if c.AuthTimeout < 0 {
		return errors.New("auth_timeout must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
