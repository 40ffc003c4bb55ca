package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"rtchat/internal/app"
)

var (
	home       string
	configPath string
	passphrase string
	appCtx     *app.Wire

	serverURL   string
	issuer      string
	logLevel    string
	authTimeout time.Duration
)

func Execute() error {
	root := &cobra.Command{
		Use:           "rtchat",
		Short:         "Real-time chat bot client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".rtchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			path, optional := configPath, false
			if path == "" {
				path, optional = filepath.Join(home, app.ConfigFile), true
			}
			cfg, err := app.LoadConfigFile(app.DefaultConfig(), path, optional)
			if err != nil {
				return err
			}
			cfg.Home = home
			cfg.ApplyEnv(os.Getenv)

			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.ServerURL = serverURL
			}
			if flags.Changed("issuer") {
				cfg.Issuer = issuer
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("auth-timeout") {
				cfg.AuthTimeout = authTimeout
			}

			level, err := cfg.Level()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			appCtx = app.NewWire(cfg, logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.rtchat)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the sealed bot secret")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "chat server base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&issuer, "issuer", "", "issuer label signed into tokens (default rt-chat-bot)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().DurationVar(&authTimeout, "auth-timeout", 0, "give up if not authenticated within this long (0 waits forever)")

	root.AddCommand(initCmd(), fingerprintCmd(), tokenCmd(), runCmd())
	if err := root.Execute(); err != nil {
		failf("%v", err)
		return err
	}
	return nil
}
