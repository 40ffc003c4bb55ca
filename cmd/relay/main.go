package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rtchat/internal/app"
	"rtchat/internal/domain"
	"rtchat/internal/protocol/token"
	"rtchat/internal/relay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr    string
		secret  string
		issuers []string
		maxSkew time.Duration
		debug   bool
	)

	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Development Socket.IO relay for rtchat bots",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(app.EnvSecret)
			}
			if secret == "" {
				return fmt.Errorf("bot secret required (--secret or %s)", app.EnvSecret)
			}

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			botSays := color.New(color.FgCyan).SprintFunc()
			srv := relay.NewServer(relay.ServerConfig{
				Verifier: &token.Verifier{
					Key:     []byte(secret),
					MaxSkew: maxSkew,
					Issuers: issuers,
				},
				Logger: logger,
				OnMessage: func(sid string, payload json.RawMessage) {
					var out domain.OutboundMessage
					if err := json.Unmarshal(payload, &out); err != nil {
						logger.Warn("undecodable bot message", "sid", sid, "err", err)
						return
					}
					fmt.Printf("%s %s\n", botSays("["+sid[:8]+"]"), out.Text)
				},
			})
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go forwardStdin(ctx, srv, logger)
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			logger.Info("relay listening", "addr", addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "shared bot secret (default $"+app.EnvSecret+")")
	cmd.Flags().StringSliceVar(&issuers, "issuer", nil, "accepted token issuers (repeatable; empty accepts any)")
	cmd.Flags().DurationVar(&maxSkew, "max-skew", 5*time.Minute, "accepted iat clock skew (0 disables)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

// forwardStdin broadcasts each stdin line to authenticated bots.
func forwardStdin(ctx context.Context, srv *relay.Server, log *slog.Logger) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		n := srv.Broadcast(domain.EventMessage, map[string]string{"text": line})
		log.Info("broadcast", "text", line, "bots", n)
	}
}
