package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// run: authenticate to --server and answer messages until interrupted.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect, authenticate and answer messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Config.Validate(); err != nil {
				return err
			}
			id, err := botIdentity()
			if err != nil {
				return err
			}
			bot, err := appCtx.NewBot(id)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				select {
				case <-bot.Session.Authenticated():
					okf("Authenticated successfully!")
				case <-ctx.Done():
				}
			}()

			fmt.Println(dimFmt("connecting to " + bot.Client.Endpoint()))
			return bot.Run(ctx)
		},
	}
}
