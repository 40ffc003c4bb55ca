package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rtchat/internal/protocol/token"
)

// tokenCmd prints the credential the bot would present right now. Useful
// for checking a server's verifier by hand.
func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a freshly issued token",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := botIdentity()
			if err != nil {
				return err
			}
			tok, err := token.NewSigner(id, nil).Issue()
			if err != nil {
				return err
			}
			fmt.Println(tok.String())
			return nil
		},
	}
}
