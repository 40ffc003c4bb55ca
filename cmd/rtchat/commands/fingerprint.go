package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rtchat/internal/services/identity"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the bot secret fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := botIdentity()
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", identity.Fingerprint(id.Secret))
			return nil
		},
	}
}
