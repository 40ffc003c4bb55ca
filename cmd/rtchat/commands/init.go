package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seal the bot secret under a passphrase",
		Long: "Reads the bot secret (prompted, or one line from stdin) and stores it\n" +
			"encrypted in <home>/credential.json.enc.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass := passphrase
			if pass == "" {
				var err error
				if pass, err = readSecret("New passphrase"); err != nil {
					return err
				}
				confirm, err := readSecret("Repeat passphrase")
				if err != nil {
					return err
				}
				if confirm != pass {
					return errors.New("passphrases do not match")
				}
			}

			secret, err := readSecret("Bot secret")
			if err != nil {
				return err
			}
			fp, err := appCtx.Identity.Seal(pass, []byte(secret))
			if err != nil {
				return err
			}
			okf("Bot secret sealed.")
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}
