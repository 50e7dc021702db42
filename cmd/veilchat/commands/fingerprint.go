package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"veilchat/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the account fingerprint and public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			id, err := appCtx.Identity.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(id.Pub.Slice()))
			fmt.Printf("Public key:  %s\n", hex.EncodeToString(id.Pub.Slice()))
			return nil
		},
	}
}
