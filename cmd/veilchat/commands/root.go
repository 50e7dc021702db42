package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veilchat/internal/app"
	"veilchat/internal/domain"
)

var (
	home       string
	passphrase string
	relayURL   string

	appCtx *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "veilchat",
		Short: "End-to-end encrypted group chat CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".veilchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}

			appCtx, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.veilchat)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the account key")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		createCmd(),
		syncCmd(),
		epochsCmd(),
		memberCmd(),
		leaveCmd(),
	)
	return root.Execute()
}

// login unlocks the account key and starts the session for commands that
// need epoch material.
func login() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	id, err := appCtx.Identity.LoadIdentity(passphrase)
	if err != nil {
		return err
	}
	appCtx.Sessions.Login(id)
	return nil
}

// parsePublicKey decodes a 32-byte hex-encoded X25519 public key argument.
func parsePublicKey(arg string) (domain.X25519Public, error) {
	var pub domain.X25519Public
	raw, err := hex.DecodeString(arg)
	if err != nil {
		return pub, fmt.Errorf("public key %q is not hex: %w", arg, err)
	}
	if len(raw) != len(pub) {
		return pub, fmt.Errorf("public key must be %d bytes, got %d", len(pub), len(raw))
	}
	copy(pub[:], raw)
	return pub, nil
}

// parsePrivilege maps a privilege name to its domain value.
func parsePrivilege(arg string) (domain.Privilege, error) {
	switch domain.Privilege(arg) {
	case domain.PrivilegeOwner, domain.PrivilegeEditor, domain.PrivilegeViewer, domain.PrivilegeNone:
		return domain.Privilege(arg), nil
	}
	return "", fmt.Errorf("unknown privilege %q (owner, editor, viewer, none)", arg)
}
