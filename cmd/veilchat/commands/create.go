package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a conversation with yourself as sole owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv, err := appCtx.Sessions.CreateConversation(cmd.Context(), []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("%s Conversation created at epoch 1.\nID: %s\n", color.GreenString("✓"), conv)
			return nil
		},
	}
}
