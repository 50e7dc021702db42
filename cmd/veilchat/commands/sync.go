package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veilchat/internal/domain"
)

// sync <conversation>: fetch the key chain and resolve epoch keys locally.
func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <conversation>",
		Short: "Fetch and resolve the conversation's epoch keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			resolved, err := appCtx.Sessions.Sync(cmd.Context(), conv)
			if err != nil {
				return err
			}
			fmt.Printf("%s Resolved %d new epoch key(s).\n", color.GreenString("✓"), resolved)

			if title, err := appCtx.Sessions.Title(cmd.Context(), conv); err == nil {
				fmt.Printf("Title: %s\n", title)
			}
			return nil
		},
	}
}
