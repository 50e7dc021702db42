package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veilchat/internal/domain"
)

func leaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <conversation>",
		Short: "Leave a conversation (deletes it if you are the sole owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			if _, err := appCtx.Sessions.Sync(cmd.Context(), conv); err != nil {
				return err
			}
			if err := appCtx.Membership.Leave(cmd.Context(), conv); err != nil {
				return err
			}
			fmt.Printf("%s Left conversation %s.\n", color.GreenString("✓"), conv)
			return nil
		},
	}
}
