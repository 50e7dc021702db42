package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veilchat/internal/domain"
)

// epochs <conversation>: list locally resolved epochs after a sync.
func epochsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "epochs <conversation>",
		Short: "List the epochs whose keys are resolved locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			if _, err := appCtx.Sessions.Sync(cmd.Context(), conv); err != nil {
				return err
			}

			cache := appCtx.Sessions.Cache()
			epochs := cache.Epochs(conv)
			if len(epochs) == 0 {
				fmt.Println("No epoch keys resolved for this conversation.")
				return nil
			}
			current, _ := cache.CurrentEpoch(conv)
			for _, e := range epochs {
				marker := " "
				if e == current {
					marker = color.GreenString("*")
				}
				fmt.Printf("%s epoch %d\n", marker, e)
			}
			return nil
		},
	}
}
