package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veilchat/internal/domain"
)

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage conversation membership",
	}
	cmd.AddCommand(memberAddCmd(), memberRemoveCmd(), revokeLinkCmd(), setPrivilegeCmd())
	return cmd
}

func memberAddCmd() *cobra.Command {
	var (
		privilege   string
		withHistory bool
	)
	cmd := &cobra.Command{
		Use:   "add <conversation> <member-public-key>",
		Short: "Add a member, with or without history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			member, err := parsePublicKey(args[1])
			if err != nil {
				return err
			}
			priv, err := parsePrivilege(privilege)
			if err != nil {
				return err
			}
			if priv == domain.PrivilegeNone {
				return fmt.Errorf("cannot add a member with privilege %q", priv)
			}

			if _, err := appCtx.Sessions.Sync(cmd.Context(), conv); err != nil {
				return err
			}

			if withHistory {
				err := appCtx.Membership.AddMemberWithHistory(cmd.Context(), conv, member, priv)
				if err != nil {
					return err
				}
				fmt.Printf("%s Member added with full history.\n", color.GreenString("✓"))
				return nil
			}

			epoch, err := appCtx.Membership.AddMember(cmd.Context(), conv, member, priv)
			if err != nil {
				return err
			}
			fmt.Printf("%s Member added from epoch %d onward.\n", color.GreenString("✓"), epoch)
			return nil
		},
	}
	cmd.Flags().StringVar(&privilege, "privilege", "viewer", "privilege for the new member (owner, editor, viewer)")
	cmd.Flags().BoolVar(&withHistory, "history", false, "grant access to the full conversation history")
	return cmd
}

func memberRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <conversation> <member-public-key>",
		Short: "Remove a member and rotate the epoch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			member, err := parsePublicKey(args[1])
			if err != nil {
				return err
			}
			if _, err := appCtx.Sessions.Sync(cmd.Context(), conv); err != nil {
				return err
			}
			epoch, err := appCtx.Membership.RemoveMember(cmd.Context(), conv, member)
			if err != nil {
				return err
			}
			fmt.Printf("%s Member removed. Conversation is now at epoch %d.\n", color.GreenString("✓"), epoch)
			return nil
		},
	}
}

func revokeLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-link <conversation> <link-public-key>",
		Short: "Revoke a shareable link and rotate the epoch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			link, err := parsePublicKey(args[1])
			if err != nil {
				return err
			}
			if _, err := appCtx.Sessions.Sync(cmd.Context(), conv); err != nil {
				return err
			}
			epoch, err := appCtx.Membership.RevokeLink(cmd.Context(), conv, link)
			if err != nil {
				return err
			}
			fmt.Printf("%s Link revoked. Conversation is now at epoch %d.\n", color.GreenString("✓"), epoch)
			return nil
		},
	}
}

func setPrivilegeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-privilege <conversation> <member-public-key> <privilege>",
		Short: "Change a member's privilege",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(); err != nil {
				return err
			}
			conv := domain.ConversationID(args[0])
			member, err := parsePublicKey(args[1])
			if err != nil {
				return err
			}
			priv, err := parsePrivilege(args[2])
			if err != nil {
				return err
			}
			if _, err := appCtx.Sessions.Sync(cmd.Context(), conv); err != nil {
				return err
			}
			epoch, err := appCtx.Membership.SetPrivilege(cmd.Context(), conv, member, priv)
			if err != nil {
				return err
			}
			if priv == domain.PrivilegeNone {
				fmt.Printf("%s Membership revoked. Conversation is now at epoch %d.\n", color.GreenString("✓"), epoch)
			} else {
				fmt.Printf("%s Privilege set to %s.\n", color.GreenString("✓"), priv)
			}
			return nil
		},
	}
}
