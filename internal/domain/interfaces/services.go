package interfaces

import (
	"context"

	domaintypes "veilchat/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects the account key pair.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// MembershipService performs the membership mutations of a conversation.
// Mutations that must cut off a holder's future access rotate the epoch;
// the returned Epoch is the newly authoritative one.
type MembershipService interface {
	AddMemberWithHistory(
		ctx context.Context,
		conv domaintypes.ConversationID,
		member domaintypes.X25519Public,
		privilege domaintypes.Privilege,
	) error
	AddMember(
		ctx context.Context,
		conv domaintypes.ConversationID,
		member domaintypes.X25519Public,
		privilege domaintypes.Privilege,
	) (domaintypes.Epoch, error)
	RemoveMember(
		ctx context.Context,
		conv domaintypes.ConversationID,
		member domaintypes.X25519Public,
	) (domaintypes.Epoch, error)
	RevokeLink(
		ctx context.Context,
		conv domaintypes.ConversationID,
		link domaintypes.X25519Public,
	) (domaintypes.Epoch, error)
	Leave(ctx context.Context, conv domaintypes.ConversationID) error
	SetPrivilege(
		ctx context.Context,
		conv domaintypes.ConversationID,
		holder domaintypes.X25519Public,
		privilege domaintypes.Privilege,
	) (domaintypes.Epoch, error)
}
