package interfaces

import (
	"context"

	domaintypes "veilchat/internal/domain/types"
)

// RelayClient is how we talk to the conversation relay, all with context.
// The relay is an untrusted store-and-forward party: everything it returns
// is verified cryptographically before use.
type RelayClient interface {
	CreateConversation(ctx context.Context, req domaintypes.CreateRequest) error
	FetchConversation(
		ctx context.Context,
		conv domaintypes.ConversationID,
	) (domaintypes.Conversation, error)
	FetchKeyChain(
		ctx context.Context,
		conv domaintypes.ConversationID,
		holder domaintypes.X25519Public,
	) (domaintypes.KeyChain, error)
	FetchRoster(
		ctx context.Context,
		conv domaintypes.ConversationID,
	) ([]domaintypes.HolderKey, error)
	SubmitRotation(
		ctx context.Context,
		conv domaintypes.ConversationID,
		req domaintypes.RotationRequest,
	) (domaintypes.Epoch, error)
	SubmitMemberWrap(
		ctx context.Context,
		conv domaintypes.ConversationID,
		wrap domaintypes.DirectWrap,
	) error
	UpdatePrivilege(
		ctx context.Context,
		conv domaintypes.ConversationID,
		holder domaintypes.X25519Public,
		privilege domaintypes.Privilege,
	) error
	DeleteConversation(ctx context.Context, conv domaintypes.ConversationID) error
}

// RosterSource supplies the current holder key material for a conversation.
// The rotation coordinator depends on this narrow slice of RelayClient so it
// stays transport-agnostic.
type RosterSource interface {
	FetchRoster(
		ctx context.Context,
		conv domaintypes.ConversationID,
	) ([]domaintypes.HolderKey, error)
}
