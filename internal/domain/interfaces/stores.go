package interfaces

import domaintypes "veilchat/internal/domain/types"

// IdentityStore persists the long-lived account key pair, encrypted under a
// passphrase-derived key.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// ChainCache persists fetched key-chain responses so history can be
// re-resolved without the relay. It only ever holds wrapped material; epoch
// private keys never touch it.
type ChainCache interface {
	SaveKeyChain(conv domaintypes.ConversationID, chain domaintypes.KeyChain) error
	LoadKeyChain(conv domaintypes.ConversationID) (domaintypes.KeyChain, bool, error)
	Conversations() ([]domaintypes.ConversationID, error)
	Close() error
}
