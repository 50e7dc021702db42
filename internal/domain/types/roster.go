package types

// HolderKey is the key material the relay serves for one current holder of a
// conversation's epoch key: either a member or a shareable link.
type HolderKey struct {
	PublicKey        X25519Public `json:"publicKey"`
	Privilege        Privilege    `json:"privilege"`
	VisibleFromEpoch Epoch        `json:"visibleFromEpoch"`
	IsLink           bool         `json:"isLink,omitempty"`
}

// Conversation is the relay-side metadata record for a conversation.
// The title travels encrypted under the current epoch public key.
type Conversation struct {
	ID             ConversationID `json:"id"`
	CurrentEpoch   Epoch          `json:"currentEpoch"`
	EncryptedTitle []byte         `json:"encryptedTitle"`
}
