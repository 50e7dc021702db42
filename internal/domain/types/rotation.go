package types

// MemberWrap is the new epoch private key wrapped to one holder of the new
// epoch. Exactly one of MemberPublicKey and LinkPublicKey is set.
type MemberWrap struct {
	MemberPublicKey  *X25519Public `json:"memberPublicKey,omitempty"`
	LinkPublicKey    *X25519Public `json:"linkPublicKey,omitempty"`
	Wrap             []byte        `json:"wrap"`
	Privilege        Privilege     `json:"privilege"`
	VisibleFromEpoch Epoch         `json:"visibleFromEpoch"`
}

// HolderPublicKey returns whichever public key the wrap is addressed to.
func (w MemberWrap) HolderPublicKey() X25519Public {
	if w.MemberPublicKey != nil {
		return *w.MemberPublicKey
	}
	if w.LinkPublicKey != nil {
		return *w.LinkPublicKey
	}
	return X25519Public{}
}

// RotationRequest is the complete new-epoch submission, computed client-side
// and sent as a single unit. ExpectedEpoch is the optimistic-concurrency
// guard: the relay accepts the request only while it still matches the
// authoritative current epoch.
type RotationRequest struct {
	ExpectedEpoch    Epoch        `json:"expectedEpoch"`
	EpochPublicKey   X25519Public `json:"epochPublicKey"`
	ConfirmationHash []byte       `json:"confirmationHash"`
	ChainLink        []byte       `json:"chainLink"`
	EncryptedTitle   []byte       `json:"encryptedTitle"`
	MemberWraps      []MemberWrap `json:"memberWraps"`
}

// CreateRequest registers a new conversation at epoch 1 with its initial
// wrap set. There is no prior epoch, so it carries no chain link.
type CreateRequest struct {
	ID               ConversationID `json:"id"`
	EpochPublicKey   X25519Public   `json:"epochPublicKey"`
	ConfirmationHash []byte         `json:"confirmationHash"`
	EncryptedTitle   []byte         `json:"encryptedTitle"`
	MemberWraps      []MemberWrap   `json:"memberWraps"`
}

// DirectWrap carries the current epoch key wrapped to a newly added member
// on the no-rotation, full-history add path.
type DirectWrap struct {
	EpochNumber      Epoch        `json:"epochNumber"`
	MemberPublicKey  X25519Public `json:"memberPublicKey"`
	Wrap             []byte       `json:"wrap"`
	Privilege        Privilege    `json:"privilege"`
	VisibleFromEpoch Epoch        `json:"visibleFromEpoch"`
}
