package types

// ConversationID identifies one encrypted conversation.
type ConversationID string

// String returns the string form of the conversation identifier.
func (id ConversationID) String() string { return string(id) }

// Epoch identifies one generation of a conversation's encryption key.
// Epochs start at 1, strictly increase and are never reused.
type Epoch uint64

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Privilege is the access level attached to a holder's membership record.
// It is metadata on the wrap, not an encryption boundary: changing it alone
// never rotates the epoch. PrivilegeNone revokes membership entirely.
type Privilege string

const (
	PrivilegeOwner  Privilege = "owner"
	PrivilegeEditor Privilege = "editor"
	PrivilegeViewer Privilege = "viewer"
	PrivilegeNone   Privilege = "none"
)

// String returns the string form of the privilege.
func (p Privilege) String() string { return string(p) }
