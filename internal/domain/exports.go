package domain

import (
	interfaces "veilchat/internal/domain/interfaces"
	types "veilchat/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	ConversationID   = types.ConversationID
	Epoch            = types.Epoch
	Fingerprint      = types.Fingerprint
	Privilege        = types.Privilege
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	Identity         = types.Identity
	HolderKey        = types.HolderKey
	Conversation     = types.Conversation
	WrapEntry        = types.WrapEntry
	ChainLinkEntry   = types.ChainLinkEntry
	KeyChain         = types.KeyChain
	MemberWrap       = types.MemberWrap
	RotationRequest  = types.RotationRequest
	CreateRequest    = types.CreateRequest
	DirectWrap       = types.DirectWrap
)

// Privilege levels re-exported for compact use.
const (
	PrivilegeOwner  = types.PrivilegeOwner
	PrivilegeEditor = types.PrivilegeEditor
	PrivilegeViewer = types.PrivilegeViewer
	PrivilegeNone   = types.PrivilegeNone
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService   = interfaces.IdentityService
	MembershipService = interfaces.MembershipService
	RelayClient       = interfaces.RelayClient
	RosterSource      = interfaces.RosterSource
	IdentityStore     = interfaces.IdentityStore
	ChainCache        = interfaces.ChainCache
)
