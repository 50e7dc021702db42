// Package identity manages creation, encryption and loading of the account
// key pair.
//
// It enforces passphrase policy, generates the X25519 pair, and persists it
// via the domain.IdentityStore.
package identity
