// Package store provides on-disk persistence for veilchat's account and
// key-chain data.
//
// It contains concrete implementations of the domain storage interfaces:
//
//   - IdentityFileStore: the account key pair, JSON sealed with a
//     scrypt-derived chacha20poly1305 key.
//   - BadgerChainCache: fetched key-chain responses (wrapped material only),
//     kept in a Badger database for offline re-resolution.
//
// All methods are safe for concurrent use. Plaintext epoch keys are never
// persisted anywhere; they live only in the session's key cache.
package store
