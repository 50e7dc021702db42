// Package crypto exposes the primitives the epoch key-management core builds on.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Epoch-key wraps: an epoch private key sealed to one holder's public key
//     (WrapEpochKey, UnwrapEpochKey)
//   - Chain links: epoch N-1's key sealed under material derived from epoch
//     N's key, giving backward-only traversal (NewChainLink, TraverseChainLink)
//   - Keyed confirmation hashes gating trust in server-supplied material
//     (ConfirmEpochKey, VerifyEpochKeyConfirmation)
//   - Title sealing to an epoch public key (EncryptTitle, DecryptTitle)
//   - Whole-rotation material generation (NewRotation, NewInitialEpoch)
//
// # Notes
//
// All functions use fixed-size array types from internal/domain to avoid
// accidental reallocations. Callers should treat returned secrets as
// sensitive and zero them via internal/util/memzero when released. Unwrap and
// traversal results are untrusted until confirmation-hash verification.
package crypto
