package crypto

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"veilchat/internal/domain"
	"veilchat/internal/util/memzero"
)

const labelChainLink = "veilchat/chain-link"

// ErrBadChainLink is returned when a chain link is malformed or does not
// open under the supplied newer epoch key.
var ErrBadChainLink = errors.New("malformed or untraversable chain link")

// NewChainLink seals epoch N-1's private key under a key derived from epoch
// N's private key. Holding N therefore lets you walk backward to N-1, one
// step at a time; nothing in the link helps you move forward.
func NewChainLink(newer, older domain.X25519Private) ([]byte, error) {
	key := chainKey(newer)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// One link exists per epoch key, so the derived key is single-use and a
	// zero nonce is safe.
	nonce := make([]byte, chacha20poly1305.NonceSize)
	return aead.Seal(nil, nonce, older.Slice(), nil), nil
}

// TraverseChainLink recovers epoch N-1's private key from a link using epoch
// N's private key. The result is untrusted until it passes confirmation-hash
// verification.
func TraverseChainLink(newer domain.X25519Private, link []byte) (domain.X25519Private, error) {
	var out domain.X25519Private
	if len(link) != 32+chacha20poly1305.Overhead {
		return out, ErrBadChainLink
	}
	key := chainKey(newer)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return out, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	pt, err := aead.Open(nil, nonce, link, nil)
	if err != nil {
		return out, ErrBadChainLink
	}
	copy(out[:], pt)
	memzero.Zero(pt)
	return out, nil
}

func chainKey(priv domain.X25519Private) []byte {
	r := hkdf.New(sha256.New, priv.Slice(), nil, []byte(labelChainLink))
	key := make([]byte, chacha20poly1305.KeySize)
	_, _ = io.ReadFull(r, key)
	return key
}
