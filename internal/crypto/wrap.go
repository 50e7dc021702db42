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

const (
	labelEpochWrap = "veilchat/epoch-wrap"
	labelTitle     = "veilchat/title"

	// ephPub(32) || AEAD ciphertext
	sealOverhead = 32 + chacha20poly1305.Overhead
)

var (
	// ErrBadWrap is returned when a wrap is malformed or does not decrypt
	// under the supplied private key.
	ErrBadWrap = errors.New("malformed or undecryptable wrap")
)

// WrapEpochKey encrypts an epoch private key to one holder's public key.
// The output is an ephemeral-X25519 sealed box: ephemeral public key
// followed by a chacha20poly1305 ciphertext.
func WrapEpochKey(holder domain.X25519Public, epochPriv domain.X25519Private) ([]byte, error) {
	return sealTo(holder, labelEpochWrap, epochPriv.Slice())
}

// UnwrapEpochKey recovers an epoch private key from a wrap addressed to the
// account key. The result is untrusted until it passes confirmation-hash
// verification.
func UnwrapEpochKey(accountPriv domain.X25519Private, wrap []byte) (domain.X25519Private, error) {
	var out domain.X25519Private
	pt, err := openWith(accountPriv, labelEpochWrap, wrap)
	if err != nil {
		return out, err
	}
	if len(pt) != 32 {
		memzero.Zero(pt)
		return out, ErrBadWrap
	}
	copy(out[:], pt)
	memzero.Zero(pt)
	return out, nil
}

// EncryptTitle seals a conversation title to the epoch public key so only
// holders of the epoch private key can read it.
func EncryptTitle(epochPub domain.X25519Public, title []byte) ([]byte, error) {
	return sealTo(epochPub, labelTitle, title)
}

// DecryptTitle opens a title sealed to the epoch key.
func DecryptTitle(epochPriv domain.X25519Private, box []byte) ([]byte, error) {
	return openWith(epochPriv, labelTitle, box)
}

// sealTo encrypts plaintext to pub under a fresh ephemeral key. The AEAD key
// is HKDF-SHA256 over the shared secret bound to the label and the ephemeral
// public key; the nonce is zero because the key is unique per ephemeral.
func sealTo(pub domain.X25519Public, label string, plaintext []byte) ([]byte, error) {
	ephPriv, ephPub, err := GenerateX25519()
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(ephPriv[:])

	dh, err := DH(ephPriv, pub)
	if err != nil {
		return nil, err
	}
	key := sealKey(dh, ephPub, label)
	memzero.Zero(dh[:])
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	out := make([]byte, 0, sealOverhead+len(plaintext))
	out = append(out, ephPub[:]...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// openWith decrypts a sealed box addressed to priv's public half.
func openWith(priv domain.X25519Private, label string, box []byte) ([]byte, error) {
	if len(box) < sealOverhead {
		return nil, ErrBadWrap
	}
	var ephPub domain.X25519Public
	copy(ephPub[:], box[:32])

	dh, err := DH(priv, ephPub)
	if err != nil {
		return nil, ErrBadWrap
	}
	key := sealKey(dh, ephPub, label)
	memzero.Zero(dh[:])
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	pt, err := aead.Open(nil, nonce, box[32:], nil)
	if err != nil {
		return nil, ErrBadWrap
	}
	return pt, nil
}

func sealKey(dh [32]byte, ephPub domain.X25519Public, label string) []byte {
	info := make([]byte, 0, len(label)+32)
	info = append(info, label...)
	info = append(info, ephPub[:]...)
	r := hkdf.New(sha256.New, dh[:], nil, info)
	key := make([]byte, chacha20poly1305.KeySize)
	_, _ = io.ReadFull(r, key)
	return key
}
