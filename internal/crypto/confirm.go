package crypto

import (
	"crypto/hmac"
	"crypto/sha256"

	"veilchat/internal/domain"
)

const labelConfirm = "veilchat/epoch-confirm"

// ConfirmEpochKey computes the keyed confirmation hash over an epoch private
// key. The relay stores and serves it next to wraps and chain links so
// clients can tell a genuine key apart from anything a malicious or buggy
// server substitutes.
func ConfirmEpochKey(epochPriv domain.X25519Private) []byte {
	h := hmac.New(sha256.New, epochPriv.Slice())
	h.Write([]byte(labelConfirm))
	return h.Sum(nil)
}

// VerifyEpochKeyConfirmation reports whether candidate reproduces the
// expected confirmation hash. Comparison is constant time.
func VerifyEpochKeyConfirmation(candidate domain.X25519Private, confirmation []byte) bool {
	return hmac.Equal(ConfirmEpochKey(candidate), confirmation)
}
