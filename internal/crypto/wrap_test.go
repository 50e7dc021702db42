package crypto_test

import (
	"bytes"
	"testing"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
)

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	accountPriv, accountPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	epochPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	wrap, err := crypto.WrapEpochKey(accountPub, epochPriv)
	if err != nil {
		t.Fatalf("WrapEpochKey: %v", err)
	}

	got, err := crypto.UnwrapEpochKey(accountPriv, wrap)
	if err != nil {
		t.Fatalf("UnwrapEpochKey: %v", err)
	}
	if got != epochPriv {
		t.Fatal("unwrapped key differs from original")
	}
}

func TestUnwrap_WrongAccountKey_Fails(t *testing.T) {
	_, alicePub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	mallocyPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	epochPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	wrap, err := crypto.WrapEpochKey(alicePub, epochPriv)
	if err != nil {
		t.Fatalf("WrapEpochKey: %v", err)
	}
	if _, err := crypto.UnwrapEpochKey(mallocyPriv, wrap); err == nil {
		t.Fatal("expected unwrap with wrong key to fail")
	}
}

func TestUnwrap_TruncatedWrap_Fails(t *testing.T) {
	accountPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	if _, err := crypto.UnwrapEpochKey(accountPriv, []byte("short")); err == nil {
		t.Fatal("expected truncated wrap to fail")
	}
}

func TestTitle_RoundTrip(t *testing.T) {
	epochPriv, epochPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	title := []byte("weekend plans")
	box, err := crypto.EncryptTitle(epochPub, title)
	if err != nil {
		t.Fatalf("EncryptTitle: %v", err)
	}
	got, err := crypto.DecryptTitle(epochPriv, box)
	if err != nil {
		t.Fatalf("DecryptTitle: %v", err)
	}
	if !bytes.Equal(got, title) {
		t.Fatalf("title mismatch: got %q", got)
	}

	var wrong domain.X25519Private
	wrong[0] = 1
	if _, err := crypto.DecryptTitle(wrong, box); err == nil {
		t.Fatal("expected title decryption with wrong key to fail")
	}
}
