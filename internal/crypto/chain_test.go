package crypto_test

import (
	"testing"

	"veilchat/internal/crypto"
)

func TestChainLink_RoundTrip(t *testing.T) {
	olderPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	newerPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	link, err := crypto.NewChainLink(newerPriv, olderPriv)
	if err != nil {
		t.Fatalf("NewChainLink: %v", err)
	}
	got, err := crypto.TraverseChainLink(newerPriv, link)
	if err != nil {
		t.Fatalf("TraverseChainLink: %v", err)
	}
	if got != olderPriv {
		t.Fatal("derived key differs from the older epoch key")
	}
}

func TestChainLink_WrongNewerKey_Fails(t *testing.T) {
	olderPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	newerPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	otherPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	link, err := crypto.NewChainLink(newerPriv, olderPriv)
	if err != nil {
		t.Fatalf("NewChainLink: %v", err)
	}
	if _, err := crypto.TraverseChainLink(otherPriv, link); err == nil {
		t.Fatal("expected traversal with the wrong key to fail")
	}
}

func TestChainLink_Tampered_Fails(t *testing.T) {
	olderPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	newerPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	link, err := crypto.NewChainLink(newerPriv, olderPriv)
	if err != nil {
		t.Fatalf("NewChainLink: %v", err)
	}
	link[7] ^= 0x01
	if _, err := crypto.TraverseChainLink(newerPriv, link); err == nil {
		t.Fatal("expected tampered link to fail")
	}
}

func TestConfirmation_VerifiesOnlyTheRightKey(t *testing.T) {
	epochPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	otherPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	confirmation := crypto.ConfirmEpochKey(epochPriv)
	if !crypto.VerifyEpochKeyConfirmation(epochPriv, confirmation) {
		t.Fatal("genuine key failed confirmation")
	}
	if crypto.VerifyEpochKeyConfirmation(otherPriv, confirmation) {
		t.Fatal("wrong key passed confirmation")
	}
}
