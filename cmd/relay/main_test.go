package main

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
	"veilchat/internal/protocol/rotation"
	"veilchat/internal/relay"
)

func newTestRelay(t *testing.T) *relay.HTTP {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	ts := httptest.NewServer(newServer(log).routes())
	t.Cleanup(ts.Close)
	return relay.NewHTTP(ts.URL, ts.Client())
}

func createConversation(t *testing.T, rc *relay.HTTP, holder domain.HolderKey) *crypto.Rotation {
	t.Helper()
	rot, err := crypto.NewInitialEpoch([]domain.HolderKey{holder})
	if err != nil {
		t.Fatalf("initial epoch: %v", err)
	}
	title, err := crypto.EncryptTitle(rot.Pub, []byte("standup"))
	if err != nil {
		t.Fatalf("encrypt title: %v", err)
	}
	err = rc.CreateConversation(context.Background(), domain.CreateRequest{
		ID:               "conv-relay",
		EpochPublicKey:   rot.Pub,
		ConfirmationHash: rot.ConfirmationHash,
		EncryptedTitle:   title,
		MemberWraps:      rot.Wraps,
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return rot
}

func rotationRequest(t *testing.T, prior domain.X25519Private, expected domain.Epoch, holders []domain.HolderKey) (domain.RotationRequest, *crypto.Rotation) {
	t.Helper()
	rot, err := crypto.NewRotation(prior, holders)
	if err != nil {
		t.Fatalf("rotation: %v", err)
	}
	title, err := crypto.EncryptTitle(rot.Pub, []byte("standup"))
	if err != nil {
		t.Fatalf("encrypt title: %v", err)
	}
	return domain.RotationRequest{
		ExpectedEpoch:    expected,
		EpochPublicKey:   rot.Pub,
		ConfirmationHash: rot.ConfirmationHash,
		ChainLink:        rot.ChainLink,
		EncryptedTitle:   title,
		MemberWraps:      rot.Wraps,
	}, rot
}

func TestRelay_CreateSyncRotateRoundTrip(t *testing.T) {
	rc := newTestRelay(t)
	accountPriv, accountPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("account key: %v", err)
	}

	owner := domain.HolderKey{PublicKey: accountPub, Privilege: domain.PrivilegeOwner, VisibleFromEpoch: 1}
	rot := createConversation(t, rc, owner)

	meta, err := rc.FetchConversation(context.Background(), "conv-relay")
	if err != nil {
		t.Fatalf("fetch meta: %v", err)
	}
	if meta.CurrentEpoch != 1 {
		t.Fatalf("current epoch = %d, want 1", meta.CurrentEpoch)
	}

	chain, err := rc.FetchKeyChain(context.Background(), "conv-relay", accountPub)
	if err != nil {
		t.Fatalf("fetch chain: %v", err)
	}
	if len(chain.Wraps) != 1 || chain.Wraps[0].EpochNumber != 1 {
		t.Fatalf("chain wraps = %+v, want one wrap for epoch 1", chain.Wraps)
	}
	got, err := crypto.UnwrapEpochKey(accountPriv, chain.Wraps[0].Wrap)
	if err != nil {
		t.Fatalf("unwrap served wrap: %v", err)
	}
	if !crypto.VerifyEpochKeyConfirmation(got, chain.Wraps[0].ConfirmationHash) {
		t.Fatal("served confirmation does not match the wrapped key")
	}

	req, _ := rotationRequest(t, rot.Priv, 1, []domain.HolderKey{owner})
	accepted, err := rc.SubmitRotation(context.Background(), "conv-relay", req)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if accepted != 2 {
		t.Fatalf("accepted epoch = %d, want 2", accepted)
	}

	chain, err = rc.FetchKeyChain(context.Background(), "conv-relay", accountPub)
	if err != nil {
		t.Fatalf("fetch chain after rotate: %v", err)
	}
	if chain.CurrentEpoch != 2 {
		t.Fatalf("chain current epoch = %d, want 2", chain.CurrentEpoch)
	}
	if len(chain.ChainLinks) != 1 || chain.ChainLinks[0].EpochNumber != 2 {
		t.Fatalf("chain links = %+v, want one link for epoch 2", chain.ChainLinks)
	}
}

func TestRelay_StaleRotationMapsToErrStaleEpoch(t *testing.T) {
	rc := newTestRelay(t)
	_, accountPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("account key: %v", err)
	}
	owner := domain.HolderKey{PublicKey: accountPub, Privilege: domain.PrivilegeOwner, VisibleFromEpoch: 1}
	rot := createConversation(t, rc, owner)

	// First rotation wins the race.
	req, _ := rotationRequest(t, rot.Priv, 1, []domain.HolderKey{owner})
	if _, err := rc.SubmitRotation(context.Background(), "conv-relay", req); err != nil {
		t.Fatalf("first rotate: %v", err)
	}

	// Second rotation still expects epoch 1 and must lose.
	stale, _ := rotationRequest(t, rot.Priv, 1, []domain.HolderKey{owner})
	if _, err := rc.SubmitRotation(context.Background(), "conv-relay", stale); !errors.Is(err, rotation.ErrStaleEpoch) {
		t.Fatalf("err = %v, want rotation.ErrStaleEpoch", err)
	}
}

func TestRelay_KeyChainHonoursVisibilityHorizon(t *testing.T) {
	rc := newTestRelay(t)
	_, ownerPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("owner key: %v", err)
	}
	_, newcomerPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("newcomer key: %v", err)
	}

	owner := domain.HolderKey{PublicKey: ownerPub, Privilege: domain.PrivilegeOwner, VisibleFromEpoch: 1}
	rot := createConversation(t, rc, owner)

	// Rotate twice; the newcomer joins at epoch 3 without history.
	req, rot2 := rotationRequest(t, rot.Priv, 1, []domain.HolderKey{owner})
	if _, err := rc.SubmitRotation(context.Background(), "conv-relay", req); err != nil {
		t.Fatalf("rotate to 2: %v", err)
	}
	newcomer := domain.HolderKey{PublicKey: newcomerPub, Privilege: domain.PrivilegeViewer, VisibleFromEpoch: 3}
	req, _ = rotationRequest(t, rot2.Priv, 2, []domain.HolderKey{owner, newcomer})
	if _, err := rc.SubmitRotation(context.Background(), "conv-relay", req); err != nil {
		t.Fatalf("rotate to 3: %v", err)
	}

	chain, err := rc.FetchKeyChain(context.Background(), "conv-relay", newcomerPub)
	if err != nil {
		t.Fatalf("fetch chain: %v", err)
	}
	if len(chain.ChainLinks) != 0 {
		t.Fatalf("newcomer got %d chain links, wants none before the horizon", len(chain.ChainLinks))
	}

	full, err := rc.FetchKeyChain(context.Background(), "conv-relay", ownerPub)
	if err != nil {
		t.Fatalf("fetch owner chain: %v", err)
	}
	if len(full.ChainLinks) != 2 {
		t.Fatalf("owner got %d chain links, want 2", len(full.ChainLinks))
	}
}
