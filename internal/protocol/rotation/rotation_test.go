package rotation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
	"veilchat/internal/keycache"
	"veilchat/internal/protocol/rotation"
)

const conv = domain.ConversationID("conv-rot")

type staticRoster []domain.HolderKey

func (r staticRoster) FetchRoster(context.Context, domain.ConversationID) ([]domain.HolderKey, error) {
	return r, nil
}

type failingRoster struct{ err error }

func (r failingRoster) FetchRoster(context.Context, domain.ConversationID) ([]domain.HolderKey, error) {
	return nil, r.err
}

func newMember(t *testing.T, privilege domain.Privilege) (domain.X25519Private, domain.HolderKey) {
	t.Helper()
	priv, pub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	return priv, domain.HolderKey{PublicKey: pub, Privilege: privilege, VisibleFromEpoch: 1}
}

func TestRotate_RemoveMember_ForwardSecrecy(t *testing.T) {
	alicePriv, alice := newMember(t, domain.PrivilegeOwner)
	bobPriv, bob := newMember(t, domain.PrivilegeEditor)

	// Epoch 1 held by both A and B.
	epoch1, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	cache := keycache.New()
	cache.Put(conv, 1, epoch1.Slice())
	cache.SetCurrentEpoch(conv, 1)

	coord := rotation.New(staticRoster{alice, bob}, cache)

	var submitted domain.RotationRequest
	accepted, err := coord.Rotate(context.Background(), rotation.Params{
		Conversation: conv,
		CurrentEpoch: 1,
		CurrentKey:   epoch1,
		Title:        []byte("team chat"),
		Delta:        rotation.Remove{PublicKey: bob.PublicKey},
		Submit: func(_ context.Context, req domain.RotationRequest) (domain.Epoch, error) {
			submitted = req
			return req.ExpectedEpoch + 1, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Epoch(2), accepted)

	// Epoch 2 has a wrap only for Alice.
	require.Len(t, submitted.MemberWraps, 1)
	assert.Equal(t, alice.PublicKey, submitted.MemberWraps[0].HolderPublicKey())
	assert.Equal(t, domain.Epoch(1), submitted.ExpectedEpoch)

	epoch2, err := crypto.UnwrapEpochKey(alicePriv, submitted.MemberWraps[0].Wrap)
	require.NoError(t, err)
	assert.True(t, crypto.VerifyEpochKeyConfirmation(epoch2, submitted.ConfirmationHash))

	// Bob cannot unwrap the new epoch.
	_, err = crypto.UnwrapEpochKey(bobPriv, submitted.MemberWraps[0].Wrap)
	assert.Error(t, err)

	// Alice can still walk back to epoch 1.
	older, err := crypto.TraverseChainLink(epoch2, submitted.ChainLink)
	require.NoError(t, err)
	assert.Equal(t, epoch1, older)

	// The cache committed the new epoch.
	cached, ok := cache.Get(conv, 2)
	require.True(t, ok)
	assert.Equal(t, epoch2.Slice(), cached)
	current, _ := cache.CurrentEpoch(conv)
	assert.Equal(t, domain.Epoch(2), current)
}

func TestRotate_AddMember_ScopedVisibility(t *testing.T) {
	_, alice := newMember(t, domain.PrivilegeOwner)
	_, carol := newMember(t, domain.PrivilegeViewer)

	epoch2, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	cache := keycache.New()
	cache.Put(conv, 2, epoch2.Slice())
	cache.SetCurrentEpoch(conv, 2)

	coord := rotation.New(staticRoster{alice}, cache)

	var submitted domain.RotationRequest
	accepted, err := coord.Rotate(context.Background(), rotation.Params{
		Conversation: conv,
		CurrentEpoch: 2,
		CurrentKey:   epoch2,
		Title:        []byte("team chat"),
		Delta:        rotation.Add{PublicKey: carol.PublicKey, Privilege: domain.PrivilegeViewer},
		Submit: func(_ context.Context, req domain.RotationRequest) (domain.Epoch, error) {
			submitted = req
			return req.ExpectedEpoch + 1, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Epoch(3), accepted)

	require.Len(t, submitted.MemberWraps, 2)
	var carolWrap *domain.MemberWrap
	for i := range submitted.MemberWraps {
		if submitted.MemberWraps[i].HolderPublicKey() == carol.PublicKey {
			carolWrap = &submitted.MemberWraps[i]
		}
	}
	require.NotNil(t, carolWrap, "no wrap issued for the added member")

	// Carol's entitlement starts at the freshly created epoch.
	assert.Equal(t, domain.Epoch(3), carolWrap.VisibleFromEpoch)
	assert.Equal(t, domain.PrivilegeViewer, carolWrap.Privilege)
}

func TestRotate_StaleEpoch_NoCacheMutation(t *testing.T) {
	_, alice := newMember(t, domain.PrivilegeOwner)

	epoch1, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	cache := keycache.New()
	cache.Put(conv, 1, epoch1.Slice())
	cache.SetCurrentEpoch(conv, 1)
	versionBefore := cache.Version()

	coord := rotation.New(staticRoster{alice}, cache)

	_, err = coord.Rotate(context.Background(), rotation.Params{
		Conversation: conv,
		CurrentEpoch: 1,
		CurrentKey:   epoch1,
		Delta:        rotation.Remove{PublicKey: alice.PublicKey},
		Submit: func(context.Context, domain.RotationRequest) (domain.Epoch, error) {
			return 0, rotation.ErrStaleEpoch
		},
	})
	require.ErrorIs(t, err, rotation.ErrStaleEpoch)

	assert.Equal(t, versionBefore, cache.Version(), "failed rotation mutated the cache")
	_, ok := cache.Get(conv, 2)
	assert.False(t, ok)
}

func TestRotate_RosterFetchFailure(t *testing.T) {
	epoch1, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	cache := keycache.New()
	boom := errors.New("relay unreachable")
	coord := rotation.New(failingRoster{err: boom}, cache)

	_, err = coord.Rotate(context.Background(), rotation.Params{
		Conversation: conv,
		CurrentEpoch: 1,
		CurrentKey:   epoch1,
		Delta:        rotation.Add{},
		Submit: func(context.Context, domain.RotationRequest) (domain.Epoch, error) {
			t.Fatal("submit must not run when the roster fetch fails")
			return 0, nil
		},
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Size())
}

func TestRotate_EmptyHolderSet(t *testing.T) {
	_, alice := newMember(t, domain.PrivilegeOwner)
	epoch1, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	coord := rotation.New(staticRoster{alice}, keycache.New())
	_, err = coord.Rotate(context.Background(), rotation.Params{
		Conversation: conv,
		CurrentEpoch: 1,
		CurrentKey:   epoch1,
		Delta:        rotation.Remove{PublicKey: alice.PublicKey},
		Submit: func(context.Context, domain.RotationRequest) (domain.Epoch, error) {
			t.Fatal("submit must not run for an empty holder set")
			return 0, nil
		},
	})
	require.ErrorIs(t, err, rotation.ErrEmptyHolderSet)
}

func TestDelta_Apply(t *testing.T) {
	_, alice := newMember(t, domain.PrivilegeOwner)
	_, bob := newMember(t, domain.PrivilegeEditor)
	_, carol := newMember(t, domain.PrivilegeViewer)
	roster := []domain.HolderKey{alice, bob}

	t.Run("add appends with new-epoch visibility", func(t *testing.T) {
		out := rotation.Add{PublicKey: carol.PublicKey, Privilege: domain.PrivilegeViewer}.Apply(5, roster)
		require.Len(t, out, 3)
		assert.Equal(t, domain.Epoch(5), out[2].VisibleFromEpoch)
	})

	t.Run("add of an existing holder is a no-op", func(t *testing.T) {
		out := rotation.Add{PublicKey: bob.PublicKey, Privilege: domain.PrivilegeOwner}.Apply(5, roster)
		assert.Len(t, out, 2)
	})

	t.Run("remove filters the identity", func(t *testing.T) {
		out := rotation.Remove{PublicKey: bob.PublicKey}.Apply(5, roster)
		require.Len(t, out, 1)
		assert.Equal(t, alice.PublicKey, out[0].PublicKey)
	})

	t.Run("remove of a stranger changes nothing", func(t *testing.T) {
		out := rotation.Remove{PublicKey: carol.PublicKey}.Apply(5, roster)
		assert.Len(t, out, 2)
	})
}
