package rotation

import (
	"context"
	"errors"
	"fmt"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
	"veilchat/internal/keycache"
)

var (
	// ErrStaleEpoch means the relay's current epoch no longer matched
	// ExpectedEpoch: another actor rotated first. Callers should re-read the
	// authoritative epoch and retry; the coordinator never retries itself.
	ErrStaleEpoch = errors.New("rotation rejected: epoch advanced concurrently")

	// ErrEmptyHolderSet means the delta left nobody holding the new epoch.
	// A conversation with no holders is deleted, not rotated.
	ErrEmptyHolderSet = errors.New("rotation would leave no key holders")
)

// SubmitFunc performs the actual network submission of a rotation request
// and returns the epoch number the server accepted. Injecting it keeps the
// coordinator transport-agnostic; timeouts and cancellation belong to the
// implementation behind it.
type SubmitFunc func(ctx context.Context, req domain.RotationRequest) (domain.Epoch, error)

// Params carries one rotation attempt.
type Params struct {
	Conversation domain.ConversationID
	CurrentEpoch domain.Epoch
	CurrentKey   domain.X25519Private
	Title        []byte
	Delta        Delta
	Submit       SubmitFunc
}

// Coordinator computes and submits new epochs. It fetches the holder roster,
// applies the membership delta, derives the complete rotation material, and
// commits to the cache only after the server has accepted the submission.
type Coordinator struct {
	roster domain.RosterSource
	cache  *keycache.Cache
}

// New returns a coordinator using the given roster source and cache.
func New(roster domain.RosterSource, cache *keycache.Cache) *Coordinator {
	return &Coordinator{roster: roster, cache: cache}
}

// Rotate advances the conversation to a new epoch.
//
// The request carries ExpectedEpoch = Params.CurrentEpoch; the server
// accepts it only while that still matches its authoritative current epoch
// (optimistic compare-and-swap), and a concurrent rotation surfaces as
// ErrStaleEpoch. On any failure every piece of computed material is
// discarded and the cache is untouched; on success the new private key is
// cached and the current-epoch pointer advances before the accepted epoch is
// returned.
func (c *Coordinator) Rotate(ctx context.Context, p Params) (domain.Epoch, error) {
	roster, err := c.roster.FetchRoster(ctx, p.Conversation)
	if err != nil {
		return 0, fmt.Errorf("fetch roster: %w", err)
	}

	newEpoch := p.CurrentEpoch + 1
	holders := p.Delta.Apply(newEpoch, roster)
	if len(holders) == 0 {
		return 0, ErrEmptyHolderSet
	}

	rot, err := crypto.NewRotation(p.CurrentKey, holders)
	if err != nil {
		return 0, err
	}

	encryptedTitle, err := crypto.EncryptTitle(rot.Pub, p.Title)
	if err != nil {
		rot.Discard()
		return 0, err
	}

	accepted, err := p.Submit(ctx, domain.RotationRequest{
		ExpectedEpoch:    p.CurrentEpoch,
		EpochPublicKey:   rot.Pub,
		ConfirmationHash: rot.ConfirmationHash,
		ChainLink:        rot.ChainLink,
		EncryptedTitle:   encryptedTitle,
		MemberWraps:      rot.Wraps,
	})
	if err != nil {
		rot.Discard()
		return 0, err
	}

	c.cache.Put(p.Conversation, accepted, rot.Priv.Slice())
	c.cache.SetCurrentEpoch(p.Conversation, accepted)
	rot.Discard()
	return accepted, nil
}
