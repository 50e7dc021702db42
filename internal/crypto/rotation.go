package crypto

import (
	"veilchat/internal/domain"
	"veilchat/internal/util/memzero"
)

// Rotation is the complete client-side material for one new epoch: the fresh
// key pair, one wrap per holder of the new epoch, a chain link back to the
// prior epoch, and the confirmation hash over the new private key.
//
// Priv is the sensitive piece; callers own it and must zero it (Discard) if
// the rotation is not committed.
type Rotation struct {
	Priv             domain.X25519Private
	Pub              domain.X25519Public
	ConfirmationHash []byte
	ChainLink        []byte
	Wraps            []domain.MemberWrap
}

// NewRotation derives the material for the epoch after prior, wrapped to the
// given holder set. VisibleFromEpoch and Privilege are carried through from
// each holder entry untouched; the caller decides them.
func NewRotation(prior domain.X25519Private, holders []domain.HolderKey) (*Rotation, error) {
	rot, err := newEpochMaterial(holders)
	if err != nil {
		return nil, err
	}
	link, err := NewChainLink(rot.Priv, prior)
	if err != nil {
		rot.Discard()
		return nil, err
	}
	rot.ChainLink = link
	return rot, nil
}

// NewInitialEpoch derives the material for a conversation's first epoch.
// There is no prior epoch, so no chain link.
func NewInitialEpoch(holders []domain.HolderKey) (*Rotation, error) {
	return newEpochMaterial(holders)
}

// Discard zeroes the new epoch private key. Call it whenever the rotation is
// abandoned instead of committed to the cache.
func (r *Rotation) Discard() {
	memzero.Zero(r.Priv[:])
}

func newEpochMaterial(holders []domain.HolderKey) (*Rotation, error) {
	priv, pub, err := GenerateX25519()
	if err != nil {
		return nil, err
	}

	wraps := make([]domain.MemberWrap, 0, len(holders))
	for _, h := range holders {
		wrap, err := WrapEpochKey(h.PublicKey, priv)
		if err != nil {
			memzero.Zero(priv[:])
			return nil, err
		}
		mw := domain.MemberWrap{
			Wrap:             wrap,
			Privilege:        h.Privilege,
			VisibleFromEpoch: h.VisibleFromEpoch,
		}
		holderPub := h.PublicKey
		if h.IsLink {
			mw.LinkPublicKey = &holderPub
		} else {
			mw.MemberPublicKey = &holderPub
		}
		wraps = append(wraps, mw)
	}

	return &Rotation{
		Priv:             priv,
		Pub:              pub,
		ConfirmationHash: ConfirmEpochKey(priv),
		Wraps:            wraps,
	}, nil
}
