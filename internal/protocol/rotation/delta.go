package rotation

import "veilchat/internal/domain"

// Delta is the membership change a rotation enacts. It is a closed set of
// typed variants rather than an arbitrary callback so each mutation's intent
// stays inspectable and testable apart from any cryptography.
type Delta interface {
	// Apply maps the current holder roster to the set that should hold the
	// new epoch. newEpoch is the epoch being created.
	Apply(newEpoch domain.Epoch, roster []domain.HolderKey) []domain.HolderKey
}

// Add grants a new member the epoch being created and nothing earlier: their
// VisibleFromEpoch is the new epoch, so even though chain links flow
// backward, no wrap they are served entitles them to pre-join content.
type Add struct {
	PublicKey domain.X25519Public
	Privilege domain.Privilege
}

// Apply returns the roster plus the added member. Adding a key that already
// holds the conversation leaves the roster unchanged.
func (a Add) Apply(newEpoch domain.Epoch, roster []domain.HolderKey) []domain.HolderKey {
	for _, h := range roster {
		if h.PublicKey == a.PublicKey {
			return roster
		}
	}
	out := append([]domain.HolderKey(nil), roster...)
	return append(out, domain.HolderKey{
		PublicKey:        a.PublicKey,
		Privilege:        a.Privilege,
		VisibleFromEpoch: newEpoch,
	})
}

// Remove cuts a member or shareable link out of the holder set. The removed
// identity gets no wrap for the new epoch and no chain-link path into it.
type Remove struct {
	PublicKey domain.X25519Public
}

// Apply returns the roster without the removed identity.
func (r Remove) Apply(_ domain.Epoch, roster []domain.HolderKey) []domain.HolderKey {
	out := make([]domain.HolderKey, 0, len(roster))
	for _, h := range roster {
		if h.PublicKey == r.PublicKey {
			continue
		}
		out = append(out, h)
	}
	return out
}
