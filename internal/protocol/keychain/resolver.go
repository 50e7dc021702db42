package keychain

import (
	"sort"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
	"veilchat/internal/keycache"
	"veilchat/internal/util/memzero"
)

// Resolve populates the cache from a server-supplied key chain, trusting
// nothing until it has passed confirmation-hash verification.
//
// Both passes run newest-to-oldest: direct wraps first, then chain links, so
// each link traversal can use a key recovered moments earlier in the same
// call. A single pass resolves a chain only while its links are contiguous;
// bridging a gap takes another fetch and another Resolve.
//
// Per-item failures (undecryptable wrap, untraversable link, confirmation
// mismatch) are skipped silently: the relay is a potentially malicious
// relay, and one corrupted entry must not block recovery of the rest.
//
// A nil account key is a safe no-op: an unauthenticated caller has nothing
// to resolve yet. Resolve reports how many epoch keys it added.
func Resolve(
	cache *keycache.Cache,
	conv domain.ConversationID,
	chain domain.KeyChain,
	accountPriv *domain.X25519Private,
) int {
	if cache == nil || accountPriv == nil {
		return 0
	}

	cache.SetCurrentEpoch(conv, chain.CurrentEpoch)

	resolved := 0

	wraps := append([]domain.WrapEntry(nil), chain.Wraps...)
	sort.Slice(wraps, func(i, j int) bool {
		return wraps[i].EpochNumber > wraps[j].EpochNumber
	})
	for _, w := range wraps {
		if _, ok := cache.Get(conv, w.EpochNumber); ok {
			continue
		}
		candidate, err := crypto.UnwrapEpochKey(*accountPriv, w.Wrap)
		if err != nil {
			continue
		}
		if !crypto.VerifyEpochKeyConfirmation(candidate, w.ConfirmationHash) {
			memzero.Zero(candidate[:])
			continue
		}
		if cache.Put(conv, w.EpochNumber, candidate.Slice()) {
			resolved++
		}
		memzero.Zero(candidate[:])
	}

	links := append([]domain.ChainLinkEntry(nil), chain.ChainLinks...)
	sort.Slice(links, func(i, j int) bool {
		return links[i].EpochNumber > links[j].EpochNumber
	})
	for _, l := range links {
		if l.EpochNumber < 2 {
			continue // no epoch 0 to derive
		}
		target := l.EpochNumber - 1
		if _, ok := cache.Get(conv, target); ok {
			continue
		}
		newerBytes, ok := cache.Get(conv, l.EpochNumber)
		if !ok {
			continue // cannot derive without the newer key
		}
		var newer domain.X25519Private
		copy(newer[:], newerBytes)

		candidate, err := crypto.TraverseChainLink(newer, l.ChainLink)
		memzero.Zero(newer[:])
		if err != nil {
			continue
		}
		if !crypto.VerifyEpochKeyConfirmation(candidate, l.ConfirmationHash) {
			memzero.Zero(candidate[:])
			continue
		}
		if cache.Put(conv, target, candidate.Slice()) {
			resolved++
		}
		memzero.Zero(candidate[:])
	}

	return resolved
}
