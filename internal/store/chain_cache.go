package store

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"veilchat/internal/domain"
)

const chainKeyPrefix = "chain/"

// BadgerChainCache keeps fetched key-chain responses on disk so history can
// be re-resolved after a restart without the relay. Everything it stores is
// wrapped (encrypted) material straight off the wire; plaintext epoch keys
// never reach it, so it needs no zeroing discipline of its own.
type BadgerChainCache struct {
	db *badger.DB
}

// OpenChainCache opens (or creates) the cache database at dir.
func OpenChainCache(dir string) (*BadgerChainCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerChainCache{db: db}, nil
}

// SaveKeyChain merges chain into whatever is already stored for conv. Wraps
// and links are deduplicated by epoch number (the stored entry wins, since
// re-derivation of the same epoch yields the same material) and the current
// epoch advances monotonically.
func (c *BadgerChainCache) SaveKeyChain(conv domain.ConversationID, chain domain.KeyChain) error {
	return c.db.Update(func(txn *badger.Txn) error {
		key := []byte(chainKeyPrefix + conv.String())

		merged := chain
		item, err := txn.Get(key)
		switch {
		case err == nil:
			var stored domain.KeyChain
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return err
			}
			merged = mergeKeyChains(stored, chain)
		case errors.Is(err, badger.ErrKeyNotFound):
			// first chain for this conversation
		default:
			return err
		}

		raw, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return txn.Set(key, raw)
	})
}

// LoadKeyChain returns the stored chain for conv, if any.
func (c *BadgerChainCache) LoadKeyChain(conv domain.ConversationID) (domain.KeyChain, bool, error) {
	var chain domain.KeyChain
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(chainKeyPrefix + conv.String()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &chain)
		})
	})
	return chain, found, err
}

// Conversations lists every conversation with a stored chain.
func (c *BadgerChainCache) Conversations() ([]domain.ConversationID, error) {
	var out []domain.ConversationID
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(chainKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			out = append(out, domain.ConversationID(k[len(prefix):]))
		}
		return nil
	})
	return out, err
}

// Close releases the underlying database.
func (c *BadgerChainCache) Close() error { return c.db.Close() }

func mergeKeyChains(stored, incoming domain.KeyChain) domain.KeyChain {
	out := domain.KeyChain{CurrentEpoch: stored.CurrentEpoch}
	if incoming.CurrentEpoch > out.CurrentEpoch {
		out.CurrentEpoch = incoming.CurrentEpoch
	}

	seenWraps := make(map[domain.Epoch]bool)
	for _, w := range stored.Wraps {
		seenWraps[w.EpochNumber] = true
		out.Wraps = append(out.Wraps, w)
	}
	for _, w := range incoming.Wraps {
		if !seenWraps[w.EpochNumber] {
			seenWraps[w.EpochNumber] = true
			out.Wraps = append(out.Wraps, w)
		}
	}

	seenLinks := make(map[domain.Epoch]bool)
	for _, l := range stored.ChainLinks {
		seenLinks[l.EpochNumber] = true
		out.ChainLinks = append(out.ChainLinks, l)
	}
	for _, l := range incoming.ChainLinks {
		if !seenLinks[l.EpochNumber] {
			seenLinks[l.EpochNumber] = true
			out.ChainLinks = append(out.ChainLinks, l)
		}
	}
	return out
}

// Compile-time assertion that BadgerChainCache implements domain.ChainCache.
var _ domain.ChainCache = (*BadgerChainCache)(nil)
