package store_test

import (
	"testing"

	"veilchat/internal/domain"
	"veilchat/internal/store"
)

func openCache(t *testing.T) *store.BadgerChainCache {
	t.Helper()
	c, err := store.OpenChainCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenChainCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestChainCache_RoundTrip(t *testing.T) {
	c := openCache(t)
	conv := domain.ConversationID("conv-1")

	chain := domain.KeyChain{
		CurrentEpoch: 3,
		Wraps: []domain.WrapEntry{
			{EpochNumber: 3, Wrap: []byte{1, 2}, ConfirmationHash: []byte{3}, VisibleFromEpoch: 1},
		},
		ChainLinks: []domain.ChainLinkEntry{
			{EpochNumber: 3, ChainLink: []byte{4}, ConfirmationHash: []byte{5}},
			{EpochNumber: 2, ChainLink: []byte{6}, ConfirmationHash: []byte{7}},
		},
	}
	if err := c.SaveKeyChain(conv, chain); err != nil {
		t.Fatalf("SaveKeyChain: %v", err)
	}

	got, ok, err := c.LoadKeyChain(conv)
	if err != nil {
		t.Fatalf("LoadKeyChain: %v", err)
	}
	if !ok {
		t.Fatal("chain not found after save")
	}
	if got.CurrentEpoch != 3 || len(got.Wraps) != 1 || len(got.ChainLinks) != 2 {
		t.Fatalf("unexpected chain after round trip: %+v", got)
	}
}

func TestChainCache_Missing(t *testing.T) {
	c := openCache(t)
	_, ok, err := c.LoadKeyChain("nope")
	if err != nil {
		t.Fatalf("LoadKeyChain: %v", err)
	}
	if ok {
		t.Fatal("found a chain that was never saved")
	}
}

func TestChainCache_MergesAcrossFetches(t *testing.T) {
	c := openCache(t)
	conv := domain.ConversationID("conv-1")

	first := domain.KeyChain{
		CurrentEpoch: 2,
		Wraps:        []domain.WrapEntry{{EpochNumber: 2, Wrap: []byte{1}}},
		ChainLinks:   []domain.ChainLinkEntry{{EpochNumber: 2, ChainLink: []byte{2}}},
	}
	second := domain.KeyChain{
		CurrentEpoch: 3,
		Wraps: []domain.WrapEntry{
			{EpochNumber: 2, Wrap: []byte{9}}, // duplicate epoch; stored one wins
			{EpochNumber: 3, Wrap: []byte{3}},
		},
		ChainLinks: []domain.ChainLinkEntry{{EpochNumber: 3, ChainLink: []byte{4}}},
	}

	if err := c.SaveKeyChain(conv, first); err != nil {
		t.Fatalf("SaveKeyChain: %v", err)
	}
	if err := c.SaveKeyChain(conv, second); err != nil {
		t.Fatalf("SaveKeyChain: %v", err)
	}

	got, _, err := c.LoadKeyChain(conv)
	if err != nil {
		t.Fatalf("LoadKeyChain: %v", err)
	}
	if got.CurrentEpoch != 3 {
		t.Fatalf("want current epoch 3, got %d", got.CurrentEpoch)
	}
	if len(got.Wraps) != 2 || len(got.ChainLinks) != 2 {
		t.Fatalf("bad merge: %+v", got)
	}
	for _, w := range got.Wraps {
		if w.EpochNumber == 2 && w.Wrap[0] != 1 {
			t.Fatal("merge replaced the stored wrap")
		}
	}
}

func TestChainCache_Conversations(t *testing.T) {
	c := openCache(t)

	_ = c.SaveKeyChain("a", domain.KeyChain{CurrentEpoch: 1})
	_ = c.SaveKeyChain("b", domain.KeyChain{CurrentEpoch: 1})

	convs, err := c.Conversations()
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("want 2 conversations, got %d", len(convs))
	}
}
