package keycache

import (
	"sync"

	"veilchat/internal/domain"
	"veilchat/internal/util/memzero"
)

// Cache is the session-scoped store of unwrapped epoch private keys, indexed
// by (conversation, epoch), plus each conversation's current-epoch pointer.
//
// Writes are first-write-wins: once an epoch key is cached it is never
// replaced. Epoch-key derivation is idempotent (unwrapping the same
// ciphertext always yields the same key), so a duplicate write is silently
// ignored rather than treated as an error, which also keeps duplicate
// resolutions from causing notification storms.
//
// Get returns the cache's own buffer, valid until Clear; Clear zeroes every
// buffer in place. Construct one Cache per login session and Clear it at
// logout.
type Cache struct {
	mu      sync.Mutex
	version uint64
	keys    map[domain.ConversationID]map[domain.Epoch][]byte
	current map[domain.ConversationID]domain.Epoch

	subs    map[int]func()
	nextSub int
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		keys:    make(map[domain.ConversationID]map[domain.Epoch][]byte),
		current: make(map[domain.ConversationID]domain.Epoch),
		subs:    make(map[int]func()),
	}
}

// Get looks up the epoch private key for (conv, epoch). The returned slice
// aliases the cached buffer; callers must not modify or retain it past the
// session.
func (c *Cache) Get(conv domain.ConversationID, epoch domain.Epoch) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.keys[conv][epoch]
	return key, ok
}

// Put caches a copy of key for (conv, epoch). If an entry already exists the
// call is a no-op: the existing key stays, the version does not advance and
// nobody is notified. It reports whether an insert happened.
func (c *Cache) Put(conv domain.ConversationID, epoch domain.Epoch, key []byte) bool {
	c.mu.Lock()
	if _, exists := c.keys[conv][epoch]; exists {
		c.mu.Unlock()
		return false
	}
	m := c.keys[conv]
	if m == nil {
		m = make(map[domain.Epoch][]byte)
		c.keys[conv] = m
	}
	m[epoch] = append([]byte(nil), key...)
	subs := c.bumpLocked()
	c.mu.Unlock()

	notify(subs)
	return true
}

// CurrentEpoch returns the conversation's current epoch, if known.
func (c *Cache) CurrentEpoch(conv domain.ConversationID) (domain.Epoch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	epoch, ok := c.current[conv]
	return epoch, ok
}

// SetCurrentEpoch records the conversation's current epoch. Setting the same
// value again is a no-op with no version bump and no notification.
func (c *Cache) SetCurrentEpoch(conv domain.ConversationID, epoch domain.Epoch) bool {
	c.mu.Lock()
	if cur, ok := c.current[conv]; ok && cur == epoch {
		c.mu.Unlock()
		return false
	}
	c.current[conv] = epoch
	subs := c.bumpLocked()
	c.mu.Unlock()

	notify(subs)
	return true
}

// Clear zeroes every cached key buffer in place, forgets all entries and
// current-epoch pointers, and notifies subscribers. Clearing an already-empty
// cache changes nothing observable and is silent.
func (c *Cache) Clear() {
	c.mu.Lock()
	if len(c.keys) == 0 && len(c.current) == 0 {
		c.mu.Unlock()
		return
	}
	for _, epochs := range c.keys {
		for _, key := range epochs {
			memzero.Zero(key)
		}
	}
	c.keys = make(map[domain.ConversationID]map[domain.Epoch][]byte)
	c.current = make(map[domain.ConversationID]domain.Epoch)
	subs := c.bumpLocked()
	c.mu.Unlock()

	notify(subs)
}

// Size returns the number of cached epoch keys across all conversations.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, epochs := range c.keys {
		n += len(epochs)
	}
	return n
}

// Epochs returns the cached epoch numbers for a conversation, unordered.
func (c *Cache) Epochs(conv domain.ConversationID) []domain.Epoch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Epoch, 0, len(c.keys[conv]))
	for epoch := range c.keys[conv] {
		out = append(out, epoch)
	}
	return out
}

// Version returns the current version counter. It strictly increases on
// every observable mutation and never otherwise, so a subscriber can compare
// versions to detect staleness.
func (c *Cache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Subscribe registers fn to be called synchronously after every observable
// mutation, before the mutating call returns. The returned function removes
// the subscription.
func (c *Cache) Subscribe(fn func()) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// bumpLocked advances the version and snapshots the subscriber list. The
// lock is released before the snapshot is invoked so listeners may call back
// into the cache.
func (c *Cache) bumpLocked() []func() {
	c.version++
	subs := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
