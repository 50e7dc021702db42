package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
	"veilchat/internal/keycache"
	"veilchat/internal/protocol/keychain"
	"veilchat/internal/util/memzero"
)

var (
	// ErrNoSession is returned by operations that need an unlocked account
	// key while nobody is logged in.
	ErrNoSession = errors.New("no active session; log in first")

	// ErrKeyUnavailable means the needed epoch key has not been resolved
	// into the session cache yet.
	ErrKeyUnavailable = errors.New("epoch key not resolved; sync first")
)

// Service owns everything scoped to one login: the unlocked account key
// pair, the in-memory epoch key cache, and the on-disk chain cache of
// wrapped material. It is constructed at login and torn down, with all key
// buffers zeroed, at logout.
type Service struct {
	log    *logrus.Logger
	relay  domain.RelayClient
	chains domain.ChainCache

	mu       sync.Mutex
	identity *domain.Identity
	cache    *keycache.Cache
}

// New constructs a session service. The session starts logged out.
func New(log *logrus.Logger, relay domain.RelayClient, chains domain.ChainCache) *Service {
	return &Service{
		log:    log,
		relay:  relay,
		chains: chains,
		cache:  keycache.New(),
	}
}

// Login installs the unlocked account key pair for this session.
func (s *Service) Login(id domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
	s.log.WithField("fingerprint", crypto.Fingerprint(id.Pub.Slice())).Debug("session started")
}

// Logout clears the epoch key cache, zeroes the account private key and ends
// the session. Safe to call repeatedly.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
	if s.identity != nil {
		memzero.Zero(s.identity.Priv[:])
		s.identity = nil
	}
	s.log.Debug("session ended")
}

// LoggedIn reports whether an account key is available.
func (s *Service) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// Identity returns the session's account key pair.
func (s *Service) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// Cache exposes the session's epoch key cache for consumers that read keys
// or subscribe to change notifications.
func (s *Service) Cache() *keycache.Cache { return s.cache }

// CreateConversation establishes a new conversation at epoch 1 with the
// caller as sole owner, registers it at the relay, and caches the first
// epoch key.
func (s *Service) CreateConversation(ctx context.Context, title []byte) (domain.ConversationID, error) {
	id, ok := s.Identity()
	if !ok {
		return "", ErrNoSession
	}

	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	conv := domain.ConversationID(hex.EncodeToString(raw[:]))

	rot, err := crypto.NewInitialEpoch([]domain.HolderKey{{
		PublicKey:        id.Pub,
		Privilege:        domain.PrivilegeOwner,
		VisibleFromEpoch: 1,
	}})
	if err != nil {
		return "", err
	}

	encryptedTitle, err := crypto.EncryptTitle(rot.Pub, title)
	if err != nil {
		rot.Discard()
		return "", err
	}

	err = s.relay.CreateConversation(ctx, domain.CreateRequest{
		ID:               conv,
		EpochPublicKey:   rot.Pub,
		ConfirmationHash: rot.ConfirmationHash,
		EncryptedTitle:   encryptedTitle,
		MemberWraps:      rot.Wraps,
	})
	if err != nil {
		rot.Discard()
		return "", err
	}

	s.cache.Put(conv, 1, rot.Priv.Slice())
	s.cache.SetCurrentEpoch(conv, 1)
	rot.Discard()

	s.log.WithField("conversation", conv).Info("conversation created")
	return conv, nil
}

// Sync fetches the conversation's key chain from the relay, persists the
// wrapped material to the chain cache, and resolves as many epoch keys as
// possible into the session cache. When the relay is unreachable it falls
// back to the stored chain, so previously fetched history still resolves
// offline.
//
// Without an active session Sync is a harmless no-op: there is nothing to
// resolve yet.
func (s *Service) Sync(ctx context.Context, conv domain.ConversationID) (int, error) {
	id, ok := s.Identity()
	if !ok {
		return 0, nil
	}

	chain, err := s.relay.FetchKeyChain(ctx, conv, id.Pub)
	if err != nil {
		stored, found, loadErr := s.chains.LoadKeyChain(conv)
		if loadErr != nil || !found {
			return 0, err
		}
		s.log.WithError(err).WithField("conversation", conv).
			Warn("relay unreachable, resolving from stored chain")
		chain = stored
	} else if saveErr := s.chains.SaveKeyChain(conv, chain); saveErr != nil {
		s.log.WithError(saveErr).Warn("failed to persist key chain")
	}

	resolved := keychain.Resolve(s.cache, conv, chain, &id.Priv)
	s.log.WithFields(logrus.Fields{
		"conversation": conv,
		"resolved":     resolved,
		"currentEpoch": chain.CurrentEpoch,
	}).Debug("key chain resolved")
	return resolved, nil
}

// Title fetches and decrypts the conversation title using the current epoch
// key from the cache.
func (s *Service) Title(ctx context.Context, conv domain.ConversationID) ([]byte, error) {
	meta, err := s.relay.FetchConversation(ctx, conv)
	if err != nil {
		return nil, err
	}
	cur, ok := s.cache.CurrentEpoch(conv)
	if !ok {
		cur = meta.CurrentEpoch
	}
	keyBytes, ok := s.cache.Get(conv, cur)
	if !ok {
		return nil, ErrKeyUnavailable
	}
	var priv domain.X25519Private
	copy(priv[:], keyBytes)
	title, err := crypto.DecryptTitle(priv, meta.EncryptedTitle)
	memzero.Zero(priv[:])
	return title, err
}
