package membership

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
	"veilchat/internal/protocol/rotation"
	sessionsvc "veilchat/internal/services/session"
	"veilchat/internal/util/memzero"
)

// Service performs membership mutations on conversations.
//
// Every mutation that must cut off a holder's future access goes through an
// epoch rotation; the two that widen or annotate access (full-history add,
// privilege change) do not, because the material the holder may read is
// already decided by existing wraps.
type Service struct {
	log      *logrus.Logger
	relay    domain.RelayClient
	sessions *sessionsvc.Service
	rotator  *rotation.Coordinator
}

// New constructs a membership service bound to one session.
func New(log *logrus.Logger, relay domain.RelayClient, sessions *sessionsvc.Service) *Service {
	return &Service{
		log:      log,
		relay:    relay,
		sessions: sessions,
		rotator:  rotation.New(relay, sessions.Cache()),
	}
}

// AddMemberWithHistory grants a new member the conversation including all
// history the caller can see. No rotation: the current epoch key is wrapped
// directly to the member with visibility from epoch 1, and the chain links
// already on the server let them walk backward from there.
func (s *Service) AddMemberWithHistory(
	ctx context.Context,
	conv domain.ConversationID,
	member domain.X25519Public,
	privilege domain.Privilege,
) error {
	epoch, key, err := s.currentKey(conv)
	if err != nil {
		return err
	}
	defer memzero.Zero(key[:])

	wrap, err := crypto.WrapEpochKey(member, key)
	if err != nil {
		return err
	}
	err = s.relay.SubmitMemberWrap(ctx, conv, domain.DirectWrap{
		EpochNumber:      epoch,
		MemberPublicKey:  member,
		Wrap:             wrap,
		Privilege:        privilege,
		VisibleFromEpoch: 1,
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"conversation": conv,
		"member":       crypto.Fingerprint(member.Slice()),
	}).Info("member added with full history")
	return nil
}

// AddMember grants a new member the conversation from now on. The epoch
// rotates and the member's visibility starts at the new epoch, so nothing
// they are served entitles them to pre-join content.
func (s *Service) AddMember(
	ctx context.Context,
	conv domain.ConversationID,
	member domain.X25519Public,
	privilege domain.Privilege,
) (domain.Epoch, error) {
	return s.rotate(ctx, conv, rotation.Add{PublicKey: member, Privilege: privilege})
}

// RemoveMember rotates the member out: no wrap for the new epoch, no
// chain-link path into it or anything after it.
func (s *Service) RemoveMember(
	ctx context.Context,
	conv domain.ConversationID,
	member domain.X25519Public,
) (domain.Epoch, error) {
	return s.rotate(ctx, conv, rotation.Remove{PublicKey: member})
}

// RevokeLink rotates a shareable link out, cutting off everyone who only
// held the conversation through it.
func (s *Service) RevokeLink(
	ctx context.Context,
	conv domain.ConversationID,
	link domain.X25519Public,
) (domain.Epoch, error) {
	return s.rotate(ctx, conv, rotation.Remove{PublicKey: link})
}

// Leave removes the caller from the conversation. As sole owner there is no
// remaining membership worth rotating for, so the conversation is deleted
// server-side instead.
func (s *Service) Leave(ctx context.Context, conv domain.ConversationID) error {
	id, ok := s.sessions.Identity()
	if !ok {
		return sessionsvc.ErrNoSession
	}

	roster, err := s.relay.FetchRoster(ctx, conv)
	if err != nil {
		return fmt.Errorf("fetch roster: %w", err)
	}

	weAreOwner := false
	otherOwnerExists := false
	for _, h := range roster {
		if h.IsLink {
			continue
		}
		if h.PublicKey == id.Pub {
			weAreOwner = h.Privilege == domain.PrivilegeOwner
		} else if h.Privilege == domain.PrivilegeOwner {
			otherOwnerExists = true
		}
	}

	if weAreOwner && !otherOwnerExists {
		if err := s.relay.DeleteConversation(ctx, conv); err != nil {
			return err
		}
		s.log.WithField("conversation", conv).Info("conversation deleted on sole-owner leave")
		return nil
	}

	_, err = s.rotate(ctx, conv, rotation.Remove{PublicKey: id.Pub})
	return err
}

// SetPrivilege changes a holder's privilege. Privilege is metadata on the
// membership record, not an encryption boundary, so no rotation happens —
// unless the new privilege revokes membership entirely, which is a removal.
func (s *Service) SetPrivilege(
	ctx context.Context,
	conv domain.ConversationID,
	holder domain.X25519Public,
	privilege domain.Privilege,
) (domain.Epoch, error) {
	if privilege == domain.PrivilegeNone {
		return s.RemoveMember(ctx, conv, holder)
	}
	if err := s.relay.UpdatePrivilege(ctx, conv, holder, privilege); err != nil {
		return 0, err
	}
	epoch, _ := s.sessions.Cache().CurrentEpoch(conv)
	return epoch, nil
}

// rotate runs one epoch rotation for conv with the given membership delta.
func (s *Service) rotate(
	ctx context.Context,
	conv domain.ConversationID,
	delta rotation.Delta,
) (domain.Epoch, error) {
	epoch, key, err := s.currentKey(conv)
	if err != nil {
		return 0, err
	}
	defer memzero.Zero(key[:])

	title, err := s.plainTitle(ctx, conv, key)
	if err != nil {
		return 0, err
	}

	accepted, err := s.rotator.Rotate(ctx, rotation.Params{
		Conversation: conv,
		CurrentEpoch: epoch,
		CurrentKey:   key,
		Title:        title,
		Delta:        delta,
		Submit: func(ctx context.Context, req domain.RotationRequest) (domain.Epoch, error) {
			return s.relay.SubmitRotation(ctx, conv, req)
		},
	})
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"conversation": conv,
		"epoch":        accepted,
	}).Info("epoch rotated")
	return accepted, nil
}

// currentKey returns the conversation's current epoch number and a private
// copy of its key from the session cache.
func (s *Service) currentKey(conv domain.ConversationID) (domain.Epoch, domain.X25519Private, error) {
	var key domain.X25519Private
	if !s.sessions.LoggedIn() {
		return 0, key, sessionsvc.ErrNoSession
	}
	cache := s.sessions.Cache()
	epoch, ok := cache.CurrentEpoch(conv)
	if !ok {
		return 0, key, sessionsvc.ErrKeyUnavailable
	}
	keyBytes, ok := cache.Get(conv, epoch)
	if !ok {
		return 0, key, sessionsvc.ErrKeyUnavailable
	}
	copy(key[:], keyBytes)
	return epoch, key, nil
}

// plainTitle decrypts the conversation title with the current epoch key so
// the rotation can re-encrypt it under the new one.
func (s *Service) plainTitle(
	ctx context.Context,
	conv domain.ConversationID,
	key domain.X25519Private,
) ([]byte, error) {
	meta, err := s.relay.FetchConversation(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	return crypto.DecryptTitle(key, meta.EncryptedTitle)
}

// Compile-time assertion that Service implements domain.MembershipService.
var _ domain.MembershipService = (*Service)(nil)
