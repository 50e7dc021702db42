package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"veilchat/internal/domain"
)

// epochRecord is everything the relay keeps per epoch: public material only.
type epochRecord struct {
	Pub          domain.X25519Public
	Confirmation []byte
	ChainLink    []byte // empty for the first epoch
	Title        []byte
}

// wrapRecord is one sealed epoch key addressed to one holder.
type wrapRecord struct {
	Epoch       domain.Epoch
	Holder      domain.X25519Public
	Wrap        []byte
	VisibleFrom domain.Epoch
}

type conversation struct {
	current domain.Epoch
	epochs  map[domain.Epoch]*epochRecord
	wraps   []wrapRecord
	roster  map[domain.X25519Public]domain.HolderKey
}

type server struct {
	log *logrus.Logger

	mu    sync.RWMutex
	convs map[domain.ConversationID]*conversation
}

func newServer(log *logrus.Logger) *server {
	return &server{log: log, convs: make(map[domain.ConversationID]*conversation)}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /conversations", s.handleCreate)
	mux.HandleFunc("GET /conversations/{id}", s.handleMeta)
	mux.HandleFunc("DELETE /conversations/{id}", s.handleDelete)
	mux.HandleFunc("GET /conversations/{id}/keychain", s.handleKeyChain)
	mux.HandleFunc("GET /conversations/{id}/roster", s.handleRoster)
	mux.HandleFunc("POST /conversations/{id}/rotate", s.handleRotate)
	mux.HandleFunc("POST /conversations/{id}/wraps", s.handleDirectWrap)
	mux.HandleFunc("POST /conversations/{id}/privilege", s.handlePrivilege)
	return mux
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req domain.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" || len(req.MemberWraps) == 0 {
		http.Error(w, "conversation id and at least one wrap required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.convs[req.ID]; exists {
		http.Error(w, "conversation exists", http.StatusConflict)
		return
	}

	conv := &conversation{
		current: 1,
		epochs: map[domain.Epoch]*epochRecord{1: {
			Pub:          req.EpochPublicKey,
			Confirmation: req.ConfirmationHash,
			Title:        req.EncryptedTitle,
		}},
		roster: make(map[domain.X25519Public]domain.HolderKey),
	}
	conv.absorbWraps(1, req.MemberWraps)
	s.convs[req.ID] = conv

	s.log.WithField("conversation", req.ID).Info("conversation created")
	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleMeta(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))
	s.mu.RLock()
	conv, ok := s.convs[id]
	if !ok {
		s.mu.RUnlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	meta := domain.Conversation{
		ID:             id,
		CurrentEpoch:   conv.current,
		EncryptedTitle: conv.epochs[conv.current].Title,
	}
	s.mu.RUnlock()
	_ = json.NewEncoder(w).Encode(meta)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))
	s.mu.Lock()
	_, ok := s.convs[id]
	delete(s.convs, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.log.WithField("conversation", id).Info("conversation deleted")
	w.WriteHeader(http.StatusOK)
}

// handleKeyChain serves the wraps addressed to one holder plus the chain
// links reaching back to the holder's visibility horizon. The relay never
// filters by trust: the client verifies every confirmation itself.
func (s *server) handleKeyChain(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))
	holder, err := parseHolder(r.URL.Query().Get("holder"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var chain domain.KeyChain
	chain.CurrentEpoch = conv.current
	horizon := conv.current
	for _, wr := range conv.wraps {
		if wr.Holder != holder || wr.VisibleFrom > wr.Epoch {
			continue
		}
		chain.Wraps = append(chain.Wraps, domain.WrapEntry{
			EpochNumber:      wr.Epoch,
			Wrap:             wr.Wrap,
			ConfirmationHash: conv.epochs[wr.Epoch].Confirmation,
			VisibleFromEpoch: wr.VisibleFrom,
		})
		if wr.VisibleFrom < horizon {
			horizon = wr.VisibleFrom
		}
	}
	if len(chain.Wraps) == 0 {
		http.Error(w, "no wraps for holder", http.StatusNotFound)
		return
	}

	// Link N decrypts epoch N-1, so serve links strictly above the horizon:
	// nothing the holder gets entitles them to epochs before it.
	for e := horizon + 1; e <= conv.current; e++ {
		rec, ok := conv.epochs[e]
		if !ok || len(rec.ChainLink) == 0 {
			continue
		}
		chain.ChainLinks = append(chain.ChainLinks, domain.ChainLinkEntry{
			EpochNumber:      e,
			ChainLink:        rec.ChainLink,
			ConfirmationHash: conv.epochs[e-1].Confirmation,
		})
	}
	_ = json.NewEncoder(w).Encode(chain)
}

func (s *server) handleRoster(w http.ResponseWriter, r *http.Request) {
	id := domain.ConversationID(r.PathValue("id"))
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	roster := make([]domain.HolderKey, 0, len(conv.roster))
	for _, h := range conv.roster {
		roster = append(roster, h)
	}
	_ = json.NewEncoder(w).Encode(roster)
}

// handleRotate advances the epoch iff the submitted expected epoch still
// matches. A mismatch means someone else rotated first; the client must
// re-sync and rebuild, so the request is rejected wholesale with 409.
func (s *server) handleRotate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := domain.ConversationID(r.PathValue("id"))
	var req domain.RotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if req.ExpectedEpoch != conv.current {
		s.log.WithFields(logrus.Fields{
			"conversation": id,
			"expected":     req.ExpectedEpoch,
			"current":      conv.current,
		}).Warn("stale rotation rejected")
		http.Error(w, "epoch moved", http.StatusConflict)
		return
	}
	if len(req.MemberWraps) == 0 {
		http.Error(w, "rotation with no holders", http.StatusBadRequest)
		return
	}

	next := conv.current + 1
	conv.epochs[next] = &epochRecord{
		Pub:          req.EpochPublicKey,
		Confirmation: req.ConfirmationHash,
		ChainLink:    req.ChainLink,
		Title:        req.EncryptedTitle,
	}
	conv.roster = make(map[domain.X25519Public]domain.HolderKey)
	conv.absorbWraps(next, req.MemberWraps)
	conv.current = next

	s.log.WithFields(logrus.Fields{
		"conversation": id,
		"epoch":        next,
		"holders":      len(req.MemberWraps),
	}).Info("epoch rotated")
	_ = json.NewEncoder(w).Encode(struct {
		Epoch domain.Epoch `json:"epoch"`
	}{Epoch: next})
}

func (s *server) handleDirectWrap(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := domain.ConversationID(r.PathValue("id"))
	var dw domain.DirectWrap
	if err := json.NewDecoder(r.Body).Decode(&dw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if dw.EpochNumber != conv.current {
		http.Error(w, "wrap must target the current epoch", http.StatusConflict)
		return
	}
	conv.wraps = append(conv.wraps, wrapRecord{
		Epoch:       dw.EpochNumber,
		Holder:      dw.MemberPublicKey,
		Wrap:        dw.Wrap,
		VisibleFrom: dw.VisibleFromEpoch,
	})
	conv.roster[dw.MemberPublicKey] = domain.HolderKey{
		PublicKey:        dw.MemberPublicKey,
		Privilege:        dw.Privilege,
		VisibleFromEpoch: dw.VisibleFromEpoch,
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) handlePrivilege(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := domain.ConversationID(r.PathValue("id"))
	var body struct {
		Holder    string           `json:"holder"`
		Privilege domain.Privilege `json:"privilege"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	holder, err := parseHolder(body.Holder)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	h, ok := conv.roster[holder]
	if !ok {
		http.Error(w, "holder not in roster", http.StatusNotFound)
		return
	}
	h.Privilege = body.Privilege
	conv.roster[holder] = h
	w.WriteHeader(http.StatusOK)
}

// absorbWraps records the wraps of one epoch and rebuilds roster entries
// from them. Caller holds the lock.
func (c *conversation) absorbWraps(epoch domain.Epoch, wraps []domain.MemberWrap) {
	for _, mw := range wraps {
		holder := mw.HolderPublicKey()
		c.wraps = append(c.wraps, wrapRecord{
			Epoch:       epoch,
			Holder:      holder,
			Wrap:        mw.Wrap,
			VisibleFrom: mw.VisibleFromEpoch,
		})
		c.roster[holder] = domain.HolderKey{
			PublicKey:        holder,
			Privilege:        mw.Privilege,
			VisibleFromEpoch: mw.VisibleFromEpoch,
			IsLink:           mw.LinkPublicKey != nil,
		}
	}
}

func parseHolder(arg string) (domain.X25519Public, error) {
	var pub domain.X25519Public
	raw, err := hex.DecodeString(arg)
	if err != nil || len(raw) != len(pub) {
		return pub, errBadHolder
	}
	copy(pub[:], raw)
	return pub, nil
}

var errBadHolder = errors.New("holder must be a 32-byte hex public key")

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := logrus.New()
	srv := newServer(log)

	log.WithField("addr", *addr).Info("relay listening")
	log.Fatal(http.ListenAndServe(*addr, srv.routes()))
}
