package app

import (
	"net/http"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"veilchat/internal/domain"
	"veilchat/internal/relay"
	identitysvc "veilchat/internal/services/identity"
	membershipsvc "veilchat/internal/services/membership"
	sessionsvc "veilchat/internal/services/session"
	"veilchat/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Log        *logrus.Logger
	Identity   domain.IdentityService
	Chains     domain.ChainCache
	Relay      domain.RelayClient
	Sessions   *sessionsvc.Service
	Membership domain.MembershipService
	HTTP       *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)

	identityStore := store.NewIdentityFileStore(cfg.Home)
	chains, err := store.OpenChainCache(filepath.Join(cfg.Home, "chains"))
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	rc := relay.NewHTTP(cfg.RelayURL, httpClient)

	identitySvc := identitysvc.New(identityStore)
	sessionSvc := sessionsvc.New(log, rc, chains)
	membershipSvc := membershipsvc.New(log, rc, sessionSvc)

	return &Wire{
		Log:        log,
		Identity:   identitySvc,
		Chains:     chains,
		Relay:      rc,
		Sessions:   sessionSvc,
		Membership: membershipSvc,
		HTTP:       httpClient,
	}, nil
}

// Close releases everything Wire holds open, ending the session first so
// key material is zeroed before stores shut down.
func (w *Wire) Close() error {
	w.Sessions.Logout()
	return w.Chains.Close()
}
