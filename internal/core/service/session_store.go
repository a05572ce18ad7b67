package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/api/metrics"
	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

const (
	msgLoginFailed        = "Login failed"
	msgRegisterFailed     = "Registration failed"
	msgRegisterNoSession  = "Registration succeeded, please sign in"
	defaultInitialBackoff = 200 * time.Millisecond
)

// BootstrapPolicy controls how a stored identity is re-verified on start.
type BootstrapPolicy struct {
	// RetryMaxElapsed bounds retries of network failures. Zero means a single
	// attempt.
	RetryMaxElapsed time.Duration
	// InitialInterval is the first backoff delay. Defaults to 200ms.
	InitialInterval time.Duration
}

func (p BootstrapPolicy) backOff() backoff.BackOff {
	if p.RetryMaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultInitialBackoff
	}
	b.MaxElapsedTime = p.RetryMaxElapsed
	return b
}

// SessionStore is the single source of truth for who is signed in on one
// browser. It mirrors the in-memory identity to a CredentialStore.
type SessionStore struct {
	creds  ports.CredentialStore
	auth   ports.AuthAPI
	policy BootstrapPolicy
	log    zerolog.Logger

	mu       sync.RWMutex
	state    domain.SessionState
	identity *domain.Identity
	hasCred  bool
	stale    bool
	// gen changes on every login, register and logout; a verification result
	// computed under an older generation is dropped.
	gen    uint64
	cancel context.CancelFunc

	startOnce sync.Once
	done      chan struct{}
}

var _ ports.SessionService = (*SessionStore)(nil)

// NewSessionStore returns an uninitialised store. Call Start or Bootstrap.
func NewSessionStore(creds ports.CredentialStore, auth ports.AuthAPI, policy BootstrapPolicy, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		creds:  creds,
		auth:   auth,
		policy: policy,
		log:    log,
		state:  domain.StateUninitialized,
		done:   make(chan struct{}),
	}
}

// Start restores the persisted session synchronously, so the stored identity
// is visible as soon as Start returns, and verifies it in the background.
// Done is closed when verification finishes.
func (s *SessionStore) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		creds, gen, ok := s.restore(ctx)
		if !ok {
			close(s.done)
			return
		}

		vctx, cancel := context.WithCancel(ctx)
		s.mu.Lock()
		s.cancel = cancel
		s.mu.Unlock()

		go func() {
			defer close(s.done)
			defer cancel()
			s.verify(vctx, gen, creds)
		}()
	})
}

// Bootstrap runs the whole restore-and-verify sequence before returning.
func (s *SessionStore) Bootstrap(ctx context.Context) {
	s.startOnce.Do(func() {
		defer close(s.done)
		creds, gen, ok := s.restore(ctx)
		if !ok {
			return
		}
		s.verify(ctx, gen, creds)
	})
}

// Done is closed once bootstrap has completed, whatever the outcome.
func (s *SessionStore) Done() <-chan struct{} { return s.done }

// Dispose aborts an in-flight verification.
func (s *SessionStore) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Snapshot returns a copy of the current session view.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		State:         s.state,
		Identity:      s.identity.Clone(),
		HasCredential: s.hasCred,
		Stale:         s.stale,
	}
}

func (s *SessionStore) restore(ctx context.Context) (*domain.Credentials, uint64, bool) {
	s.mu.Lock()
	s.state = domain.StateLoading
	s.mu.Unlock()

	var creds *domain.Credentials
	load := func() error {
		var err error
		creds, err = s.creds.Load(ctx)
		if errors.Is(err, domain.ErrCorruptSession) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(load, backoff.WithContext(s.policy.backOff(), ctx))

	switch {
	case errors.Is(err, domain.ErrCorruptSession):
		s.log.Warn().Err(err).Msg("discarding corrupt persisted session")
		s.Logout(ctx)
		metrics.SessionBootstrapsTotal.WithLabelValues("corrupt").Inc()
		return nil, 0, false
	case err != nil:
		// Storage is unreachable; the persisted pair is left for the next mount.
		s.log.Error().Err(err).Msg("failed to read persisted session")
		s.mu.Lock()
		s.state = domain.StateUnauthenticated
		s.mu.Unlock()
		metrics.SessionBootstrapsTotal.WithLabelValues("unreadable").Inc()
		return nil, 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if creds == nil {
		s.state = domain.StateUnauthenticated
		metrics.SessionBootstrapsTotal.WithLabelValues("anonymous").Inc()
		return nil, 0, false
	}

	// Optimistic: show the stored identity while verification is pending.
	s.identity = creds.Identity.Clone()
	s.hasCred = true
	return creds, s.gen, true
}

func (s *SessionStore) verify(ctx context.Context, gen uint64, creds *domain.Credentials) {
	var verified *domain.Identity
	op := func() error {
		identity, err := s.auth.Me(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNetworkUnreachable) {
				return err
			}
			return backoff.Permanent(err)
		}
		verified = identity
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(s.policy.backOff(), ctx))

	if err == nil {
		err = verified.Validate()
	}

	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrInvalidIdentity) {
		s.mu.RLock()
		current := s.gen == gen
		s.mu.RUnlock()
		if current {
			s.Logout(ctx)
		}
		metrics.SessionBootstrapsTotal.WithLabelValues("invalidated").Inc()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.log.Debug().Msg("session changed during verification, dropping result")
		return
	}

	s.state = domain.StateAuthenticated
	if err != nil {
		// Keep the optimistic identity; it is probably still valid.
		s.stale = true
		s.log.Warn().Err(err).Str("user_id", creds.Identity.ID.String()).Msg("session verification failed, keeping stored identity")
		metrics.SessionBootstrapsTotal.WithLabelValues("stale").Inc()
		return
	}

	s.identity = verified.Clone()
	s.stale = false
	if err := s.creds.SaveIdentity(ctx, verified); err != nil {
		s.log.Error().Err(err).Msg("failed to persist verified identity")
	}
	metrics.SessionBootstrapsTotal.WithLabelValues("verified").Inc()
}

// Login exchanges email and password for a credential and stores it.
func (s *SessionStore) Login(ctx context.Context, email, password string) ports.AuthResult {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		metrics.SessionAuthTotal.WithLabelValues("login", "failure").Inc()
		s.log.Info().Err(err).Str("email", email).Msg("login rejected")
		return ports.AuthResult{Message: domain.ServerMessage(err, msgLoginFailed)}
	}
	if err := s.establish(ctx, resp); err != nil {
		metrics.SessionAuthTotal.WithLabelValues("login", "failure").Inc()
		s.log.Error().Err(err).Str("email", email).Msg("could not establish session")
		return ports.AuthResult{Message: msgLoginFailed}
	}
	metrics.SessionAuthTotal.WithLabelValues("login", "success").Inc()
	return ports.AuthResult{Success: true}
}

// Register creates an account and signs it in. The password confirmation is
// never transmitted.
func (s *SessionStore) Register(ctx context.Context, in ports.RegisterInput) ports.AuthResult {
	resp, err := s.auth.Register(ctx, in.Payload())
	if err != nil {
		metrics.SessionAuthTotal.WithLabelValues("register", "failure").Inc()
		if errors.Is(err, domain.ErrNetworkUnreachable) {
			return ports.AuthResult{Message: domain.UnreachableMessage}
		}
		return ports.AuthResult{Message: domain.ServerMessage(err, msgRegisterFailed)}
	}

	if resp == nil || resp.Token == "" || resp.User == nil {
		// Some backends only return the created user.
		resp, err = s.auth.Login(ctx, in.Email, in.Password)
		if err != nil {
			metrics.SessionAuthTotal.WithLabelValues("register", "failure").Inc()
			s.log.Warn().Err(err).Str("email", in.Email).Msg("sign-in after registration failed")
			return ports.AuthResult{Message: msgRegisterNoSession}
		}
	}

	if err := s.establish(ctx, resp); err != nil {
		metrics.SessionAuthTotal.WithLabelValues("register", "failure").Inc()
		s.log.Error().Err(err).Str("email", in.Email).Msg("could not establish session")
		return ports.AuthResult{Message: msgRegisterFailed}
	}
	metrics.SessionAuthTotal.WithLabelValues("register", "success").Inc()
	return ports.AuthResult{Success: true}
}

func (s *SessionStore) establish(ctx context.Context, resp *ports.AuthResponse) error {
	if resp == nil || resp.Token == "" || resp.User == nil {
		return domain.ErrCorruptSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.creds.Save(ctx, domain.Credentials{Token: resp.Token, Identity: resp.User}); err != nil {
		return err
	}
	s.gen++
	s.identity = resp.User.Clone()
	s.hasCred = true
	s.stale = false
	s.state = domain.StateAuthenticated
	return nil
}

// Logout forgets the session locally. It has no server round-trip and cannot
// fail; storage errors are only logged.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.identity = nil
	s.hasCred = false
	s.stale = false
	s.state = domain.StateUnauthenticated
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear persisted session")
	}
}

// HandleUnauthorized is called by the API client when any request is
// rejected with 401.
func (s *SessionStore) HandleUnauthorized(ctx context.Context) {
	s.log.Info().Msg("credential rejected by API, clearing session")
	s.Logout(context.WithoutCancel(ctx))
}
