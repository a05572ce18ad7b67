package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/api/metrics"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

// Browser bundles the session store and the API facades of one browser.
type Browser struct {
	ID      string
	Session *SessionStore
	ports.APIs
}

type registryEntry struct {
	browser  *Browser
	lastSeen time.Time
}

// SessionRegistry keeps one live SessionStore per browser id. A browser seen
// for the first time (or again after eviction) is bootstrapped from its
// persisted storage, the way a page load would.
type SessionRegistry struct {
	kv     ports.KeyValueStore
	binder ports.APIBinder
	policy BootstrapPolicy
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewSessionRegistry creates an empty registry. ttl is applied to persisted
// keys on every write.
func NewSessionRegistry(kv ports.KeyValueStore, binder ports.APIBinder, policy BootstrapPolicy, ttl time.Duration, log zerolog.Logger) *SessionRegistry {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionRegistry{
		kv:      kv,
		binder:  binder,
		policy:  policy,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*registryEntry),
	}
}

// Acquire returns the live session of browserID, creating and starting it on
// first use. When Acquire returns, the persisted identity (if any) has been
// restored; verification may still be running.
func (r *SessionRegistry) Acquire(browserID string) *Browser {
	r.mu.Lock()
	entry, ok := r.entries[browserID]
	if !ok {
		entry = &registryEntry{browser: r.newBrowser(browserID)}
		r.entries[browserID] = entry
		metrics.SessionsActive.Set(float64(len(r.entries)))
	}
	entry.lastSeen = r.now()
	r.mu.Unlock()

	entry.browser.Session.Start(r.ctx)
	return entry.browser
}

func (r *SessionRegistry) newBrowser(browserID string) *Browser {
	log := r.log.With().Str("browser_id", browserID).Logger()
	creds := NewPersistedCredentials(r.kv, browserID, r.ttl)

	store := NewSessionStore(creds, nil, r.policy, log)
	apis := r.binder.Bind(creds, store)
	store.auth = apis.Auth

	return &Browser{ID: browserID, Session: store, APIs: apis}
}

// Sweep disposes sessions idle for longer than idle and returns how many were
// evicted. Their persisted storage is left untouched.
func (r *SessionRegistry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var evicted []*Browser
	for id, entry := range r.entries {
		if entry.lastSeen.Before(cutoff) {
			evicted = append(evicted, entry.browser)
			delete(r.entries, id)
		}
	}
	metrics.SessionsActive.Set(float64(len(r.entries)))
	r.mu.Unlock()

	for _, b := range evicted {
		b.Session.Dispose()
	}
	if len(evicted) > 0 {
		r.log.Debug().Int("evicted", len(evicted)).Msg("idle sessions swept")
	}
	return len(evicted)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close disposes every session and cancels pending verifications.
func (r *SessionRegistry) Close() {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		entry.browser.Session.Dispose()
		delete(r.entries, id)
	}
	metrics.SessionsActive.Set(0)
}
