package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubKV struct {
	mu   sync.Mutex
	data map[string]string
	// failGets makes the next n Get calls return errStorage.
	failGets int
}

var errStorage = errors.New("redis: i/o timeout")

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string]string)}
}

func (s *stubKV) Get(_ context.Context, ns, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGets > 0 {
		s.failGets--
		return "", false, errStorage
	}
	v, ok := s.data[ns+"/"+key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, ns, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ns+"/"+key] = value
	return nil
}

func (s *stubKV) Delete(_ context.Context, ns string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, ns+"/"+k)
	}
	return nil
}

func (s *stubKV) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

type stubAuthAPI struct {
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResponse, error)
	registerFn func(ctx context.Context, payload ports.RegisterPayload) (*ports.AuthResponse, error)
	meFn       func(ctx context.Context) (*domain.Identity, error)
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (*ports.AuthResponse, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthAPI) Register(ctx context.Context, payload ports.RegisterPayload) (*ports.AuthResponse, error) {
	return s.registerFn(ctx, payload)
}

func (s *stubAuthAPI) Me(ctx context.Context) (*domain.Identity, error) {
	return s.meFn(ctx)
}

type stubAPIError struct{ msg string }

func (e *stubAPIError) Error() string         { return "api: " + e.msg }
func (e *stubAPIError) ServerMessage() string { return e.msg }

const testNS = "browser-1"

func newTestStore(kv *stubKV, api *stubAuthAPI, policy BootstrapPolicy) (*SessionStore, *PersistedCredentials) {
	creds := NewPersistedCredentials(kv, testNS, 0)
	return NewSessionStore(creds, api, policy, zerolog.Nop()), creds
}

func seed(t *testing.T, creds *PersistedCredentials, token string, id *domain.Identity) {
	t.Helper()
	if err := creds.Save(context.Background(), domain.Credentials{Token: token, Identity: id}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func waitDone(t *testing.T, s *SessionStore) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("bootstrap did not finish")
	}
}

// ---------------------------------------------------------------------------
// Login / logout
// ---------------------------------------------------------------------------

func TestSessionStore_Login_Success(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResponse, error) {
			if email != "a@b.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResponse{Token: "t1", User: &domain.Identity{ID: "1", Role: domain.RoleMember}}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	store.Bootstrap(context.Background())

	res := store.Login(context.Background(), "a@b.com", "secret")
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}

	snap := store.Snapshot()
	if snap.State != domain.StateAuthenticated || !snap.IsAuthenticated() {
		t.Fatalf("expected authenticated, got %+v", snap)
	}
	if snap.IsAdmin() || !snap.IsMember() {
		t.Fatalf("expected member flags, got admin=%v member=%v", snap.IsAdmin(), snap.IsMember())
	}

	stored, err := creds.Load(context.Background())
	if err != nil || stored == nil {
		t.Fatalf("load after login: %v %v", stored, err)
	}
	if stored.Token != "t1" || stored.Identity.ID != "1" || stored.Identity.Role != domain.RoleMember {
		t.Fatalf("unexpected persisted pair: %+v %+v", stored, stored.Identity)
	}
}

func TestSessionStore_Logout_ClearsEverything(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (*ports.AuthResponse, error) {
			return &ports.AuthResponse{Token: "t1", User: &domain.Identity{ID: "1", Role: domain.RoleMember}}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	store.Bootstrap(context.Background())
	store.Login(context.Background(), "a@b.com", "secret")

	store.Logout(context.Background())

	if kv.len() != 0 {
		t.Fatalf("expected empty storage, got %d keys", kv.len())
	}
	if stored, err := creds.Load(context.Background()); stored != nil || err != nil {
		t.Fatalf("expected nothing stored, got %+v %v", stored, err)
	}
	snap := store.Snapshot()
	if snap.IsAuthenticated() || snap.Identity != nil || snap.State != domain.StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %+v", snap)
	}
}

func TestSessionStore_Login_FailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &stubAPIError{msg: "Invalid credentials"}, "Invalid credentials"},
		{"empty server message", &stubAPIError{}, msgLoginFailed},
		{"no payload", errors.New("boom"), msgLoginFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubAuthAPI{
				loginFn: func(context.Context, string, string) (*ports.AuthResponse, error) {
					return nil, tc.err
				},
			}
			store, _ := newTestStore(newStubKV(), api, BootstrapPolicy{})
			res := store.Login(context.Background(), "a@b.com", "bad")
			if res.Success {
				t.Fatalf("expected failure")
			}
			if res.Message != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, res.Message)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestSessionStore_Register_NeverSendsConfirmation(t *testing.T) {
	var sent []byte
	api := &stubAuthAPI{
		registerFn: func(_ context.Context, payload ports.RegisterPayload) (*ports.AuthResponse, error) {
			sent, _ = json.Marshal(payload)
			return &ports.AuthResponse{Token: "t2", User: &domain.Identity{ID: "2", Role: domain.RoleMember}}, nil
		},
	}
	store, _ := newTestStore(newStubKV(), api, BootstrapPolicy{})

	res := store.Register(context.Background(), ports.RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if strings.Contains(strings.ToLower(string(sent)), "confirm") {
		t.Fatalf("payload leaked confirmation field: %s", sent)
	}
	if !strings.Contains(string(sent), `"password":"secret1"`) {
		t.Fatalf("payload missing password: %s", sent)
	}
}

func TestSessionStore_Register_LogsInWhenNoToken(t *testing.T) {
	loginCalled := false
	api := &stubAuthAPI{
		registerFn: func(context.Context, ports.RegisterPayload) (*ports.AuthResponse, error) {
			return &ports.AuthResponse{User: &domain.Identity{ID: "3", Role: domain.RoleMember}}, nil
		},
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResponse, error) {
			loginCalled = true
			if email != "bob@example.com" || password != "hunter22" {
				t.Fatalf("unexpected login args: %s %s", email, password)
			}
			return &ports.AuthResponse{Token: "t3", User: &domain.Identity{ID: "3", Role: domain.RoleMember}}, nil
		},
	}
	store, creds := newTestStore(newStubKV(), api, BootstrapPolicy{})

	res := store.Register(context.Background(), ports.RegisterInput{Email: "bob@example.com", Password: "hunter22"})
	if !res.Success || !loginCalled {
		t.Fatalf("expected success via login fallback, got %+v (login called: %v)", res, loginCalled)
	}
	if token, _ := creds.Token(context.Background()); token != "t3" {
		t.Fatalf("expected token t3, got %q", token)
	}
}

func TestSessionStore_Register_DistinguishesNetworkFailure(t *testing.T) {
	api := &stubAuthAPI{
		registerFn: func(context.Context, ports.RegisterPayload) (*ports.AuthResponse, error) {
			return nil, fmt.Errorf("post /auth/register: %w", domain.ErrNetworkUnreachable)
		},
	}
	store, _ := newTestStore(newStubKV(), api, BootstrapPolicy{})
	if res := store.Register(context.Background(), ports.RegisterInput{}); res.Message != domain.UnreachableMessage {
		t.Fatalf("expected unreachable message, got %q", res.Message)
	}

	api.registerFn = func(context.Context, ports.RegisterPayload) (*ports.AuthResponse, error) {
		return nil, &stubAPIError{msg: "Email already registered"}
	}
	if res := store.Register(context.Background(), ports.RegisterInput{}); res.Message != "Email already registered" {
		t.Fatalf("expected server message, got %q", res.Message)
	}
}

// ---------------------------------------------------------------------------
// Bootstrap
// ---------------------------------------------------------------------------

func TestSessionStore_Bootstrap_NothingStored(t *testing.T) {
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			t.Fatalf("verification must not run without stored credentials")
			return nil, nil
		},
	}
	store, _ := newTestStore(newStubKV(), api, BootstrapPolicy{})
	if st := store.Snapshot().State; st != domain.StateUninitialized {
		t.Fatalf("expected uninitialized before start, got %s", st)
	}

	store.Start(context.Background())
	waitDone(t, store)

	if snap := store.Snapshot(); snap.State != domain.StateUnauthenticated || snap.IsAuthenticated() {
		t.Fatalf("expected unauthenticated, got %+v", snap)
	}
}

func TestSessionStore_Bootstrap_OptimisticBeforeVerification(t *testing.T) {
	kv := newStubKV()
	release := make(chan struct{})
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			<-release
			return &domain.Identity{ID: "1", Name: "Ann", Role: domain.RoleMember}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	stored := &domain.Identity{ID: "1", Name: "Ann", Role: domain.RoleMember}
	seed(t, creds, "t1", stored)

	store.Start(context.Background())

	snap := store.Snapshot()
	if snap.State != domain.StateLoading {
		t.Fatalf("expected loading while verification is pending, got %s", snap.State)
	}
	if snap.Identity == nil || *snap.Identity != *stored {
		t.Fatalf("expected stored identity %+v, got %+v", stored, snap.Identity)
	}

	close(release)
	waitDone(t, store)
	if st := store.Snapshot().State; st != domain.StateAuthenticated {
		t.Fatalf("expected authenticated after verification, got %s", st)
	}
}

func TestSessionStore_Bootstrap_ServerCorrectsIdentity(t *testing.T) {
	kv := newStubKV()
	server := &domain.Identity{ID: "1", Name: "Ann Lee", Email: "ann@example.com", Role: domain.RoleMember, Phone: "0812"}
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) { return server, nil },
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Name: "Ann", Role: domain.RoleMember})

	store.Bootstrap(context.Background())

	snap := store.Snapshot()
	if snap.Identity == nil || *snap.Identity != *server {
		t.Fatalf("expected server identity in memory, got %+v", snap.Identity)
	}
	stored, err := creds.Load(context.Background())
	if err != nil || stored == nil || *stored.Identity != *server {
		t.Fatalf("expected server identity persisted, got %+v %v", stored, err)
	}
	if stored.Token != "t1" {
		t.Fatalf("token must be kept, got %q", stored.Token)
	}
}

func TestSessionStore_Bootstrap_UnauthorizedClears(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			return nil, fmt.Errorf("get /auth/me: %w", domain.ErrUnauthorized)
		},
	}
	store, _ := newTestStore(kv, api, BootstrapPolicy{RetryMaxElapsed: time.Second})
	seed(t, NewPersistedCredentials(kv, testNS, 0), "expired", &domain.Identity{ID: "1", Role: domain.RoleAdmin})

	store.Bootstrap(context.Background())

	if kv.len() != 0 {
		t.Fatalf("expected storage cleared, %d keys left", kv.len())
	}
	if snap := store.Snapshot(); snap.Identity != nil || snap.HasCredential || snap.State != domain.StateUnauthenticated {
		t.Fatalf("expected logged out, got %+v", snap)
	}
}

func TestSessionStore_Bootstrap_InvalidIdentityClears(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			return &domain.Identity{}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Role: domain.RoleMember})

	store.Bootstrap(context.Background())

	if kv.len() != 0 {
		t.Fatalf("expected storage cleared, %d keys left", kv.len())
	}
	if snap := store.Snapshot(); snap.Identity != nil || snap.State != domain.StateUnauthenticated {
		t.Fatalf("expected logged out, got %+v", snap)
	}
}

func TestSessionStore_Bootstrap_NetworkFailureKeepsStaleIdentity(t *testing.T) {
	kv := newStubKV()
	calls := 0
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			calls++
			return nil, fmt.Errorf("get /auth/me: %w", domain.ErrNetworkUnreachable)
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Role: domain.RoleMember})

	store.Bootstrap(context.Background())

	if calls != 1 {
		t.Fatalf("expected a single attempt without retry policy, got %d", calls)
	}
	snap := store.Snapshot()
	if !snap.IsAuthenticated() || !snap.Stale || snap.State != domain.StateAuthenticated {
		t.Fatalf("expected stale authenticated session, got %+v", snap)
	}
	if token, _ := creds.Token(context.Background()); token != "t1" {
		t.Fatalf("storage must be untouched, token=%q", token)
	}
}

func TestSessionStore_Bootstrap_RetriesNetworkFailures(t *testing.T) {
	kv := newStubKV()
	calls := 0
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			calls++
			if calls == 1 {
				return nil, domain.ErrNetworkUnreachable
			}
			return &domain.Identity{ID: "1", Role: domain.RoleMember}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{RetryMaxElapsed: time.Second, InitialInterval: time.Millisecond})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Role: domain.RoleMember})

	store.Bootstrap(context.Background())

	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if snap := store.Snapshot(); snap.Stale || snap.State != domain.StateAuthenticated {
		t.Fatalf("expected verified session, got %+v", snap)
	}
}

func TestSessionStore_Bootstrap_CorruptPairIsDiscarded(t *testing.T) {
	kv := newStubKV()
	_ = kv.Set(context.Background(), testNS, tokenKey, "orphan", 0)
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			t.Fatalf("verification must not run for a corrupt pair")
			return nil, nil
		},
	}
	store, _ := newTestStore(kv, api, BootstrapPolicy{})

	store.Bootstrap(context.Background())

	if kv.len() != 0 {
		t.Fatalf("expected corrupt pair removed")
	}
	if snap := store.Snapshot(); snap.State != domain.StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %+v", snap)
	}
}

func TestSessionStore_Bootstrap_StorageErrorKeepsPersistedPair(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			t.Fatalf("verification must not run when storage is unreadable")
			return nil, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Role: domain.RoleMember})
	kv.failGets = 1

	store.Bootstrap(context.Background())

	if snap := store.Snapshot(); snap.State != domain.StateUnauthenticated || snap.Identity != nil {
		t.Fatalf("expected unauthenticated in memory, got %+v", snap)
	}
	if kv.len() != 2 {
		t.Fatalf("expected persisted pair to survive, %d keys left", kv.len())
	}
	stored, err := creds.Load(context.Background())
	if err != nil || stored == nil || stored.Token != "t1" {
		t.Fatalf("expected token t1 still stored, got %+v %v", stored, err)
	}
}

func TestSessionStore_Bootstrap_RetriesStorageRead(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			return &domain.Identity{ID: "1", Role: domain.RoleMember}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{RetryMaxElapsed: time.Second, InitialInterval: time.Millisecond})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Role: domain.RoleMember})
	kv.failGets = 1

	store.Bootstrap(context.Background())

	if snap := store.Snapshot(); !snap.IsAuthenticated() || snap.State != domain.StateAuthenticated {
		t.Fatalf("expected restored session after retry, got %+v", snap)
	}
}

func TestSessionStore_Bootstrap_DropsResultAfterLogout(t *testing.T) {
	kv := newStubKV()
	release := make(chan struct{})
	api := &stubAuthAPI{
		meFn: func(context.Context) (*domain.Identity, error) {
			<-release
			return &domain.Identity{ID: "1", Role: domain.RoleMember}, nil
		},
	}
	store, creds := newTestStore(kv, api, BootstrapPolicy{})
	seed(t, creds, "t1", &domain.Identity{ID: "1", Role: domain.RoleMember})

	store.Start(context.Background())
	store.Logout(context.Background())
	close(release)
	waitDone(t, store)

	if snap := store.Snapshot(); snap.Identity != nil || snap.State != domain.StateUnauthenticated {
		t.Fatalf("late verification must not revive the session, got %+v", snap)
	}
	if kv.len() != 0 {
		t.Fatalf("late verification must not write storage")
	}
}

func TestSessionStore_HandleUnauthorized(t *testing.T) {
	kv := newStubKV()
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (*ports.AuthResponse, error) {
			return &ports.AuthResponse{Token: "t1", User: &domain.Identity{ID: "1", Role: domain.RoleAdmin}}, nil
		},
	}
	store, _ := newTestStore(kv, api, BootstrapPolicy{})
	store.Bootstrap(context.Background())
	store.Login(context.Background(), "admin@example.com", "secret")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.HandleUnauthorized(ctx)

	if kv.len() != 0 || store.Snapshot().IsAuthenticated() {
		t.Fatalf("expected session cleared after 401")
	}
}
