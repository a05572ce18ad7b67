package middleware

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
	"github.com/grandstay/hotel-web/internal/core/service"
)

type fakeCreds struct {
	creds *domain.Credentials
}

func (f *fakeCreds) Load(context.Context) (*domain.Credentials, error) { return f.creds, nil }
func (f *fakeCreds) Save(_ context.Context, c domain.Credentials) error {
	f.creds = &c
	return nil
}
func (f *fakeCreds) SaveIdentity(_ context.Context, id *domain.Identity) error {
	if f.creds != nil {
		f.creds.Identity = id
	}
	return nil
}
func (f *fakeCreds) Clear(context.Context) error {
	f.creds = nil
	return nil
}
func (f *fakeCreds) Token(context.Context) (string, error) {
	if f.creds == nil {
		return "", nil
	}
	return f.creds.Token, nil
}

type fakeAuth struct {
	me func(context.Context) (*domain.Identity, error)
}

func (f *fakeAuth) Login(context.Context, string, string) (*ports.AuthResponse, error) {
	return nil, domain.ErrInvalidCredentials
}
func (f *fakeAuth) Register(context.Context, ports.RegisterPayload) (*ports.AuthResponse, error) {
	return nil, domain.ErrInvalidCredentials
}
func (f *fakeAuth) Me(ctx context.Context) (*domain.Identity, error) { return f.me(ctx) }

func browserAs(t *testing.T, role domain.Role) *service.Browser {
	t.Helper()
	identity := &domain.Identity{ID: "1", Name: "Test", Role: role}
	creds := &fakeCreds{creds: &domain.Credentials{Token: "tok", Identity: identity}}
	auth := &fakeAuth{me: func(context.Context) (*domain.Identity, error) { return identity, nil }}
	store := service.NewSessionStore(creds, auth, service.BootstrapPolicy{}, zerolog.Nop())
	store.Bootstrap(context.Background())
	return &service.Browser{ID: "b-" + string(role), Session: store}
}

func anonymousBrowser(t *testing.T) *service.Browser {
	t.Helper()
	store := service.NewSessionStore(&fakeCreds{}, &fakeAuth{}, service.BootstrapPolicy{}, zerolog.Nop())
	store.Bootstrap(context.Background())
	return &service.Browser{ID: "b-anon", Session: store}
}

// loadingBrowser returns a browser whose verification is still pending and
// a function that lets it complete.
func loadingBrowser(t *testing.T) (*service.Browser, func()) {
	t.Helper()
	identity := &domain.Identity{ID: "1", Role: domain.RoleMember}
	release := make(chan struct{})
	creds := &fakeCreds{creds: &domain.Credentials{Token: "tok", Identity: identity}}
	auth := &fakeAuth{me: func(context.Context) (*domain.Identity, error) {
		<-release
		return identity, nil
	}}
	store := service.NewSessionStore(creds, auth, service.BootstrapPolicy{}, zerolog.Nop())
	store.Start(context.Background())

	var once sync.Once
	finish := func() {
		once.Do(func() {
			close(release)
			<-store.Done()
		})
	}
	t.Cleanup(finish)
	return &service.Browser{ID: "b-loading", Session: store}, finish
}
