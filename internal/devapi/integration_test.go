package devapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
	"github.com/grandstay/hotel-web/internal/core/service"
	"github.com/grandstay/hotel-web/internal/devapi"
	"github.com/grandstay/hotel-web/internal/infrastructure/apiclient"
	"github.com/grandstay/hotel-web/internal/infrastructure/db/memory"
)

type harness struct {
	url string
	kv  *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	e, _, err := devapi.NewServer(devapi.Config{JWTSecret: "integration", Seed: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new dev api: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &harness{url: srv.URL + "/api", kv: memory.NewStore()}
}

// registry simulates one web process sharing the harness storage.
func (h *harness) registry(t *testing.T) *service.SessionRegistry {
	t.Helper()
	client, err := apiclient.New(apiclient.Config{BaseURL: h.url, Timeout: 5 * time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	reg := service.NewSessionRegistry(h.kv, client, service.BootstrapPolicy{}, time.Hour, zerolog.Nop())
	t.Cleanup(reg.Close)
	return reg
}

func settled(t *testing.T, b *service.Browser) domain.Session {
	t.Helper()
	select {
	case <-b.Session.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("session bootstrap did not finish")
	}
	return b.Session.Snapshot()
}

func TestLogin_RestoredByNextProcess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	b := h.registry(t).Acquire("browser-1")
	if snap := settled(t, b); snap.IsAuthenticated() {
		t.Fatalf("fresh browser must be anonymous, got %+v", snap)
	}

	if res := b.Session.Login(ctx, devapi.SeedMemberEmail, "wrong"); res.Success || res.Message != "Invalid credentials" {
		t.Fatalf("unexpected result for bad password: %+v", res)
	}
	if res := b.Session.Login(ctx, devapi.SeedMemberEmail, devapi.SeedMemberPassword); !res.Success {
		t.Fatalf("login failed: %+v", res)
	}
	mine, err := b.Bookings.Mine(ctx)
	if err != nil {
		t.Fatalf("authenticated call failed: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected no bookings yet, got %d", len(mine))
	}

	again := h.registry(t).Acquire("browser-1")
	snap := settled(t, again)
	if !snap.IsAuthenticated() || snap.Stale || snap.Identity.Email != devapi.SeedMemberEmail {
		t.Fatalf("expected verified member session, got %+v", snap)
	}
}

func TestRegister_SignsInWithFollowUpLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.registry(t).Acquire("browser-2")
	settled(t, b)

	res := b.Session.Register(ctx, ports.RegisterInput{
		Name:            "Rina",
		Email:           "rina@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	if !res.Success {
		t.Fatalf("register failed: %+v", res)
	}
	snap := b.Session.Snapshot()
	if !snap.IsMember() || snap.Identity.Name != "Rina" {
		t.Fatalf("expected signed-in member, got %+v", snap)
	}

	dup := b.Session.Register(ctx, ports.RegisterInput{
		Name: "Rina", Email: "rina@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if dup.Success || dup.Message != "Email already registered" {
		t.Fatalf("expected duplicate message, got %+v", dup)
	}
}

func TestRejectedCredential_ClearsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	creds := service.NewPersistedCredentials(h.kv, "browser-3", time.Hour)
	if err := creds.Save(ctx, domain.Credentials{
		Token:    "forged",
		Identity: &domain.Identity{ID: "2", Name: "John Doe", Role: domain.RoleMember},
	}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}

	b := h.registry(t).Acquire("browser-3")
	snap := settled(t, b)
	if snap.IsAuthenticated() || snap.State != domain.StateUnauthenticated {
		t.Fatalf("expected forged credential to be discarded, got %+v", snap)
	}
	if got, err := creds.Load(ctx); err != nil || got != nil {
		t.Fatalf("expected persisted pair cleared, got %+v, %v", got, err)
	}
}

func TestAdminAPI_ForbiddenForMember(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.registry(t).Acquire("browser-4")
	settled(t, b)

	if res := b.Session.Login(ctx, devapi.SeedMemberEmail, devapi.SeedMemberPassword); !res.Success {
		t.Fatalf("login failed: %+v", res)
	}
	_, err := b.Admin.Bookings(ctx)
	if err == nil {
		t.Fatalf("expected member to be refused")
	}
	if apiclient.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if !b.Session.Snapshot().IsAuthenticated() {
		t.Fatalf("403 must not end the session")
	}
}
