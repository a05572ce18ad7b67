package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// PersistedCredentials stores the token/identity pair of one browser in a
// KeyValueStore under that browser's namespace.
type PersistedCredentials struct {
	kv        ports.KeyValueStore
	namespace string
	ttl       time.Duration
}

var _ ports.CredentialStore = (*PersistedCredentials)(nil)

// NewPersistedCredentials scopes kv to namespace. A ttl of zero keeps keys
// until they are cleared.
func NewPersistedCredentials(kv ports.KeyValueStore, namespace string, ttl time.Duration) *PersistedCredentials {
	return &PersistedCredentials{kv: kv, namespace: namespace, ttl: ttl}
}

func (p *PersistedCredentials) Load(ctx context.Context) (*domain.Credentials, error) {
	token, hasToken, err := p.kv.Get(ctx, p.namespace, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	raw, hasUser, err := p.kv.Get(ctx, p.namespace, userKey)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	switch {
	case !hasToken && !hasUser:
		return nil, nil
	case !hasToken || !hasUser || token == "":
		return nil, domain.ErrCorruptSession
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptSession, err)
	}
	return &domain.Credentials{Token: token, Identity: &identity}, nil
}

func (p *PersistedCredentials) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.Token == "" || creds.Identity == nil {
		return fmt.Errorf("save credentials: %w", domain.ErrCorruptSession)
	}
	raw, err := json.Marshal(creds.Identity)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := p.kv.Set(ctx, p.namespace, tokenKey, creds.Token, p.ttl); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := p.kv.Set(ctx, p.namespace, userKey, string(raw), p.ttl); err != nil {
		// keep the pair consistent
		_ = p.kv.Delete(ctx, p.namespace, tokenKey)
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// SaveIdentity replaces the stored identity and renews the expiry of both
// keys, so the pair always expires together.
func (p *PersistedCredentials) SaveIdentity(ctx context.Context, identity *domain.Identity) error {
	token, ok, err := p.kv.Get(ctx, p.namespace, tokenKey)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return fmt.Errorf("save identity: %w", domain.ErrCorruptSession)
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := p.kv.Set(ctx, p.namespace, userKey, string(raw), p.ttl); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	if err := p.kv.Set(ctx, p.namespace, tokenKey, token, p.ttl); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (p *PersistedCredentials) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, p.namespace, tokenKey, userKey)
}

func (p *PersistedCredentials) Token(ctx context.Context) (string, error) {
	token, _, err := p.kv.Get(ctx, p.namespace, tokenKey)
	return token, err
}
