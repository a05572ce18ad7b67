package ports

import (
	"context"
	"time"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// KeyValueStore is the persisted browser storage. Keys are scoped by a
// namespace (one per browser). Get reports found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, namespace, key string) (value string, found bool, err error)
	Set(ctx context.Context, namespace, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, namespace string, keys ...string) error
}

// CredentialStore reads and writes the persisted token/identity pair.
type CredentialStore interface {
	// Load returns (nil, nil) when nothing is stored and domain.ErrCorruptSession
	// when only half of the pair is present.
	Load(ctx context.Context) (*domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	SaveIdentity(ctx context.Context, identity *domain.Identity) error
	Clear(ctx context.Context) error
	// Token returns the stored bearer token or "" when absent.
	Token(ctx context.Context) (string, error)
}
