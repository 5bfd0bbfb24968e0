package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
)

const identityKeyPrefix = "identity:"

type identityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (*domain.Identity, error)
}

// StoreResolver resolves token subjects straight from the user store.
type StoreResolver struct {
	users UserRepository
}

// NewStoreResolver constructs a resolver over users.
func NewStoreResolver(users UserRepository) *StoreResolver {
	return &StoreResolver{users: users}
}

// ResolveIdentity looks email up and returns its public projection.
func (r *StoreResolver) ResolveIdentity(ctx context.Context, email string) (*domain.Identity, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// CachedResolver keeps resolved identities in Redis for a short TTL. Only the
// id and email are cached; unknown subjects are never cached.
type CachedResolver struct {
	next   identityResolver
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

type cachedIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewCachedResolver wraps next with a Redis read-through cache.
func NewCachedResolver(next identityResolver, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedResolver {
	return &CachedResolver{next: next, client: client, ttl: ttl, logger: logger}
}

// ResolveIdentity serves from cache when possible. Redis failures fall back to
// the wrapped resolver.
func (r *CachedResolver) ResolveIdentity(ctx context.Context, email string) (*domain.Identity, error) {
	key := identityKeyPrefix + email

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedIdentity
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && cached.Email == email {
			return &domain.Identity{ID: cached.ID, Email: cached.Email}, nil
		}
		r.logger.Warn("discarding unreadable identity cache entry")
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("identity cache read failed", zap.Error(err))
	}

	identity, err := r.next.ResolveIdentity(ctx, email)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedIdentity{ID: identity.ID, Email: identity.Email})
	if err == nil {
		err = r.client.Set(ctx, key, payload, r.ttl).Err()
	}
	if err != nil {
		r.logger.Warn("identity cache write failed", zap.Error(err))
	}
	return identity, nil
}
