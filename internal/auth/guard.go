package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/account-service/internal/domain"
)

// IdentityResolver maps a token subject (email) to the account it names.
// Implementations return domain.ErrNotFound for unknown subjects.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (*domain.Identity, error)
}

// Guard is the single place where bearer tokens are trusted.
type Guard struct {
	tokens   *TokenCodec
	resolver IdentityResolver
}

// NewGuard constructs a guard.
func NewGuard(tokens *TokenCodec, resolver IdentityResolver) *Guard {
	return &Guard{tokens: tokens, resolver: resolver}
}

// Authenticate validates tokenStr and resolves its subject. Token and lookup
// failures both return domain.ErrUnauthorized; store outages are returned as-is.
func (g *Guard) Authenticate(ctx context.Context, tokenStr string) (*domain.Identity, error) {
	subject, err := g.tokens.Decode(tokenStr)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if subject == "" {
		return nil, domain.ErrUnauthorized
	}

	identity, err := g.resolver.ResolveIdentity(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return identity, nil
}
