package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
)

// TokenCodec issues and validates HMAC-signed access tokens.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tc *TokenCodec) {
		tc.now = now
	}
}

// NewTokenCodec builds a codec from auth configuration. Only the HS* family is accepted.
func NewTokenCodec(cfg config.AuthConfig, opts ...TokenOption) (*TokenCodec, error) {
	method, ok := jwt.GetSigningMethod(cfg.JWTAlgorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.JWTAlgorithm)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("signing secret is empty")
	}
	if cfg.AccessTokenTTLMinutes <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}

	tc := &TokenCodec{
		secret: []byte(cfg.JWTSecret),
		method: method,
		ttl:    cfg.AccessTokenTTL(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}

	tc.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		// reject signatures whose unused trailing bits are set
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return tc.now().UTC() }),
	)
	return tc, nil
}

// TTL returns the lifetime of issued tokens.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Encode signs a token for subject valid from now until now+ttl.
func (tc *TokenCodec) Encode(subject string) (string, time.Time, error) {
	issuedAt := tc.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(tc.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	tokenString, err := jwt.NewWithClaims(tc.method, claims).SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Decode validates tokenStr and returns its subject. Every failure yields
// domain.ErrInvalidToken so callers cannot tell which check rejected it.
func (tc *TokenCodec) Decode(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := tc.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
