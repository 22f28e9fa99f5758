// Package token implements the session token perimeter shared by all
// services. Every service embeds its own Authority configured with the same
// secret and algorithm; there is no central introspection call. The cost is
// that secret rotation requires a coordinated redeployment.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// Domain-specific errors for token operations.
var (
	// ErrInvalidCredential indicates the token failed signature, algorithm,
	// payload or expiry checks. Callers never learn which check failed.
	ErrInvalidCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credential")

	// ErrMissingSecret indicates the authority was constructed without a signing secret.
	ErrMissingSecret = apperrors.New("token: signing secret is required")

	// ErrUnsupportedAlgorithm indicates the configured algorithm is not an HMAC method.
	ErrUnsupportedAlgorithm = apperrors.New("token: unsupported signing algorithm")
)

// Claims is the payload carried by every session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Authority issues and validates signed session tokens. It is stateless and
// safe for concurrent use.
type Authority struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock overrides the time source, used by tests to exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

// NewAuthority creates an Authority with the given symmetric secret,
// algorithm name (HS256, HS384 or HS512) and token lifetime. An empty secret
// or a non-HMAC algorithm is a startup misconfiguration and returns an error.
func NewAuthority(secret, algorithm string, ttl time.Duration, opts ...Option) (*Authority, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, apperrors.Wrap(ErrUnsupportedAlgorithm, algorithm)
	}

	authority := &Authority{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(authority)
	}

	return authority, nil
}

// Issue produces a signed token for the given subject with issuedAt = now
// and expiresAt = now + ttl. It has no side effects beyond construction.
func (a *Authority) Issue(subjectID string) (string, error) {
	now := a.now()

	claims := &Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(a.method, claims).SignedString(a.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate parses and verifies a raw token and returns its subject
// identifier. It fails with ErrInvalidCredential when the signature does not
// verify, the signing algorithm is not the configured one, the payload lacks
// the subject field, or the token is expired. HMAC verification is
// constant-time in the underlying primitive.
func (a *Authority) Validate(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{a.method.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", ErrInvalidCredential
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidCredential
	}

	return claims.UserID, nil
}

// TTL returns the configured token lifetime.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}
