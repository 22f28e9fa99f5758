package token

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// PasswordHasher is the password capability used by the auth service.
// Plaintext passwords are hashed before storage and never logged.
type PasswordHasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordHasher creates a PasswordHasher with the interactive Argon2id policy.
func NewPasswordHasher() (*PasswordHasher, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &PasswordHasher{hasher: hasher}, nil
}

// Hash produces a storable digest of the plaintext password.
func (p *PasswordHasher) Hash(plain string) (string, error) {
	digest, err := p.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return digest, nil
}

// Verify reports whether plain matches the stored digest. Comparison is
// constant-time in the underlying primitive.
func (p *PasswordHasher) Verify(plain, digest string) bool {
	ok, err := p.hasher.Verify([]byte(plain), digest)
	if err != nil {
		return false
	}
	return ok
}
