package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("error becomes ErrInvalidInput", func(t *testing.T) {
		err := WrapValidationError(apperrors.New("name is required"))
		assert.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "SecurePass123!", false},
		{"too short", "Sp1!", true},
		{"missing uppercase", "securepass123!", true},
		{"missing lowercase", "SECUREPASS123!", true},
		{"missing number", "SecurePass!", true},
		{"missing special", "SecurePass123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("non-string value", func(t *testing.T) {
		assert.Error(t, rule.Validate(42))
	})
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email.Validate("john@example.com"))
	assert.Error(t, Email.Validate("not-an-email"))
	assert.Error(t, Email.Validate("missing@tld"))
}

func TestUsername(t *testing.T) {
	assert.NoError(t, Username.Validate("john.doe-42_x"))
	assert.Error(t, Username.Validate("john doe"))
	assert.Error(t, Username.Validate("john@doe"))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate("   "))
}
