// Package dto provides data transfer objects for the profile HTTP layer.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/talkbase/talkbase/internal/errors"
	"github.com/talkbase/talkbase/internal/profile/usecase"
	appValidation "github.com/talkbase/talkbase/internal/validation"
)

// birthdayLayout is the wire format for the birthday field.
const birthdayLayout = "2006-01-02"

// UpdateProfileRequest represents the API request for a full profile update.
// Absent fields are cleared.
type UpdateProfileRequest struct {
	Name              *string `json:"name"`
	Lastname          *string `json:"lastname"`
	Birthday          *string `json:"birthday"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// Validate validates the UpdateProfileRequest
func (r *UpdateProfileRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Length(0, 120).Error("name must be at most 120 characters")),
		validation.Field(&r.Lastname, validation.Length(0, 120).Error("lastname must be at most 120 characters")),
		validation.Field(&r.ProfilePictureURL,
			validation.Length(0, 2048).Error("profile_picture_url must be at most 2048 characters"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	return validateBirthday(r.Birthday)
}

// PatchProfileRequest represents the API request for a partial profile
// update. Nil fields are left unchanged.
type PatchProfileRequest struct {
	Name              *string `json:"name"`
	Lastname          *string `json:"lastname"`
	Birthday          *string `json:"birthday"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// Validate validates the PatchProfileRequest
func (r *PatchProfileRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Length(0, 120).Error("name must be at most 120 characters")),
		validation.Field(&r.Lastname, validation.Length(0, 120).Error("lastname must be at most 120 characters")),
		validation.Field(&r.ProfilePictureURL,
			validation.Length(0, 2048).Error("profile_picture_url must be at most 2048 characters"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	return validateBirthday(r.Birthday)
}

func validateBirthday(birthday *string) error {
	if birthday == nil {
		return nil
	}
	if _, err := time.Parse(birthdayLayout, *birthday); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "birthday must use the YYYY-MM-DD format")
	}
	return nil
}

func parseBirthday(birthday *string) *time.Time {
	if birthday == nil {
		return nil
	}
	parsed, err := time.Parse(birthdayLayout, *birthday)
	if err != nil {
		return nil
	}
	return &parsed
}

// ToUpdateProfileInput converts an UpdateProfileRequest DTO to a use case input
func ToUpdateProfileInput(req UpdateProfileRequest) usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		Name:              req.Name,
		Lastname:          req.Lastname,
		Birthday:          parseBirthday(req.Birthday),
		ProfilePictureURL: req.ProfilePictureURL,
	}
}

// ToPatchProfileInput converts a PatchProfileRequest DTO to a use case input
func ToPatchProfileInput(req PatchProfileRequest) usecase.PatchProfileInput {
	return usecase.PatchProfileInput{
		Name:              req.Name,
		Lastname:          req.Lastname,
		Birthday:          parseBirthday(req.Birthday),
		ProfilePictureURL: req.ProfilePictureURL,
	}
}
