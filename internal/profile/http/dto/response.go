// Package dto provides data transfer objects for the profile HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/profile/domain"
)

// ProfileResponse represents the API response for a profile
type ProfileResponse struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Name              *string   `json:"name"`
	Lastname          *string   `json:"lastname"`
	Birthday          *string   `json:"birthday"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProfileListResponse represents a page of profiles
type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

// ToProfileResponse converts a domain Profile model to a ProfileResponse DTO
func ToProfileResponse(profile *domain.Profile) ProfileResponse {
	var birthday *string
	if profile.Birthday != nil {
		formatted := profile.Birthday.Format(birthdayLayout)
		birthday = &formatted
	}

	return ProfileResponse{
		ID:                profile.ID,
		UserID:            profile.UserID,
		Name:              profile.Name,
		Lastname:          profile.Lastname,
		Birthday:          birthday,
		ProfilePictureURL: profile.ProfilePictureURL,
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         profile.UpdatedAt,
	}
}

// ToProfileListResponse converts a slice of domain profiles to a ProfileListResponse DTO
func ToProfileListResponse(profiles []*domain.Profile) ProfileListResponse {
	response := ProfileListResponse{Profiles: make([]ProfileResponse, 0, len(profiles))}
	for _, profile := range profiles {
		response.Profiles = append(response.Profiles, ToProfileResponse(profile))
	}
	return response
}
