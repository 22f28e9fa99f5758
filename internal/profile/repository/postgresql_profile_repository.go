// Package repository provides data persistence implementations for profile entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/database"
	"github.com/talkbase/talkbase/internal/profile/domain"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// PostgreSQLProfileRepository handles profile persistence for PostgreSQL
type PostgreSQLProfileRepository struct {
	db *sql.DB
}

// NewPostgreSQLProfileRepository creates a new PostgreSQLProfileRepository
func NewPostgreSQLProfileRepository(db *sql.DB) *PostgreSQLProfileRepository {
	return &PostgreSQLProfileRepository{
		db: db,
	}
}

// Create inserts a new profile
func (r *PostgreSQLProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO profiles (id, user_id, name, lastname, birthday, profile_picture_url, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, profile.ID, profile.UserID,
		profile.Name, profile.Lastname, profile.Birthday, profile.ProfilePictureURL)
	if err != nil {
		// Check for unique constraint violation (one profile per user)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrProfileAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create profile")
	}
	return nil
}

// GetByUserID retrieves a profile by the owning user's ID
func (r *PostgreSQLProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, name, lastname, birthday, profile_picture_url, created_at, updated_at
			  FROM profiles WHERE user_id = $1`

	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.Name, &profile.Lastname,
		&profile.Birthday, &profile.ProfilePictureURL, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get profile by user id")
	}

	return &profile, nil
}

// List retrieves profiles ordered by creation time, newest first
func (r *PostgreSQLProfileRepository) List(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, name, lastname, birthday, profile_picture_url, created_at, updated_at
			  FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list profiles")
	}
	defer func() { _ = rows.Close() }()

	var profiles []*domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(
			&profile.ID, &profile.UserID, &profile.Name, &profile.Lastname,
			&profile.Birthday, &profile.ProfilePictureURL, &profile.CreatedAt, &profile.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan profile")
		}
		profiles = append(profiles, &profile)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate profiles")
	}

	return profiles, nil
}

// Update replaces the mutable fields of a profile
func (r *PostgreSQLProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE profiles
			  SET name = $1, lastname = $2, birthday = $3, profile_picture_url = $4, updated_at = NOW()
			  WHERE user_id = $5`

	result, err := querier.ExecContext(ctx, query,
		profile.Name, profile.Lastname, profile.Birthday, profile.ProfilePictureURL, profile.UserID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update profile")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
