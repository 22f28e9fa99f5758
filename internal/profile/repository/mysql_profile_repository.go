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

// MySQLProfileRepository handles profile persistence for MySQL
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQLProfileRepository
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{
		db: db,
	}
}

// Create inserts a new profile
func (r *MySQLProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO profiles (id, user_id, name, lastname, birthday, profile_picture_url, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := profile.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userIDBytes, err := profile.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, userIDBytes,
		profile.Name, profile.Lastname, profile.Birthday, profile.ProfilePictureURL)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrProfileAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create profile")
	}
	return nil
}

// GetByUserID retrieves a profile by the owning user's ID
func (r *MySQLProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, name, lastname, birthday, profile_picture_url, created_at, updated_at
			  FROM profiles WHERE user_id = ?`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	return scanMySQLProfile(querier.QueryRowContext(ctx, query, userIDBytes))
}

// List retrieves profiles ordered by creation time, newest first
func (r *MySQLProfileRepository) List(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, name, lastname, birthday, profile_picture_url, created_at, updated_at
			  FROM profiles ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list profiles")
	}
	defer func() { _ = rows.Close() }()

	var profiles []*domain.Profile
	for rows.Next() {
		var profile domain.Profile
		var idBytes, userIDBytes []byte
		if err := rows.Scan(
			&idBytes, &userIDBytes, &profile.Name, &profile.Lastname,
			&profile.Birthday, &profile.ProfilePictureURL, &profile.CreatedAt, &profile.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan profile")
		}
		if err := profile.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		if err := profile.UserID.UnmarshalBinary(userIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		profiles = append(profiles, &profile)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate profiles")
	}

	return profiles, nil
}

// Update replaces the mutable fields of a profile
func (r *MySQLProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE profiles
			  SET name = ?, lastname = ?, birthday = ?, profile_picture_url = ?, updated_at = NOW()
			  WHERE user_id = ?`

	userIDBytes, err := profile.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query,
		profile.Name, profile.Lastname, profile.Birthday, profile.ProfilePictureURL, userIDBytes)
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

// scanMySQLProfile scans a single profile row, converting BINARY(16) ids back to UUIDs
func scanMySQLProfile(row *sql.Row) (*domain.Profile, error) {
	var profile domain.Profile
	var idBytes, userIDBytes []byte

	err := row.Scan(
		&idBytes, &userIDBytes, &profile.Name, &profile.Lastname,
		&profile.Birthday, &profile.ProfilePictureURL, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get profile")
	}

	if err := profile.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := profile.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &profile, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "error 1062")
}
