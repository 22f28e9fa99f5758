// Package http provides HTTP handlers for profile operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/talkbase/talkbase/internal/errors"
	"github.com/talkbase/talkbase/internal/httputil"
	"github.com/talkbase/talkbase/internal/profile/domain"
	"github.com/talkbase/talkbase/internal/profile/http/dto"
	"github.com/talkbase/talkbase/internal/profile/usecase"
	"github.com/talkbase/talkbase/internal/token"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileUseCase usecase.UseCase
	logger         *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileUseCase usecase.UseCase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		logger:         logger,
	}
}

// GetHandler retrieves a single profile by the owning user's ID.
// GET /v1/profiles/:user_id - Requires a valid session token.
func (h *ProfileHandler) GetHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, domain.ErrInvalidUserID, h.logger)
		return
	}

	profile, err := h.profileUseCase.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

// ListHandler retrieves a page of profiles.
// GET /v1/profiles?limit=&offset= - Requires a valid session token.
func (h *ProfileHandler) ListHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	profiles, err := h.profileUseCase.ListProfiles(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileListResponse(profiles))
}

// UpdateHandler replaces all mutable fields of the subject's own profile.
// PUT /v1/profiles/:user_id - Requires a valid session token; only the owner
// may update.
func (h *ProfileHandler) UpdateHandler(c *gin.Context) {
	subjectID, userID, ok := h.subjectAndTarget(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	profile, err := h.profileUseCase.UpdateProfile(
		c.Request.Context(), subjectID, userID, dto.ToUpdateProfileInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

// PatchHandler updates only the provided fields of the subject's own profile.
// PATCH /v1/profiles/:user_id - Requires a valid session token; only the
// owner may update.
func (h *ProfileHandler) PatchHandler(c *gin.Context) {
	subjectID, userID, ok := h.subjectAndTarget(c)
	if !ok {
		return
	}

	var req dto.PatchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	profile, err := h.profileUseCase.PatchProfile(
		c.Request.Context(), subjectID, userID, dto.ToPatchProfileInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

// subjectAndTarget extracts the authenticated subject and the target user ID
// from the request. It writes the error response itself when either is
// missing or malformed.
func (h *ProfileHandler) subjectAndTarget(c *gin.Context) (subjectID, userID uuid.UUID, ok bool) {
	rawSubject, found := token.GetSubject(c.Request.Context())
	if !found {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, uuid.Nil, false
	}

	subjectID, err := uuid.Parse(rawSubject)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, uuid.Nil, false
	}

	userID, err = uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, domain.ErrInvalidUserID, h.logger)
		return uuid.Nil, uuid.Nil, false
	}

	return subjectID, userID, true
}
