package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/middleware"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/suggest"
)

// SessionRevoker ends a member's sessions on the auth provider. *auth.Client satisfies it.
type SessionRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// UserHandler handles profile and session endpoints.
type UserHandler struct {
	users   core.UserService
	gateway *suggest.Gateway
	revoker SessionRevoker
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users core.UserService, gateway *suggest.Gateway, revoker SessionRevoker, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, gateway: gateway, revoker: revoker, logger: logger}
}

func (h *UserHandler) mapUserErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found", Details: err.Error()})
	case errors.Is(err, core.ErrInvalidPhoneNumber), errors.Is(err, core.ErrInvalidVerificationCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("User request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred.", Details: err.Error()})
	}
}

// InitializeUserProfile handles POST /users/initialize. Clients call it after
// every sign-in so a stored profile exists for the member.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	user, created, err := h.users.GetOrCreate(c.Request.Context(), *profile)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetCurrentUserProfile handles GET /users/me
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	user, _, err := h.users.GetOrCreate(c.Request.Context(), *profile)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUserProfile handles PATCH /users/me
func (h *UserHandler) UpdateCurrentUserProfile(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if _, _, err := h.users.GetOrCreate(c.Request.Context(), *profile); err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), profile.ID, req)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// VerifyPhone handles POST /users/me/phone/verify
func (h *UserHandler) VerifyPhone(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var req models.VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if _, _, err := h.users.GetOrCreate(c.Request.Context(), *profile); err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	user, err := h.users.VerifyPhone(c.Request.Context(), profile.ID, req)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUser handles GET /users/:userId. The phone number is never exposed.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// GetUserSummary handles GET /users/:userId/summary. Generation failures
// yield the fallback summary, never an error.
func (h *UserHandler) GetUserSummary(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	summary := h.gateway.SummarizeProfile(c.Request.Context(), suggest.ProfileRequestFor(*user))
	c.JSON(http.StatusOK, ProfileSummaryResponse{ProfileSummary: summary})
}

// SignOut handles POST /auth/signout by revoking the member's refresh tokens.
func (h *UserHandler) SignOut(c *gin.Context) {
	st, _, ok := currentProfile(c)
	if !ok {
		return
	}
	if h.revoker != nil {
		if err := h.revoker.RevokeRefreshTokens(c.Request.Context(), st.Session.UID); err != nil {
			h.logger.Error("Failed to revoke refresh tokens", zap.String("uid", st.Session.UID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign out"})
			return
		}
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// CheckNavigation handles GET /navigation?path=. It reports the login redirect
// for protected paths when the caller is signed out.
func (h *UserHandler) CheckNavigation(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path query parameter is required"})
		return
	}
	target, redirect := identity.RedirectTarget(path, middleware.IdentityFrom(c))
	c.JSON(http.StatusOK, NavigationResponse{Path: path, Redirect: target, Allowed: !redirect})
}
