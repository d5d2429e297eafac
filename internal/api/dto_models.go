package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/middleware"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/suggest"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondBindError writes a 400 for a payload that failed to decode or bind.
// Validation failures are reported per field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: strings.Join(fields, "; ")})
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CreatedIDResponse is returned when a resource is created with a generated ID.
type CreatedIDResponse struct {
	ID string `json:"id"`
}

// PriceSuggestionResponse wraps an optional fare suggestion. Suggestion is null
// when none could be generated.
type PriceSuggestionResponse struct {
	Suggestion *suggest.PriceSuggestion `json:"suggestion"`
}

// ProfileSummaryResponse carries a generated profile blurb.
type ProfileSummaryResponse struct {
	ProfileSummary string `json:"profileSummary"`
}

// VisitorCountResponse carries the cosmetic visitor count.
type VisitorCountResponse struct {
	VisitorCount int64 `json:"visitorCount"`
}

// NavigationResponse reports where a client should go for a requested path.
type NavigationResponse struct {
	Path     string `json:"path"`
	Redirect string `json:"redirect,omitempty"`
	Allowed  bool   `json:"allowed"`
}

// PickupSpotsResponse lists the fixed campus pickup points.
type PickupSpotsResponse struct {
	PickupSpots []string `json:"pickupSpots"`
}

// currentProfile returns the signed-in member's resolved profile, writing a
// 401 when the request carries no identity.
func currentProfile(c *gin.Context) (identity.State, *models.User, bool) {
	st := middleware.IdentityFrom(c)
	if !st.SignedIn() || st.Profile == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return st, nil, false
	}
	return st, st.Profile, true
}
