package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/route"
	"wheelsup-backend-go/internal/suggest"
)

// SuggestionHandler exposes the fare suggestion.
type SuggestionHandler struct {
	gateway *suggest.Gateway
	loc     *time.Location
}

// NewSuggestionHandler creates a new SuggestionHandler. A nil loc means UTC.
func NewSuggestionHandler(gateway *suggest.Gateway, loc *time.Location) *SuggestionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SuggestionHandler{gateway: gateway, loc: loc}
}

// PriceRequestFrom fills the defaults the post-ride form would send. Distance
// comes from the coordinates when both are given, then from the client value.
// The time of day is read in loc (UTC when nil).
func PriceRequestFrom(req models.PriceSuggestionRequest, loc *time.Location) suggest.PriceRequest {
	out := suggest.PriceRequest{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DistanceMiles: suggest.DefaultDistanceMiles,
		TimeOfDay:     req.TimeOfDay,
		DemandLevel:   req.DemandLevel,
	}
	switch {
	case req.OriginCoords != nil && req.DestinationCoords != nil:
		out.DistanceMiles = route.DistanceMiles(*req.OriginCoords, *req.DestinationCoords)
	case req.DistanceMiles != nil && *req.DistanceMiles > 0:
		out.DistanceMiles = *req.DistanceMiles
	}
	if loc == nil {
		loc = time.UTC
	}
	if out.TimeOfDay == "" && req.DepartureTime != nil {
		out.TimeOfDay = suggest.TimeOfDay(req.DepartureTime.In(loc).Hour())
	}
	if out.DemandLevel == "" {
		out.DemandLevel = suggest.DefaultDemandLevel
	}
	return out
}

// SuggestPrice handles POST /suggestions/price. A missing suggestion is
// reported as a null value, not an error.
func (h *SuggestionHandler) SuggestPrice(c *gin.Context) {
	var req models.PriceSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	suggestion := h.gateway.SuggestPrice(c.Request.Context(), PriceRequestFrom(req, h.loc))
	c.JSON(http.StatusOK, PriceSuggestionResponse{Suggestion: suggestion})
}

// VisitorIDHeader identifies a browser for the visitor counter.
const VisitorIDHeader = "X-Visitor-ID"

// AnalyticsHandler exposes the visitor counter.
type AnalyticsHandler struct {
	analytics core.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics core.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RecordVisit handles POST /analytics/visit
func (h *AnalyticsHandler) RecordVisit(c *gin.Context) {
	count := h.analytics.RecordVisit(c.Request.Context(), c.GetHeader(VisitorIDHeader))
	c.JSON(http.StatusOK, VisitorCountResponse{VisitorCount: count})
}
