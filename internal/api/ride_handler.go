package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/route"
)

const routeSegments = 32

// RideHandler handles API endpoints related to rides.
type RideHandler struct {
	rides  core.RideService
	users  core.UserService
	loc    *time.Location // calendar days for the date filter
	logger *zap.Logger
}

// NewRideHandler creates a new RideHandler. A nil loc means UTC.
func NewRideHandler(rides core.RideService, users core.UserService, loc *time.Location, logger *zap.Logger) *RideHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RideHandler{rides: rides, users: users, loc: loc, logger: logger}
}

// mapRideErrorToStatus maps errors from core.RideService to HTTP status codes and ErrorResponse.
func (h *RideHandler) mapRideErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrRideNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrRideNotFound.Error()}
	case errors.Is(err, core.ErrNoSeatsAvailable):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrNoSeatsAvailable.Error()}
	case errors.Is(err, core.ErrOwnRide):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrOwnRide.Error()}
	case errors.Is(err, core.ErrInvalidSeats), errors.Is(err, core.ErrEmptyUpdate), errors.Is(err, models.ErrInvalidPrice):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid ride update", Details: err.Error()}
	default:
		h.logger.Error("Ride request failed", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred.", Details: err.Error()}
	}
	c.JSON(statusCode, errResponse)
}

// ListRides handles GET /rides. Optional filters: origin, destination, date (YYYY-MM-DD).
func (h *RideHandler) ListRides(c *gin.Context) {
	filter := models.RideFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	if raw := c.Query("date"); raw != "" {
		// The day is the member's calendar day, not UTC's.
		day, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be formatted as YYYY-MM-DD", Details: err.Error()})
			return
		}
		filter.Date = &day
	}

	if filter == (models.RideFilter{}) {
		c.JSON(http.StatusOK, h.rides.ListRides())
		return
	}
	c.JSON(http.StatusOK, h.rides.SearchRides(filter))
}

// GetRide handles GET /rides/:rideId
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rides.GetRide(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

// CreateRide handles POST /rides. The signed-in member becomes the driver.
func (h *RideHandler) CreateRide(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req models.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid ride", Details: err.Error()})
		return
	}

	driver, _, err := h.users.GetOrCreate(c.Request.Context(), *profile)
	if err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}

	id, err := h.rides.AddRide(c.Request.Context(), req.ToRide(*driver))
	if err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedIDResponse{ID: id})
}

// UpdateRide handles PATCH /rides/:rideId. Only the driver may edit a ride.
func (h *RideHandler) UpdateRide(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	rideID := c.Param("rideId")

	var update models.RideUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBindError(c, err)
		return
	}
	if update.Origin != nil && !models.IsPickupSpot(*update.Origin) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid ride update", Details: models.ErrUnknownPickupSpot.Error()})
		return
	}

	ride, err := h.rides.GetRide(c.Request.Context(), rideID)
	if err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}
	if ride.Driver.ID != profile.ID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only the driver can edit this ride"})
		return
	}

	if err := h.rides.UpdateRide(c.Request.Context(), rideID, update); err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Ride updated"})
}

// BookSeat handles POST /rides/:rideId/book
func (h *RideHandler) BookSeat(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	ride, err := h.rides.BookSeat(c.Request.Context(), c.Param("rideId"), profile.ID)
	if err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

// GetRoute handles GET /rides/:rideId/route
func (h *RideHandler) GetRoute(c *gin.Context) {
	ride, err := h.rides.GetRide(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}

	renderer := route.NewStraightLine(routeSegments)
	defer renderer.Dispose()
	if err := renderer.SetRoute(ride.OriginCoords, ride.DestinationCoords); err != nil {
		h.mapRideErrorToStatus(c, err)
		return
	}
	rendered, _ := renderer.Route()
	c.JSON(http.StatusOK, rendered)
}

// ListPickupSpots handles GET /pickup-spots
func ListPickupSpots(c *gin.Context) {
	c.JSON(http.StatusOK, PickupSpotsResponse{PickupSpots: models.PickupSpots})
}
