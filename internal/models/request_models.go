package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUnknownPickupSpot = errors.New("origin must be one of the pickup spots")
	ErrDestinationShort  = errors.New("destination must be at least 2 characters")
	ErrSeatsOutOfRange   = errors.New("available seats must be between 1 and 8")
)

// CreateRideRequest represents the request body for posting a ride.
type CreateRideRequest struct {
	Origin            string    `json:"origin" binding:"required"`
	Destination       string    `json:"destination" binding:"required"`
	OriginCoords      *LatLng   `json:"originCoords,omitempty"`
	DestinationCoords *LatLng   `json:"destinationCoords,omitempty"`
	DepartureTime     time.Time `json:"departureTime" binding:"required"`
	AvailableSeats    int       `json:"availableSeats" binding:"required"`
	Price             Price     `json:"price"`
}

// Validate applies the post-ride form rules.
func (r CreateRideRequest) Validate() error {
	if !IsPickupSpot(r.Origin) {
		return ErrUnknownPickupSpot
	}
	if len([]rune(strings.TrimSpace(r.Destination))) < 2 {
		return ErrDestinationShort
	}
	if r.AvailableSeats < 1 || r.AvailableSeats > 8 {
		return ErrSeatsOutOfRange
	}
	return r.Price.Validate()
}

// ToRide builds the ride to persist. ID and CreatedAt are left for the store.
func (r CreateRideRequest) ToRide(driver User) Ride {
	ride := Ride{
		Driver:            driver.Public(),
		Origin:            r.Origin,
		Destination:       strings.TrimSpace(r.Destination),
		OriginCoords:      DefaultOriginCoords,
		DestinationCoords: DefaultDestinationCoords,
		DepartureTime:     r.DepartureTime,
		AvailableSeats:    r.AvailableSeats,
		Price:             r.Price,
	}
	if r.OriginCoords != nil {
		ride.OriginCoords = *r.OriginCoords
	}
	if r.DestinationCoords != nil {
		ride.DestinationCoords = *r.DestinationCoords
	}
	return ride
}

// OpenConversationRequest starts (or reopens) a chat with another member.
type OpenConversationRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
	RideID        string `json:"rideId,omitempty"`
}

// SendMessageRequest represents the request body for posting a chat message.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateProfileRequest is a partial profile edit.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Vehicle   *string `json:"vehicle,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// VerifyPhoneRequest carries the phone number and the one-time code sent to it.
type VerifyPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// PriceSuggestionRequest asks for a suggested fare. Optional fields fall back
// to the same defaults the post-ride form uses.
type PriceSuggestionRequest struct {
	Origin            string     `json:"origin" binding:"required"`
	Destination       string     `json:"destination" binding:"required"`
	DistanceMiles     *float64   `json:"distanceMiles,omitempty"`
	OriginCoords      *LatLng    `json:"originCoords,omitempty"`
	DestinationCoords *LatLng    `json:"destinationCoords,omitempty"`
	DepartureTime     *time.Time `json:"departureTime,omitempty"`
	TimeOfDay         string     `json:"timeOfDay,omitempty"`
	DemandLevel       string     `json:"demandLevel,omitempty"`
}
