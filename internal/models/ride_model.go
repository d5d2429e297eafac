package models

import (
	"strings"
	"time"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Default map pins used when a ride is posted without explicit coordinates.
var (
	DefaultOriginCoords      = LatLng{Lat: 17.44, Lng: 78.34}
	DefaultDestinationCoords = LatLng{Lat: 17.41, Lng: 78.44}
)

// Ride is a single offered carpool trip.
type Ride struct {
	ID                string    `json:"id"`
	Driver            User      `json:"driver"` // snapshot of the driver at posting time
	Origin            string    `json:"origin"` // one of PickupSpots
	Destination       string    `json:"destination"`
	OriginCoords      LatLng    `json:"originCoords"`
	DestinationCoords LatLng    `json:"destinationCoords"`
	DepartureTime     time.Time `json:"departureTime"`
	AvailableSeats    int       `json:"availableSeats"`
	Price             Price     `json:"price"`
	CreatedAt         time.Time `json:"createdAt"` // server-assigned, ordering only
}

// RideUpdate is a partial ride update. Nil fields are left untouched.
type RideUpdate struct {
	Origin            *string    `json:"origin,omitempty"`
	Destination       *string    `json:"destination,omitempty"`
	OriginCoords      *LatLng    `json:"originCoords,omitempty"`
	DestinationCoords *LatLng    `json:"destinationCoords,omitempty"`
	DepartureTime     *time.Time `json:"departureTime,omitempty"`
	AvailableSeats    *int       `json:"availableSeats,omitempty"`
	Price             *Price     `json:"price,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u RideUpdate) IsEmpty() bool {
	return u.Origin == nil && u.Destination == nil && u.OriginCoords == nil &&
		u.DestinationCoords == nil && u.DepartureTime == nil && u.AvailableSeats == nil && u.Price == nil
}

// Apply shallow-merges the provided fields into r.
func (u RideUpdate) Apply(r *Ride) {
	if u.Origin != nil {
		r.Origin = *u.Origin
	}
	if u.Destination != nil {
		r.Destination = *u.Destination
	}
	if u.OriginCoords != nil {
		r.OriginCoords = *u.OriginCoords
	}
	if u.DestinationCoords != nil {
		r.DestinationCoords = *u.DestinationCoords
	}
	if u.DepartureTime != nil {
		r.DepartureTime = *u.DepartureTime
	}
	if u.AvailableSeats != nil {
		r.AvailableSeats = *u.AvailableSeats
	}
	if u.Price != nil {
		r.Price = *u.Price
	}
}

// RideFilter narrows the ride list. Zero-valued fields match everything.
type RideFilter struct {
	Origin      string     // exact pickup spot
	Destination string     // case-insensitive substring
	Date        *time.Time // same calendar day, in Date's location
}

// Matches reports whether r satisfies every set criterion.
func (f RideFilter) Matches(r Ride) bool {
	if f.Origin != "" && r.Origin != f.Origin {
		return false
	}
	if f.Destination != "" && !strings.Contains(strings.ToLower(r.Destination), strings.ToLower(f.Destination)) {
		return false
	}
	if f.Date != nil {
		dy, dm, dd := f.Date.Date()
		ry, rm, rd := r.DepartureTime.In(f.Date.Location()).Date()
		if dy != ry || dm != rm || dd != rd {
			return false
		}
	}
	return true
}
