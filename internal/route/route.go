// Package route renders the line between a ride's pickup and drop-off points.
package route

import (
	"errors"
	"math"
	"sync"

	"wheelsup-backend-go/internal/models"
)

const (
	earthRadiusKm = 6371.0
	kmPerMile     = 1.609344
)

var ErrDisposed = errors.New("route renderer has been disposed")

// Renderer is the map collaborator: given two points it draws a route, and it
// must be disposed when the consumer goes away.
type Renderer interface {
	SetRoute(origin, destination models.LatLng) error
	Dispose()
}

// Route is a rendered path.
type Route struct {
	Points        []models.LatLng `json:"points"`
	DistanceKm    float64         `json:"distanceKm"`
	DistanceMiles float64         `json:"distanceMiles"`
}

// HaversineKm returns the great-circle distance between a and b.
func HaversineKm(a, b models.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceMiles is HaversineKm in miles.
func DistanceMiles(a, b models.LatLng) float64 {
	return HaversineKm(a, b) / kmPerMile
}

// StraightLine renders a straight polyline with evenly spaced points.
// It does no road routing.
type StraightLine struct {
	segments int

	mu       sync.Mutex
	route    *Route
	disposed bool
}

// NewStraightLine returns a renderer producing segments+1 points (minimum 1 segment).
func NewStraightLine(segments int) *StraightLine {
	if segments < 1 {
		segments = 1
	}
	return &StraightLine{segments: segments}
}

func (s *StraightLine) SetRoute(origin, destination models.LatLng) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	points := make([]models.LatLng, 0, s.segments+1)
	for i := 0; i <= s.segments; i++ {
		f := float64(i) / float64(s.segments)
		points = append(points, models.LatLng{
			Lat: origin.Lat + (destination.Lat-origin.Lat)*f,
			Lng: origin.Lng + (destination.Lng-origin.Lng)*f,
		})
	}
	km := HaversineKm(origin, destination)
	s.route = &Route{Points: points, DistanceKm: km, DistanceMiles: km / kmPerMile}
	return nil
}

// Route returns the last rendered route.
func (s *StraightLine) Route() (Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.route == nil || s.disposed {
		return Route{}, false
	}
	return *s.route, true
}

func (s *StraightLine) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.route = nil
}
