package db

import (
	"context"
	"errors"

	"wheelsup-backend-go/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by Create when the document ID is taken.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrNoSeatsLeft is returned when a seat decrement would go below zero.
	ErrNoSeatsLeft = errors.New("no seats left")
)

// RideRepository defines storage operations for the rides collection.
type RideRepository interface {
	// Create inserts a ride with a generated ID and a server-assigned createdAt.
	Create(ctx context.Context, ride *models.Ride) (string, error)
	GetByID(ctx context.Context, rideID string) (*models.Ride, error)
	// Update writes only the fields set in update.
	Update(ctx context.Context, rideID string, update models.RideUpdate) error
	// DecrementSeats atomically takes one seat if availableSeats > 0. guard runs
	// inside the transaction against the current document and may veto the booking.
	DecrementSeats(ctx context.Context, rideID string, guard func(models.Ride) error) (*models.Ride, error)
	// Watch streams the full ride list, newest first, until ctx is done.
	Watch(ctx context.Context, onSnapshot func([]models.Ride)) error
}

// UserRepository defines storage operations for member profiles.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// AnalyticsRepository stores the cosmetic visitor counter.
type AnalyticsRepository interface {
	// VisitorCount reads the counter, initializing it to zero when missing.
	VisitorCount(ctx context.Context) (int64, error)
	// IncrementVisitors adds one and returns the new value.
	IncrementVisitors(ctx context.Context) (int64, error)
}
