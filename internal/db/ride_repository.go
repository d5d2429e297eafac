package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"wheelsup-backend-go/internal/models"
)

const ridesCollection = "rides"

// bookingMaxAttempts bounds transaction retries when many passengers race for
// the same ride.
const bookingMaxAttempts = 20

// rideDocument is the stored shape of a ride. Price holds either the string
// "Free" or a number, so it is decoded through models.PriceFromValue.
type rideDocument struct {
	Driver            models.User   `firestore:"driver"`
	Origin            string        `firestore:"origin"`
	Destination       string        `firestore:"destination"`
	OriginCoords      models.LatLng `firestore:"originCoords"`
	DestinationCoords models.LatLng `firestore:"destinationCoords"`
	DepartureTime     time.Time     `firestore:"departureTime"`
	AvailableSeats    int           `firestore:"availableSeats"`
	Price             interface{}   `firestore:"price"`
	CreatedAt         time.Time     `firestore:"createdAt,serverTimestamp"`
}

func newRideDocument(r *models.Ride) rideDocument {
	return rideDocument{
		Driver:            r.Driver,
		Origin:            r.Origin,
		Destination:       r.Destination,
		OriginCoords:      r.OriginCoords,
		DestinationCoords: r.DestinationCoords,
		DepartureTime:     r.DepartureTime,
		AvailableSeats:    r.AvailableSeats,
		Price:             r.Price.StoredValue(),
	}
}

func (d rideDocument) toModel(id string) (models.Ride, error) {
	price, err := models.PriceFromValue(d.Price)
	if err != nil {
		return models.Ride{}, fmt.Errorf("ride '%s': %w", id, err)
	}
	return models.Ride{
		ID:                id,
		Driver:            d.Driver,
		Origin:            d.Origin,
		Destination:       d.Destination,
		OriginCoords:      d.OriginCoords,
		DestinationCoords: d.DestinationCoords,
		DepartureTime:     d.DepartureTime,
		AvailableSeats:    d.AvailableSeats,
		Price:             price,
		CreatedAt:         d.CreatedAt,
	}, nil
}

// rideUpdates translates a partial update into Firestore field paths.
func rideUpdates(u models.RideUpdate) []firestore.Update {
	var updates []firestore.Update
	if u.Origin != nil {
		updates = append(updates, firestore.Update{Path: "origin", Value: *u.Origin})
	}
	if u.Destination != nil {
		updates = append(updates, firestore.Update{Path: "destination", Value: *u.Destination})
	}
	if u.OriginCoords != nil {
		updates = append(updates, firestore.Update{Path: "originCoords", Value: *u.OriginCoords})
	}
	if u.DestinationCoords != nil {
		updates = append(updates, firestore.Update{Path: "destinationCoords", Value: *u.DestinationCoords})
	}
	if u.DepartureTime != nil {
		updates = append(updates, firestore.Update{Path: "departureTime", Value: *u.DepartureTime})
	}
	if u.AvailableSeats != nil {
		updates = append(updates, firestore.Update{Path: "availableSeats", Value: *u.AvailableSeats})
	}
	if u.Price != nil {
		updates = append(updates, firestore.Update{Path: "price", Value: u.Price.StoredValue()})
	}
	return updates
}

// firestoreRideRepository implements RideRepository using Firestore.
type firestoreRideRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRideRepository creates a ride repository over the given client.
func NewFirestoreRideRepository(client *firestore.Client, logger *zap.Logger) RideRepository {
	if client == nil {
		panic("Firestore client is not initialized for RideRepository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreRideRepository{client: client, logger: logger}
}

func decodeRide(snap *firestore.DocumentSnapshot) (models.Ride, error) {
	var doc rideDocument
	if err := snap.DataTo(&doc); err != nil {
		return models.Ride{}, fmt.Errorf("failed to decode ride data for ID '%s': %w", snap.Ref.ID, err)
	}
	return doc.toModel(snap.Ref.ID)
}

// Create adds a new ride document with an auto-generated ID.
func (r *firestoreRideRepository) Create(ctx context.Context, ride *models.Ride) (string, error) {
	docRef := r.client.Collection(ridesCollection).NewDoc()
	if _, err := docRef.Create(ctx, newRideDocument(ride)); err != nil {
		return "", fmt.Errorf("failed to create ride: %w", err)
	}
	ride.ID = docRef.ID
	return docRef.ID, nil
}

// GetByID retrieves a ride by document ID.
func (r *firestoreRideRepository) GetByID(ctx context.Context, rideID string) (*models.Ride, error) {
	if rideID == "" {
		return nil, errors.New("rideID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(ridesCollection).Doc(rideID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("ride with ID '%s' not found: %w", rideID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ride with ID '%s': %w", rideID, err)
	}
	ride, err := decodeRide(snap)
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// Update writes the provided fields only. Missing documents yield ErrNotFound.
func (r *firestoreRideRepository) Update(ctx context.Context, rideID string, update models.RideUpdate) error {
	if rideID == "" {
		return errors.New("rideID cannot be empty for Update operation")
	}
	updates := rideUpdates(update)
	if len(updates) == 0 {
		return nil
	}
	_, err := r.client.Collection(ridesCollection).Doc(rideID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("ride with ID '%s' not found for update: %w", rideID, ErrNotFound)
		}
		return fmt.Errorf("failed to update ride with ID '%s': %w", rideID, err)
	}
	return nil
}

// DecrementSeats books one seat inside a transaction.
func (r *firestoreRideRepository) DecrementSeats(ctx context.Context, rideID string, guard func(models.Ride) error) (*models.Ride, error) {
	if rideID == "" {
		return nil, errors.New("rideID cannot be empty for DecrementSeats operation")
	}
	ref := r.client.Collection(ridesCollection).Doc(rideID)

	var booked models.Ride
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("ride with ID '%s' not found: %w", rideID, ErrNotFound)
			}
			return err
		}
		ride, err := decodeRide(snap)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ride); err != nil {
				return err
			}
		}
		if ride.AvailableSeats <= 0 {
			return fmt.Errorf("ride with ID '%s': %w", rideID, ErrNoSeatsLeft)
		}
		ride.AvailableSeats--
		booked = ride
		return tx.Update(ref, []firestore.Update{{Path: "availableSeats", Value: ride.AvailableSeats}})
	}, firestore.MaxAttempts(bookingMaxAttempts))
	if err != nil {
		return nil, err
	}
	return &booked, nil
}

// Watch runs a live query over the rides collection ordered by createdAt descending
// and hands every snapshot to onSnapshot. It returns nil once ctx is cancelled.
func (r *firestoreRideRepository) Watch(ctx context.Context, onSnapshot func([]models.Ride)) error {
	it := r.client.Collection(ridesCollection).OrderBy("createdAt", firestore.Desc).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || err == iterator.Done || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("ride live query failed: %w", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("failed to read ride snapshot: %w", err)
		}
		rides := make([]models.Ride, 0, len(docs))
		for _, doc := range docs {
			ride, err := decodeRide(doc)
			if err != nil {
				r.logger.Warn("Skipping undecodable ride document", zap.String("rideID", doc.Ref.ID), zap.Error(err))
				continue
			}
			rides = append(rides, ride)
		}
		onSnapshot(rides)
	}
}
