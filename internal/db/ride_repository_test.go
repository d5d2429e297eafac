package db

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/models"
)

func TestRideUpdates_OnlySetFields(t *testing.T) {
	seats := 1
	price := models.FreePrice()

	updates := rideUpdates(models.RideUpdate{AvailableSeats: &seats, Price: &price})

	assert.Equal(t, []firestore.Update{
		{Path: "availableSeats", Value: 1},
		{Path: "price", Value: "Free"},
	}, updates)
	assert.Empty(t, rideUpdates(models.RideUpdate{}))
}

func TestRideDocument_RoundTrip(t *testing.T) {
	departure := time.Date(2024, 7, 20, 9, 30, 0, 0, time.UTC)
	ride := &models.Ride{
		Driver:            models.User{ID: "user_1", Name: "Arjun Reddy"},
		Origin:            "Gate 1",
		Destination:       "Banjara Hills",
		OriginCoords:      models.LatLng{Lat: 17.4401, Lng: 78.3489},
		DestinationCoords: models.LatLng{Lat: 17.4162, Lng: 78.4457},
		DepartureTime:     departure,
		AvailableSeats:    2,
		Price:             models.AmountPrice(150),
	}

	doc := newRideDocument(ride)
	assert.Equal(t, 150.0, doc.Price)
	assert.True(t, doc.CreatedAt.IsZero(), "createdAt is left to the server")

	// Firestore hands integers back as int64.
	doc.Price = int64(150)
	got, err := doc.toModel("ride_1")
	require.NoError(t, err)
	assert.Equal(t, "ride_1", got.ID)
	assert.Equal(t, models.AmountPrice(150), got.Price)
	assert.Equal(t, departure, got.DepartureTime)
}

func TestRideDocument_BadPrice(t *testing.T) {
	_, err := rideDocument{Price: true}.toModel("ride_x")
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

// emulatorRides returns a repository against the Firestore emulator, or skips
// the test when FIRESTORE_EMULATOR_HOST is not set.
func emulatorRides(t *testing.T) (RideRepository, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "wheelsup-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewFirestoreRideRepository(client, zap.NewNop()), client
}

func createEmulatorRide(t *testing.T, repo RideRepository, client *firestore.Client, seats int) string {
	t.Helper()
	id, err := repo.Create(context.Background(), &models.Ride{
		Driver:         models.User{ID: "user_1", Name: "Arjun Reddy"},
		Origin:         "Gate 1",
		Destination:    "HITEC City",
		DepartureTime:  time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
		AvailableSeats: seats,
		Price:          models.AmountPrice(80),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = client.Collection(ridesCollection).Doc(id).Delete(context.Background())
	})
	return id
}

func TestFirestoreRideRepository_DecrementSeatsLastSeat(t *testing.T) {
	repo, client := emulatorRides(t)
	ctx := context.Background()
	id := createEmulatorRide(t, repo, client, 1)

	const passengers = 10
	errs := make([]error, passengers)
	var wg sync.WaitGroup
	for i := 0; i < passengers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.DecrementSeats(ctx, id, nil)
		}(i)
	}
	wg.Wait()

	booked, refused := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		case errors.Is(err, ErrNoSeatsLeft):
			refused++
		default:
			t.Errorf("unexpected booking error: %v", err)
		}
	}
	assert.Equal(t, 1, booked)
	assert.Equal(t, passengers-1, refused)

	ride, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, ride.AvailableSeats)
}

func TestFirestoreRideRepository_DecrementSeatsGuardAndMissing(t *testing.T) {
	repo, client := emulatorRides(t)
	ctx := context.Background()
	id := createEmulatorRide(t, repo, client, 2)

	own := errors.New("own ride")
	_, err := repo.DecrementSeats(ctx, id, func(r models.Ride) error {
		if r.Driver.ID == "user_1" {
			return own
		}
		return nil
	})
	assert.ErrorIs(t, err, own)

	ride, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, ride.AvailableSeats, "vetoed booking writes nothing")

	_, err = repo.DecrementSeats(ctx, "no-such-ride", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirestoreRideRepository_WatchNewestFirst(t *testing.T) {
	repo, client := emulatorRides(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids := []string{
		createEmulatorRide(t, repo, client, 1),
		createEmulatorRide(t, repo, client, 2),
		createEmulatorRide(t, repo, client, 3),
	}

	snapshots := make(chan []models.Ride, 8)
	done := make(chan error, 1)
	go func() {
		done <- repo.Watch(ctx, func(rides []models.Ride) {
			select {
			case snapshots <- rides:
			default:
			}
		})
	}()

	// The collection may hold rides from other runs; only the relative order
	// of ours matters.
	var order []string
	for order == nil {
		select {
		case rides := <-snapshots:
			var mine []string
			for _, r := range rides {
				for _, id := range ids {
					if r.ID == id {
						mine = append(mine, id)
					}
				}
			}
			if len(mine) == len(ids) {
				order = mine
			}
		case <-ctx.Done():
			t.Fatal("no snapshot with all rides before timeout")
		}
	}
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, order)

	cancel()
	assert.NoError(t, <-done)
}
