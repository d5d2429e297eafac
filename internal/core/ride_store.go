package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"wheelsup-backend-go/internal/db"
	"wheelsup-backend-go/internal/events"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/observability"
)

// RideStore owns the ride read model. The model is replaced by every live
// snapshot from the repository and mirrors successful local updates in between.
type RideStore struct {
	repo      db.RideRepository
	publisher events.Publisher
	logger    *zap.Logger

	mu      sync.RWMutex
	rides   []models.Ride // createdAt descending
	subs    map[uint64]*rideSubscriber
	nextSub uint64
}

// rideSubscriber holds at most one pending snapshot; a newer one replaces it.
type rideSubscriber struct {
	ch chan []models.Ride
}

func (s *rideSubscriber) offer(snap []models.Ride) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

// NewRideStore creates a store over repo. Call Run to start the live subscription.
func NewRideStore(repo db.RideRepository, publisher events.Publisher, logger *zap.Logger) *RideStore {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RideStore{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		rides:     []models.Ride{},
		subs:      make(map[uint64]*rideSubscriber),
	}
}

// Run keeps the read model in sync with the rides collection until ctx is done.
func (s *RideStore) Run(ctx context.Context) error {
	s.logger.Info("Ride live subscription started")
	err := s.repo.Watch(ctx, s.replace)
	s.logger.Info("Ride live subscription stopped", zap.Error(err))
	return err
}

func (s *RideStore) replace(rides []models.Ride) {
	next := append([]models.Ride(nil), rides...)
	sort.SliceStable(next, func(i, j int) bool { return next[i].CreatedAt.After(next[j].CreatedAt) })

	s.mu.Lock()
	s.rides = next
	s.broadcastLocked()
	s.mu.Unlock()

	observability.RideSnapshotSize.Set(float64(len(next)))
}

func (s *RideStore) snapshotLocked() []models.Ride {
	return append([]models.Ride{}, s.rides...)
}

func (s *RideStore) broadcastLocked() {
	for _, sub := range s.subs {
		sub.offer(s.snapshotLocked())
	}
}

func (s *RideStore) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		observability.EventPublishFailures.WithLabelValues(evt.Type).Inc()
		s.logger.Warn("Failed to publish event", zap.String("type", evt.Type), zap.String("key", evt.Key), zap.Error(err))
	}
}

// ListRides returns the current read model, newest first.
func (s *RideStore) ListRides() []models.Ride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// SearchRides filters the read model.
func (s *RideStore) SearchRides(filter models.RideFilter) []models.Ride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Ride{}
	for _, r := range s.rides {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// GetRide reads from the read model, falling back to the repository.
func (s *RideStore) GetRide(ctx context.Context, rideID string) (models.Ride, error) {
	s.mu.RLock()
	for _, r := range s.rides {
		if r.ID == rideID {
			s.mu.RUnlock()
			return r, nil
		}
	}
	s.mu.RUnlock()

	ride, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Ride{}, fmt.Errorf("%w: %s", ErrRideNotFound, rideID)
		}
		return models.Ride{}, fmt.Errorf("failed to get ride '%s': %w", rideID, err)
	}
	return *ride, nil
}

// Subscribe registers a live consumer. The channel first carries the current
// list; slow consumers only see the newest pending list. The channel is closed
// on unsubscribe, which happens once ctx is done or the returned func runs.
func (s *RideStore) Subscribe(ctx context.Context) (<-chan []models.Ride, func()) {
	sub := &rideSubscriber{ch: make(chan []models.Ride, 1)}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	sub.offer(s.snapshotLocked())
	s.mu.Unlock()
	observability.LiveSubscribers.Inc()

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(sub.ch)
			s.mu.Unlock()
			close(done)
			observability.LiveSubscribers.Dec()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()

	return sub.ch, unsubscribe
}

// AddRide persists a new ride. The read model picks it up from the next snapshot.
func (s *RideStore) AddRide(ctx context.Context, ride models.Ride) (string, error) {
	id, err := s.repo.Create(ctx, &ride)
	if err != nil {
		return "", fmt.Errorf("failed to add ride: %w", err)
	}
	ride.ID = id
	observability.RidesPostedTotal.Inc()
	s.publish(ctx, events.New(events.RidePosted, id, ride))
	return id, nil
}

// UpdateRide persists a partial update, then shallow-merges it into the read
// model. No version check is made: the last writer wins.
func (s *RideStore) UpdateRide(ctx context.Context, rideID string, update models.RideUpdate) error {
	if update.IsEmpty() {
		return ErrEmptyUpdate
	}
	if update.AvailableSeats != nil && *update.AvailableSeats < 0 {
		return ErrInvalidSeats
	}
	if update.Price != nil {
		if err := update.Price.Validate(); err != nil {
			return err
		}
	}

	if err := s.repo.Update(ctx, rideID, update); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRideNotFound, rideID)
		}
		return fmt.Errorf("failed to update ride '%s': %w", rideID, err)
	}

	s.mu.Lock()
	for i := range s.rides {
		if s.rides[i].ID == rideID {
			update.Apply(&s.rides[i])
			s.broadcastLocked()
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, events.New(events.RideUpdated, rideID, update))
	return nil
}

// SeatBooking is the payload of a seat-booked event.
type SeatBooking struct {
	RideID         string `json:"rideId"`
	PassengerID    string `json:"passengerId"`
	DriverID       string `json:"driverId"`
	AvailableSeats int    `json:"availableSeats"`
}

// BookSeat takes one seat atomically. It fails with ErrNoSeatsAvailable when the
// ride is full and with ErrOwnRide when the passenger is the driver.
func (s *RideStore) BookSeat(ctx context.Context, rideID, passengerID string) (models.Ride, error) {
	booked, err := s.repo.DecrementSeats(ctx, rideID, func(r models.Ride) error {
		if r.Driver.ID == passengerID {
			return ErrOwnRide
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrOwnRide):
			observability.BookingRejections.WithLabelValues("own_ride").Inc()
			return models.Ride{}, ErrOwnRide
		case errors.Is(err, db.ErrNoSeatsLeft):
			observability.BookingRejections.WithLabelValues("full").Inc()
			return models.Ride{}, fmt.Errorf("%w: %s", ErrNoSeatsAvailable, rideID)
		case errors.Is(err, db.ErrNotFound):
			return models.Ride{}, fmt.Errorf("%w: %s", ErrRideNotFound, rideID)
		default:
			return models.Ride{}, fmt.Errorf("failed to book seat on ride '%s': %w", rideID, err)
		}
	}

	s.mu.Lock()
	for i := range s.rides {
		if s.rides[i].ID == rideID {
			s.rides[i].AvailableSeats = booked.AvailableSeats
			s.broadcastLocked()
			break
		}
	}
	s.mu.Unlock()

	observability.SeatsBookedTotal.Inc()
	s.publish(ctx, events.New(events.SeatBooked, rideID, SeatBooking{
		RideID:         rideID,
		PassengerID:    passengerID,
		DriverID:       booked.Driver.ID,
		AvailableSeats: booked.AvailableSeats,
	}))
	return *booked, nil
}
