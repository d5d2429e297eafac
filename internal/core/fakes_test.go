package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"wheelsup-backend-go/internal/db"
	"wheelsup-backend-go/internal/models"
)

// fakeRideRepo is an in-memory RideRepository. Writes emit a snapshot to the
// active watcher unless quiet is set.
type fakeRideRepo struct {
	mu         sync.Mutex
	rides      map[string]models.Ride
	clock      time.Time
	seq        int
	onSnapshot func([]models.Ride)
	ready      chan struct{}
	failUpdate error
	quiet      bool
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{
		rides: make(map[string]models.Ride),
		clock: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		ready: make(chan struct{}),
	}
}

func (f *fakeRideRepo) listLocked() []models.Ride {
	out := make([]models.Ride, 0, len(f.rides))
	for _, r := range f.rides {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeRideRepo) emitLocked() {
	if f.onSnapshot != nil && !f.quiet {
		f.onSnapshot(f.listLocked())
	}
}

func (f *fakeRideRepo) Create(_ context.Context, ride *models.Ride) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.clock = f.clock.Add(time.Minute)
	r := *ride
	r.ID = fmt.Sprintf("ride_%d", f.seq)
	r.CreatedAt = f.clock
	f.rides[r.ID] = r
	f.emitLocked()
	return r.ID, nil
}

func (f *fakeRideRepo) GetByID(_ context.Context, rideID string) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRideRepo) Update(_ context.Context, rideID string, update models.RideUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return f.failUpdate
	}
	r, ok := f.rides[rideID]
	if !ok {
		return db.ErrNotFound
	}
	update.Apply(&r)
	f.rides[rideID] = r
	f.emitLocked()
	return nil
}

func (f *fakeRideRepo) DecrementSeats(_ context.Context, rideID string, guard func(models.Ride) error) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[rideID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if guard != nil {
		if err := guard(r); err != nil {
			return nil, err
		}
	}
	if r.AvailableSeats <= 0 {
		return nil, db.ErrNoSeatsLeft
	}
	r.AvailableSeats--
	f.rides[rideID] = r
	f.emitLocked()
	return &r, nil
}

func (f *fakeRideRepo) Watch(ctx context.Context, onSnapshot func([]models.Ride)) error {
	f.mu.Lock()
	f.onSnapshot = onSnapshot
	onSnapshot(f.listLocked())
	close(f.ready)
	f.mu.Unlock()

	<-ctx.Done()

	f.mu.Lock()
	f.onSnapshot = nil
	f.mu.Unlock()
	return nil
}

// seed stores a ride directly, bypassing snapshots.
func (f *fakeRideRepo) seed(r models.Ride) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rides[r.ID] = r
}

// MockUserRepository is a testify mock of db.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type fakeAnalyticsRepo struct {
	mu      sync.Mutex
	count   int64
	readErr error
	incErr  error
}

func (f *fakeAnalyticsRepo) VisitorCount(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.count, nil
}

func (f *fakeAnalyticsRepo) IncrementVisitors(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return 0, f.incErr
	}
	f.count++
	return f.count, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []models.User
	err   error
	block chan struct{} // when set, SendWelcome waits for it to close
}

func (r *recordingMailer) SendWelcome(_ context.Context, user models.User) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, user)
	return r.err
}
