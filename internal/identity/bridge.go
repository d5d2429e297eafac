package identity

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Bridge turns a stream of session changes into published identity states.
// Events are applied one at a time and each fully replaces the previous state.
// Subscribers run synchronously in subscription order and must not call Apply.
type Bridge struct {
	dir    Directory
	now    func() time.Time
	logger *zap.Logger

	applyMu sync.Mutex

	mu     sync.RWMutex
	state  State
	subs   map[uint64]func(State)
	nextID uint64
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithClock overrides the bootstrap clock.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// NewBridge creates a bridge in the signed-out state.
func NewBridge(dir Directory, opts ...Option) *Bridge {
	b := &Bridge{
		dir:    dir,
		now:    time.Now,
		logger: zap.NewNop(),
		subs:   make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Apply processes one session change (nil means signed out) and publishes the result.
func (b *Bridge) Apply(session *Session) State {
	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	st := Resolve(session, b.dir, b.now())

	b.mu.Lock()
	b.state = st
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(State), len(ids))
	for i, id := range ids {
		fns[i] = b.subs[id]
	}
	b.mu.Unlock()

	if st.SignedIn() {
		b.logger.Debug("Identity changed", zap.String("uid", st.Session.UID), zap.String("profileID", st.Profile.ID))
	} else {
		b.logger.Debug("Identity cleared")
	}

	for _, fn := range fns {
		fn(st)
	}
	return st
}

// Run applies sessions serially until the channel closes or ctx is done.
func (b *Bridge) Run(ctx context.Context, sessions <-chan *Session) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-sessions:
			if !ok {
				return nil
			}
			b.Apply(s)
		}
	}
}

// Subscribe registers fn for every later state. The returned func removes it and is idempotent.
func (b *Bridge) Subscribe(fn func(State)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Current returns the last published state.
func (b *Bridge) Current() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}
