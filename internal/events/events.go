// Package events publishes WheelsUp domain events to a message broker.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types.
const (
	RidePosted         = "ride.posted"
	RideUpdated        = "ride.updated"
	SeatBooked         = "ride.seat_booked"
	MessageSent        = "conversation.message_sent"
	ConversationOpened = "conversation.opened"
	ProfileCreated     = "user.profile_created"
	PhoneVerified      = "user.phone_verified"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"` // partition key, usually the aggregate ID
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with a fresh ID and the current time.
func New(eventType, key string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// LogPublisher writes events to the application log instead of a broker.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, evt Event) error {
	p.logger.Info("Domain event",
		zap.String("eventID", evt.ID),
		zap.String("type", evt.Type),
		zap.String("key", evt.Key),
		zap.Any("payload", evt.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// MemoryPublisher keeps events in memory. Used by tests and local tooling.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
	Err    error // returned from Publish when set
}

func (p *MemoryPublisher) Publish(_ context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Types returns the type of each published event, in order.
func (p *MemoryPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
