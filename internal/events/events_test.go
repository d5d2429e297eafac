package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelsup-backend-go/internal/config"
)

func TestNew_StampsEnvelope(t *testing.T) {
	a := New(RidePosted, "ride_1", map[string]string{"origin": "Gate 1"})
	b := New(RidePosted, "ride_1", nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, RidePosted, a.Type)
	assert.Equal(t, "ride_1", a.Key)
	assert.False(t, a.OccurredAt.IsZero())
}

func TestMemoryPublisher(t *testing.T) {
	p := &MemoryPublisher{}
	require.NoError(t, p.Publish(context.Background(), New(SeatBooked, "ride_1", nil)))
	require.NoError(t, p.Publish(context.Background(), New(MessageSent, "conv_a_b", nil)))
	assert.Equal(t, []string{SeatBooked, MessageSent}, p.Types())

	p.Err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), New(RideUpdated, "ride_1", nil)))
	assert.Len(t, p.Events(), 2)
}

func TestNewFromConfig(t *testing.T) {
	p, err := NewFromConfig(&config.Config{EventBroker: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)

	p, err = NewFromConfig(&config.Config{EventBroker: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogPublisher{}, p)

	p, err = NewFromConfig(&config.Config{EventBroker: "kafka", KafkaBrokers: "localhost:9092", KafkaTopic: "wheelsup.events"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	assert.NoError(t, p.Close())

	_, err = NewFromConfig(&config.Config{EventBroker: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func TestKafkaPublisher_FlushesPromptly(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "wheelsup.events")
	defer p.Close()

	assert.Equal(t, "wheelsup.events", p.writer.Topic)
	assert.LessOrEqual(t, p.writer.BatchTimeout, 10*time.Millisecond)
	assert.False(t, p.writer.Async)
}
