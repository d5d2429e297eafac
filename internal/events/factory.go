package events

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wheelsup-backend-go/internal/config"
)

// NewFromConfig picks a publisher from EVENT_BROKER.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (Publisher, error) {
	switch strings.ToLower(cfg.EventBroker) {
	case "none":
		return NopPublisher{}, nil
	case "", "log":
		return NewLogPublisher(logger), nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue, logger)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokerList(), cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}
