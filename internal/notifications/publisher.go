package notifications

import (
	"context"
	"fmt"
	"strings"

	"seatline/internal/shared/config"
)

// Publisher delivers booking lifecycle events to a broker
type Publisher interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// NewPublisher builds the publisher for the configured broker
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	switch strings.ToLower(cfg.Broker) {
	case "", "none":
		return NoopPublisher{}, nil
	case "kafka":
		kc := DefaultKafkaProducerConfig()
		kc.Brokers = cfg.KafkaBrokers
		kc.Topic = cfg.KafkaTopic
		return NewKafkaPublisher(kc)
	case "rabbitmq":
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	default:
		return nil, fmt.Errorf("unsupported events broker %q", cfg.Broker)
	}
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *BookingEvent) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }
func (NoopPublisher) HealthCheck(context.Context) error             { return nil }
