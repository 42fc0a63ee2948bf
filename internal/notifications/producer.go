package notifications

import (
	"context"
	"fmt"
	"time"

	"seatline/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaProducerConfig contains configuration for the Kafka producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-events",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// NewSaramaConfig maps the producer configuration onto sarama
func NewSaramaConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	// Same key, same partition: events of one show stay ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

// KafkaPublisher publishes booking events to one Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	logger   *logger.Logger
}

func NewKafkaPublisher(config *KafkaProducerConfig) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, config: config, logger: logger.GetDefault()}
}

func (kp *KafkaPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	kp.logger.DebugContext(ctx, "booking event published",
		"topic", kp.config.Topic,
		"partition", partition,
		"offset", offset,
		"type", string(event.Type),
		"booking_id", event.BookingID,
	)
	return nil
}

func createHeaders(event *BookingEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("booking_id"), Value: []byte(event.BookingID)},
		{Key: []byte("version"), Value: []byte(fmt.Sprint(event.Version))},
		{Key: []byte("producer"), Value: []byte("seatline-reservations")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (kp *KafkaPublisher) Close() error {
	if kp.producer == nil {
		return nil
	}
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// HealthCheck validates configuration; connectivity failures surface on the next send
func (kp *KafkaPublisher) HealthCheck(ctx context.Context) error {
	if kp.producer == nil {
		return fmt.Errorf("health check failed - producer is nil")
	}
	if kp.config.Topic == "" {
		return fmt.Errorf("health check failed - topic not configured")
	}
	return nil
}
