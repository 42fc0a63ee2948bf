package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"seatline/internal/shared/config"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *BookingEvent {
	ev := NewBookingEvent(EventSeatConflict, "b-1", "evt-1")
	ev.Seats = []string{"A1", "A2"}
	ev.ConflictSeats = []string{"A2"}
	ev.Amount = decimal.NewFromInt(350)
	ev.PaymentID = "pay_1"
	return ev
}

func TestKafkaPublisher_Publish(t *testing.T) {
	cfg := DefaultKafkaProducerConfig()
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(cfg))
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "booking-events" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "evt-1" {
			return errors.New("partition key should be the event id")
		}
		raw, _ := msg.Value.Encode()
		var decoded BookingEvent
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		if decoded.Type != EventSeatConflict || decoded.ConflictSeats[0] != "A2" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, cfg)
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.NoError(t, pub.HealthCheck(context.Background()))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	cfg := DefaultKafkaProducerConfig()
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(cfg))
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, cfg)
	err := pub.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisher_RoutesByType(t *testing.T) {
	ch := &recordingChannel{}
	pub := &AMQPPublisher{ch: ch, exchange: "booking.exchange"}

	ev := sampleEvent()
	require.NoError(t, pub.Publish(context.Background(), ev))
	assert.Equal(t, "booking.exchange", ch.exchange)
	assert.Equal(t, "seat.conflict", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, ev.ID.String(), ch.msg.MessageId)

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestNewPublisher(t *testing.T) {
	pub, err := NewPublisher(config.EventsConfig{Broker: "none"})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), sampleEvent()))

	_, err = NewPublisher(config.EventsConfig{Broker: "nats"})
	assert.Error(t, err)
}
