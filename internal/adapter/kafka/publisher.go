package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// Message headers attached to every published event.
const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
)

// EventPublisher delivers lifecycle events and releases its connections on Close.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OutboxEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes events to a Kafka topic keyed by order id, so every event
// of one order lands on the same partition.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a publisher for brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		topic:  topic,
		logger: logger,
	}
}

// Publish writes one message and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event model.OutboxEvent) error {
	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(event.AggregateID, 10)),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafkago.Header{
			{Key: HeaderEventID, Value: []byte(event.EventID.String())},
			{Key: HeaderEventType, Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", event.Type, p.topic, err)
	}
	p.logger.Debug("event published", slog.String("event_id", event.EventID.String()), slog.String("topic", p.topic))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs events instead of sending them. Used when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event model.OutboxEvent) error {
	p.logger.Info("order event",
		slog.String("event_id", event.EventID.String()),
		slog.String("type", string(event.Type)),
		slog.Int64("order_id", event.AggregateID),
		slog.String("payload", string(event.Payload)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
