package kafka

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/polkiloo/fulfillment/internal/config"
	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/test"
)

type writerStub struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *writerStub) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewPublisherConfiguresWriter(t *testing.T) {
	p := NewPublisher([]string{"kafka-1:9092", "kafka-2:9092"}, "order-events", testLogger())
	w, ok := p.writer.(*kafkago.Writer)
	if !ok {
		t.Fatalf("expected kafka writer, got %T", p.writer)
	}
	if w.Topic != "order-events" {
		t.Fatalf("unexpected topic %q", w.Topic)
	}
	if addr := w.Addr.String(); !strings.Contains(addr, "kafka-1:9092") || !strings.Contains(addr, "kafka-2:9092") {
		t.Fatalf("unexpected brokers %q", w.Addr.String())
	}
	if _, ok := w.Balancer.(*kafkago.Hash); !ok {
		t.Fatalf("expected key hash balancer, got %T", w.Balancer)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestPublisherWritesKeyedMessage(t *testing.T) {
	stub := &writerStub{}
	p := &Publisher{writer: stub, topic: "order-events", logger: testLogger()}
	id := uuid.New()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), model.OutboxEvent{
		ID:          3,
		EventID:     id,
		AggregateID: 42,
		Type:        model.EventOrderPaid,
		Payload:     []byte(`{"order_id":42}`),
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(stub.messages))
	}
	msg := stub.messages[0]
	if string(msg.Key) != "42" {
		t.Fatalf("expected order id key, got %q", msg.Key)
	}
	if string(msg.Value) != `{"order_id":42}` || !msg.Time.Equal(created) {
		t.Fatalf("unexpected message %+v", msg)
	}
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderEventID] != id.String() || headers[HeaderEventType] != string(model.EventOrderPaid) {
		t.Fatalf("unexpected headers %v", headers)
	}
}

func TestPublisherWrapsWriteErrors(t *testing.T) {
	boom := errors.New("leader not available")
	p := &Publisher{writer: &writerStub{err: boom}, topic: "t", logger: testLogger()}
	err := p.Publish(context.Background(), model.OutboxEvent{Type: model.EventOrderCreated})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	if err := p.Publish(context.Background(), model.OutboxEvent{AggregateID: 9, Type: model.EventOrderShipped}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "order.shipped") {
		t.Fatalf("expected event type in log, got %s", buf.String())
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}

func TestNewPublisherSelectsImplementation(t *testing.T) {
	logPub := newPublisher(publisherParams{Config: &config.Config{}, Logger: testLogger()})
	if _, ok := logPub.(*LogPublisher); !ok {
		t.Fatalf("expected log publisher without brokers, got %T", logPub)
	}

	kafkaPub := newPublisher(publisherParams{Config: &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "x"}, Logger: testLogger()})
	if _, ok := kafkaPub.(*Publisher); !ok {
		t.Fatalf("expected kafka publisher with brokers, got %T", kafkaPub)
	}
	_ = kafkaPub.Close()
}

func TestRegisterLifecycleClosesPublisher(t *testing.T) {
	stub := &writerStub{}
	lc := &test.LifecycleRecorder{}
	registerLifecycle(lc, &Publisher{writer: stub, logger: testLogger()})
	if len(lc.Hooks) != 1 {
		t.Fatalf("expected one hook, got %d", len(lc.Hooks))
	}
	if err := lc.Hooks[0].OnStop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stub.closed {
		t.Fatal("expected writer to be closed")
	}
}
