package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Kafka header names set on every forwarded event
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

var producerTracer = otel.Tracer("event/kafka")

// MessageWriter is the part of *kafka.Writer the forwarder needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder is a wildcard bus handler that writes every domain event to a Kafka topic.
// Messages are keyed by the event partition key so events of one sales channel stay ordered.
type KafkaForwarder struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaWriter creates the writer used in production
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
	}
}

// NewKafkaForwarder creates a forwarder writing to topic
func NewKafkaForwarder(writer MessageWriter, topic string, log *zap.Logger) *KafkaForwarder {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaForwarder{writer: writer, topic: topic, logger: log}
}

// EventTypes implements shared.EventHandler; the forwarder receives every event
func (f *KafkaForwarder) EventTypes() []string {
	return nil
}

// Handle implements shared.EventHandler
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}

	key := event.PartitionKey()
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType())},
			{Key: HeaderEventID, Value: []byte(event.EventID().String())},
		},
	}

	ctx, span := producerTracer.Start(ctx, "send "+f.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(f.topic),
			semconv.MessagingKafkaMessageKey(key),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write %s to kafka: %w", event.EventType(), err)
	}

	f.logger.Debug("event forwarded to kafka",
		zap.String("event_type", event.EventType()),
		zap.String("topic", f.topic),
	)
	return nil
}

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
