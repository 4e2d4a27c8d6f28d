// Package events publishes domain events after their transaction commits.
// Publishing is best-effort: the database stays the source of truth and a
// failed publish never undoes a committed change.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types
const (
	TypeRequestSubmitted    = "request.submitted"
	TypeRequestDecided      = "request.decided"
	TypeClubCreated         = "club.created"
	TypeClubDeleted         = "club.deleted"
	TypeEventCreated        = "event.created"
	TypeEventDeleted        = "event.deleted"
	TypeNotificationCreated = "notification.created"
)

// Event is the envelope written to the broker
type Event struct {
	Type       string      `json:"type"`
	EntityID   int64       `json:"entityId"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// New builds an event stamped with the current time
func New(eventType string, entityID int64, data interface{}) Event {
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher sends domain events to subscribers
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// KafkaConfig configures the Kafka-backed publisher
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes events to a single topic keyed by entity id, so all
// events of one aggregate land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher creates a synchronous Kafka writer
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w, topic: cfg.Topic}, nil
}

// Publish encodes evt and writes it to the topic
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := Encode(evt)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", evt.Type, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Encode renders evt as a Kafka message with the entity id as key and the
// event type as a header.
func Encode(evt Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", evt.Type, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.EntityID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
		Time: evt.OccurredAt,
	}, nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }
