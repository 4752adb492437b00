package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrders        = "order_events"
	TopicCart          = "cart_events"
	TopicNotifications = "notification_events"
	TopicUsers         = "user_events"
	TopicProducts      = "product_events"

	writeTimeout = 5 * time.Second
)

// Event is the envelope written to every topic.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewEvent(typ string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
	}
	return &Producer{writer: w}, nil
}

// PublishEvent is a no-op on a nil or unconfigured producer.
func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	if p == nil || p.writer == nil {
		return nil
	}

	msg, err := encode(topic, key, event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encode(topic, key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}, nil
}
