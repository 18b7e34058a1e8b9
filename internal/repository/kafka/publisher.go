package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"community-grocery-go/internal/config"
	communitydomain "community-grocery-go/internal/domain/community"
	"github.com/segmentio/kafka-go"
)

const (
	writeTimeout = 5 * time.Second
	// Publish runs inside the request, so batches are flushed almost at once.
	batchTimeout = 5 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher writes community events keyed by community id, so events of
// one community stay ordered within a partition.
type EventPublisher struct {
	writer messageWriter
}

func NewEventPublisher(cfg config.KafkaConfig) *EventPublisher {
	return &EventPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}}
}

func (p *EventPublisher) Publish(ctx context.Context, event communitydomain.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.CommunityID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
