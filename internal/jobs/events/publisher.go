package events

import (
	"context"
	"fmt"

	"villaops/pkg/kafka"
	"villaops/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "villaops-scheduler"
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher emits job lifecycle events keyed by booking id, so every
// event of one booking lands on the same partition.
type KafkaPublisher struct {
	producer producer
}

func NewKafkaPublisher(p producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) PublishJobsCreated(ctx context.Context, event model.JobsCreatedEvent) error {
	if event.Type == "" {
		event.Type = model.EventJobsCreated
	}
	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID(event.EventID).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for booking %s: %w", event.Type, event.BookingID, err)
	}
	return nil
}
