package watcher

import (
	"context"
	"fmt"
	"time"

	"villaops/internal/jobs/repository"
	"villaops/pkg/config"
	"villaops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SourceChangeStream = "change_stream"

	reconnectDelay = 2 * time.Second
)

// ChangeStreamSource follows inserts and updates on the Bookings collection.
// Changes are dispatched without waiting on their Ack, so up to
// WATCHER_CONCURRENCY bookings materialize at once. The resume token lives in
// memory only; after a restart the stream starts at the current time and
// missed bookings need a manual trigger.
type ChangeStreamSource struct {
	collection  *mongo.Collection
	cfg         *config.Config
	resumeToken bson.Raw
}

func NewChangeStreamSource(cfg *config.Config) *ChangeStreamSource {
	return &ChangeStreamSource{
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(repository.BookingsCollection),
		cfg:        cfg,
	}
}

func (s *ChangeStreamSource) Name() string {
	return SourceChangeStream
}

func (s *ChangeStreamSource) Run(ctx context.Context, handle Handler) error {
	for {
		err := s.stream(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.cfg.Log.Warn("Booking change stream interrupted, reconnecting",
			"error", err,
			"resumable", s.resumeToken != nil,
			"delay", reconnectDelay,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *ChangeStreamSource) stream(ctx context.Context, handle Handler) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
		}}},
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if s.resumeToken != nil {
		opts.SetResumeAfter(s.resumeToken)
	}

	cs, err := s.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to open booking change stream: %w", err)
	}
	defer cs.Close(context.WithoutCancel(ctx))

	for cs.Next(ctx) {
		change, err := decodeChangeEvent(cs.Current)
		s.resumeToken = cs.ResumeToken()
		if err != nil {
			s.cfg.Log.Warn("Skipping undecodable booking change", "error", err)
			continue
		}
		_ = handle(ctx, change)
	}
	return cs.Err()
}

type changeEvent struct {
	OperationType string              `bson:"operationType"`
	FullDocument  model.BookingChange `bson:"fullDocument"`
}

// decodeChangeEvent extracts the post-image of a booking. The deleted-since
// case of updateLookup yields an empty document, reported as an error.
func decodeChangeEvent(raw bson.Raw) (model.BookingChange, error) {
	var event changeEvent
	if err := bson.Unmarshal(raw, &event); err != nil {
		return model.BookingChange{}, fmt.Errorf("decode change event: %w", err)
	}
	if event.FullDocument.ID == "" {
		return model.BookingChange{}, fmt.Errorf("change event %q carries no booking document", event.OperationType)
	}
	return event.FullDocument, nil
}
