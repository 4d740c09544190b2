package watcher

import (
	"context"
	"errors"
	"fmt"

	"villaops/pkg/config"
	apperrors "villaops/pkg/errors"
	"villaops/pkg/kafka"
	kafka_config "villaops/pkg/kafka/config"
	kafka_middleware "villaops/pkg/kafka/middleware"
	"villaops/pkg/model"
)

const SourceKafka = "kafka"

// KafkaSource reads JSON booking changes from BOOKING_CHANGES_TOPIC.
// Each message is committed only after its materialization has settled, so
// a crash mid-attempt redelivers the change. Messages are handled one at a
// time per consumer; throughput scales with partitions.
type KafkaSource struct {
	cfg      *config.Config
	kafkaCfg *kafka_config.Config
}

func NewKafkaSource(cfg *config.Config, kafkaCfg *kafka_config.Config) *KafkaSource {
	return &KafkaSource{cfg: cfg, kafkaCfg: kafkaCfg}
}

func (s *KafkaSource) Name() string {
	return SourceKafka
}

func (s *KafkaSource) Run(ctx context.Context, handle Handler) error {
	consumer, err := kafka.NewConsumer(
		s.kafkaCfg,
		s.cfg.Log,
		s.cfg.BookingChangesTopic,
		s.cfg.BookingChangesGroupID,
		s.cfg.BookingChangesDLQ,
		decodeHandler(handle),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking change consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			s.cfg.Log.Warn("Failed to close booking change consumer", "error", err)
		}
	}()

	if s.kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(s.cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	err = consumer.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// decodeHandler adapts a watcher Handler to the consumer and waits for the
// outcome. A payload that does not decode can never succeed, so it goes
// straight to the DLQ. Retryable failures are retried in place and then
// dead-lettered; precondition and not-found outcomes are done.
func decodeHandler(handle Handler) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var change model.BookingChange
		if err := msg.DecodeValue(&change); err != nil {
			return kafka.NewPermanentError("undecodable booking change", err)
		}
		if change.ID == "" {
			change.ID = msg.Key
		}
		if change.ID == "" {
			return kafka.NewPermanentError("booking change without id", nil)
		}

		err := handle(ctx, change)()
		switch {
		case err == nil,
			apperrors.HasCode(err, apperrors.CodePrecondition),
			apperrors.HasCode(err, apperrors.CodeNotFound):
			return nil
		case apperrors.IsRetryable(err):
			return kafka.NewTransientError("booking materialization failed", err)
		default:
			return kafka.NewPermanentError("booking materialization failed", err)
		}
	}
}
