package kafka_middleware

import (
	"context"
	"time"

	"villaops/pkg/kafka"
	"villaops/pkg/metrics"
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObserveKafkaMessage(metrics.DirectionProduce, msg.Topic, err, start)
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObserveKafkaMessage(metrics.DirectionConsume, msg.Topic, err, start)
		return err
	}
}
