package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultClientID     = "villaops-scheduler"
	DefaultDialTimeout  = 10 * time.Second

	// Job events wait for every in-sync replica.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// A fresh consumer group starts at the oldest retained change. Commit
	// interval 0 makes CommitMessages synchronous.
	DefaultConsumerStartOffset       = -2
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 1 << 20
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 0
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 30 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 250 * time.Millisecond

	DefaultEnableMiddleware = true
)
