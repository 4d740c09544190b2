package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultKafkaBrokers}, cfg.Brokers)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, int64(-2), cfg.ConsumerStartOffset)
	assert.Equal(t, time.Duration(0), cfg.ConsumerCommitInterval)
	assert.True(t, cfg.EnableMiddleware)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092, ,broker-2:9092 ")
	t.Setenv(EnvKafkaProducerCompression, "ZSTD")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "1s")
	t.Setenv(EnvKafkaEnableMiddleware, "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Brokers)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.Equal(t, time.Second, cfg.ConsumerRetryBackoff)
	assert.False(t, cfg.EnableMiddleware)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " , ")
	t.Setenv(EnvKafkaProducerRequireAcks, "2")
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaConsumerStartOffset, "-5")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "At least one Kafka broker is required")
	assert.Contains(t, msg, "ProducerRequireAcks")
	assert.Contains(t, msg, "ProducerCompression")
	assert.Contains(t, msg, "ConsumerStartOffset")
}
