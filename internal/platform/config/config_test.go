package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"VITAE_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"KAFKA_GROUP", "ARTIFACT_DIR", "WORKER_CONCURRENCY", "TX_TIMEOUT", "LOG_LEVEL", "JWT_SIGNING_KEY"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "cv-uploads", cfg.Kafka.Topic)
	assert.Equal(t, "artifacts", cfg.ArtifactDir)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VITAE_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 8, cfg.WorkerConcurrency)
	assert.Equal(t, 3*time.Second, cfg.TxTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "-2")
	t.Setenv("TX_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
}
