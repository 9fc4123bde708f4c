package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, "journal.posted", cfg.KafkaTopic)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.NotEmpty(t, cfg.JWTSecret, "an insecure development secret is filled in")
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
	assert.Equal(t, 10, cfg.Outbox.MaxAttempts)
	assert.True(t, cfg.Outbox.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE", "MEMORY")
	v.Set("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	v.Set("OUTBOX_POLL_INTERVAL", "not-a-duration")
	v.Set("OUTBOX_BATCH_SIZE", 0)
	v.Set("JWT_SECRET", "s3cret")

	cfg := fromViper(v)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}
