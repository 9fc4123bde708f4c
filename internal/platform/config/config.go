package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Store              string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	MigrationsPath     string
	JWTSecret          string
	JWTIssuer          string
	JWTExpiryDuration  time.Duration
	RateLimit          string
	CORSAllowedOrigins []string

	KafkaBrokers []string
	KafkaTopic   string

	PosthogAPIKey   string
	PosthogEndpoint string

	Outbox OutboxConfig
}

// OutboxConfig tunes the outbox dispatcher.
type OutboxConfig struct {
	Enabled       bool
	PollInterval  time.Duration
	BatchSize     int
	MaxAttempts   int
	RatePerSecond float64
	// Entries whose total reaches LargeAmount are flagged in posting insights.
	LargeAmount string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "prompt-books")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "journal.posted")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.SetDefault("OUTBOX_ENABLED", true)
	v.SetDefault("OUTBOX_POLL_INTERVAL", "2s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
	v.SetDefault("OUTBOX_MAX_ATTEMPTS", 10)
	v.SetDefault("OUTBOX_RATE_PER_SECOND", 20.0)
	v.SetDefault("INSIGHT_LARGE_AMOUNT", "10000")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		DatabaseURL:     v.GetString("PGSQL_URL"),
		Store:           strings.ToLower(v.GetString("STORE")),
		Port:            v.GetString("PORT"),
		IsProduction:    v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTIssuer:       v.GetString("JWT_ISSUER"),
		RateLimit:       v.GetString("RATE_LIMIT"),
		KafkaTopic:      v.GetString("KAFKA_TOPIC"),
		PosthogAPIKey:   v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: v.GetString("POSTHOG_ENDPOINT"),
		Outbox: OutboxConfig{
			Enabled:       v.GetBool("OUTBOX_ENABLED"),
			BatchSize:     v.GetInt("OUTBOX_BATCH_SIZE"),
			MaxAttempts:   v.GetInt("OUTBOX_MAX_ATTEMPTS"),
			RatePerSecond: v.GetFloat64("OUTBOX_RATE_PER_SECOND"),
			LargeAmount:   v.GetString("INSIGHT_LARGE_AMOUNT"),
		},
	}

	if cfg.Store != StoreMemory && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOr(v.GetString("JWT_EXPIRY_DURATION"), time.Hour, "JWT_EXPIRY_DURATION")
	cfg.Outbox.PollInterval = durationOr(v.GetString("OUTBOX_POLL_INTERVAL"), 2*time.Second, "OUTBOX_POLL_INTERVAL")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))

	if cfg.Outbox.BatchSize <= 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Outbox.MaxAttempts <= 0 {
		cfg.Outbox.MaxAttempts = 10
	}
	if cfg.Outbox.RatePerSecond <= 0 {
		cfg.Outbox.RatePerSecond = 20
	}
	return cfg
}

func durationOr(raw string, fallback time.Duration, key string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
