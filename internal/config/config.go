package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	ShutdownTimeout    time.Duration
	TxMaxRetries       int
	KafkaBrokers       []string
	KafkaTopic         string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	RelayWorkers       int
	RedisAddress       string
	IdempotencyTTL     time.Duration
	JWTSecret          string
	OTLPEndpoint       string
	LogLevel           string
	CORSOrigins        []string
}

const (
	defaultRunAddress         = ":8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultShutdownTimeout    = 10 * time.Second
	defaultTxMaxRetries       = 3
	defaultKafkaTopic         = "order-events"
	defaultOutboxPollInterval = time.Second
	defaultOutboxBatchSize    = 64
	defaultRelayWorkers       = 2
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultLogLevel           = "info"
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	// Missing .env is the common case outside local development.
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		TxMaxRetries:       getInt(lookup, "TX_MAX_RETRIES", defaultTxMaxRetries),
		KafkaTopic:         getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		OutboxPollInterval: getDuration(lookup, "OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		OutboxBatchSize:    getInt(lookup, "OUTBOX_BATCH_SIZE", defaultOutboxBatchSize),
		RelayWorkers:       getInt(lookup, "RELAY_WORKERS", defaultRelayWorkers),
		RedisAddress:       getString(lookup, "REDIS_ADDRESS", ""),
		IdempotencyTTL:     getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		JWTSecret:          getString(lookup, "JWT_SECRET", defaultJWTSecret),
		OTLPEndpoint:       getString(lookup, "OTLP_ENDPOINT", ""),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("fulfillment", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		pollIntervalStr    = cfg.OutboxPollInterval.String()
		idempotencyTTLStr  = cfg.IdempotencyTTL.String()
		brokers            = getString(lookup, "KAFKA_BROKERS", "")
		origins            = getString(lookup, "CORS_ORIGINS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.TxMaxRetries, "tx-retries", cfg.TxMaxRetries, "Attempts for transactions aborted by a conflict")
	fs.StringVar(&brokers, "kafka-brokers", brokers, "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Topic for order lifecycle events")
	fs.StringVar(&pollIntervalStr, "outbox-poll", pollIntervalStr, "Interval between outbox polls")
	fs.IntVar(&cfg.OutboxBatchSize, "outbox-batch", cfg.OutboxBatchSize, "Maximum events claimed per poll")
	fs.IntVar(&cfg.RelayWorkers, "relay-workers", cfg.RelayWorkers, "Number of concurrent publishers")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for idempotency keys")
	fs.StringVar(&idempotencyTTLStr, "idempotency-ttl", idempotencyTTLStr, "Replay window for idempotency keys")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying admin tokens")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/HTTP traces endpoint")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.StringVar(&origins, "cors-origins", origins, "Comma separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.OutboxPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid outbox poll interval: %w", err)
	}

	if cfg.IdempotencyTTL, err = time.ParseDuration(idempotencyTTLStr); err != nil {
		return nil, fmt.Errorf("invalid idempotency ttl: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.KafkaBrokers = splitList(brokers)
	cfg.CORSOrigins = splitList(origins)

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TxMaxRetries <= 0 {
		cfg.TxMaxRetries = defaultTxMaxRetries
	}

	if cfg.OutboxPollInterval <= 0 {
		cfg.OutboxPollInterval = defaultOutboxPollInterval
	}

	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaultOutboxBatchSize
	}

	if cfg.RelayWorkers <= 0 {
		cfg.RelayWorkers = defaultRelayWorkers
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultKafkaTopic
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
