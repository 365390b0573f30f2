package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. STORELENS_PORT
const EnvPrefix = "STORELENS"

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	// storelensd serve retries the startup ping this many times
	DBConnectAttempts int    `envconfig:"DB_CONNECT_ATTEMPTS" default:"5"`
	MigrationsDir     string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"storelens-exports"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	ExportPollInterval time.Duration `envconfig:"EXPORT_POLL_INTERVAL" default:"10s"`

	// Body limits in bytes; snapshot covers POST /snapshots and /scan
	MaxRequestBytes  int64 `envconfig:"MAX_REQUEST_BYTES" default:"1048576"`
	MaxSnapshotBytes int64 `envconfig:"MAX_SNAPSHOT_BYTES" default:"16777216"`

	// Bootstrap: create initial workspace and API key on startup
	InitWorkspaceName string `envconfig:"INIT_WORKSPACE_NAME"`
	InitAPIKey        string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ExportPollInterval <= 0 {
		return fmt.Errorf("EXPORT_POLL_INTERVAL must be positive, got %s", c.ExportPollInterval)
	}
	if c.MaxSnapshotBytes < c.MaxRequestBytes {
		return fmt.Errorf("MAX_SNAPSHOT_BYTES (%d) is below MAX_REQUEST_BYTES (%d)", c.MaxSnapshotBytes, c.MaxRequestBytes)
	}
	if c.S3Endpoint != "" && !c.HasS3() {
		return fmt.Errorf("S3_ENDPOINT is set but S3 credentials are missing")
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// TracesSampleRate samples everything in development and 10% elsewhere
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
