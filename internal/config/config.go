package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, parsed from TIDYROOM_* env vars.
type Config struct {
	Port     string `env:"TIDYROOM_PORT" envDefault:"8080"`
	DBPath   string `env:"TIDYROOM_DB_PATH" envDefault:"tidyroom.db"`
	LogLevel string `env:"TIDYROOM_LOG_LEVEL" envDefault:"info"`

	// Timezone is the single canonical zone used for streak day rollover.
	// Never user-local: two devices in different zones must agree on what
	// "yesterday" means.
	Timezone string `env:"TIDYROOM_TIMEZONE" envDefault:"UTC"`

	SweepInterval  time.Duration `env:"TIDYROOM_SWEEP_INTERVAL" envDefault:"1m"`
	SessionTTL     time.Duration `env:"TIDYROOM_SESSION_TTL" envDefault:"720h"`

	VAPIDPublicKey  string `env:"TIDYROOM_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"TIDYROOM_VAPID_PRIVATE_KEY"`

	Backup BackupConfig `envPrefix:"TIDYROOM_BACKUP_"`
}

// BackupConfig configures scheduled encrypted backups to S3-compatible storage.
type BackupConfig struct {
	Enabled    bool          `env:"ENABLED" envDefault:"false"`
	Interval   time.Duration `env:"INTERVAL" envDefault:"24h"`
	Keep       int           `env:"KEEP" envDefault:"7"`
	Passphrase string        `env:"PASSPHRASE"`
	Bucket     string        `env:"S3_BUCKET"`
	Region     string        `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint   string        `env:"S3_ENDPOINT"`
	AccessKey  string        `env:"S3_ACCESS_KEY"`
	SecretKey  string        `env:"S3_SECRET_KEY"`
}

// Load parses configuration from the environment and resolves the timezone.
func Load() (*Config, *time.Location, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &cfg, loc, nil
}
