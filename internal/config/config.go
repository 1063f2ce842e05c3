package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite3"` // sqlite3 | pgx
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"koe_contest.db?_journal_mode=WAL"`

	JWTSecret         string        `env:"JWT_SECRET"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AuditCreatePolicy string        `env:"AUDIT_CREATE_POLICY" envDefault:"authenticated"` // always | authenticated | never

	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	MediaBackend  string `env:"MEDIA_BACKEND" envDefault:"local"`       // local | gcs
	MediaLocalDir string `env:"MEDIA_LOCAL_DIR" envDefault:"./uploads"` // used when MEDIA_BACKEND=local
	MediaBucket   string `env:"MEDIA_BUCKET"`                           // required when MEDIA_BACKEND=gcs
	MaxVideoBytes int64  `env:"MAX_VIDEO_BYTES" envDefault:"52428800"`  // 50 MiB
	MaxProofBytes int64  `env:"MAX_PROOF_BYTES" envDefault:"10485760"`  // 10 MiB

	OpenAPIValidation bool `env:"OPENAPI_VALIDATION" envDefault:"true"`
}

// Parse reads .env when present and then the process environment, without validating.
func Parse() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Load is Parse followed by Validate.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks settings the API server cannot start without.
func (c Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "sqlite3", "pgx":
	default:
		errs = append(errs, fmt.Errorf("invalid DATABASE_DRIVER %q (use sqlite3 or pgx)", c.DatabaseDriver))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 16 characters"))
	}
	switch c.MediaBackend {
	case "local":
		if strings.TrimSpace(c.MediaLocalDir) == "" {
			errs = append(errs, errors.New("MEDIA_LOCAL_DIR required when MEDIA_BACKEND=local"))
		}
	case "gcs":
		if c.MediaBucket == "" {
			errs = append(errs, errors.New("MEDIA_BUCKET required when MEDIA_BACKEND=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid MEDIA_BACKEND %q (use gcs or local)", c.MediaBackend))
	}
	switch c.AuditCreatePolicy {
	case "always", "authenticated", "never":
	default:
		errs = append(errs, fmt.Errorf("invalid AUDIT_CREATE_POLICY %q", c.AuditCreatePolicy))
	}
	if c.MaxVideoBytes <= 0 || c.MaxProofBytes <= 0 {
		errs = append(errs, errors.New("upload limits must be positive"))
	}
	return errors.Join(errs...)
}
