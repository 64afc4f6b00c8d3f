package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable read by LoadConfig.
const EnvPrefix = "STAFFING_"

// InsecureJWTSecret is the built-in default secret. Validate refuses it
// outside development.
const InsecureJWTSecret = "supersecretkey"

// EnvFiles are loaded, when present, before the environment is parsed.
var EnvFiles = []string{".env", ".env.local"}

type Config struct {
	Env            string          `yaml:"env" env:"ENV" envDefault:"production"`
	Addr           string          `yaml:"addr" env:"ADDR" envDefault:":8080"`
	JWTSecret      string          `yaml:"jwt_secret" env:"JWT_SECRET" envDefault:"supersecretkey"`
	APITimeout     time.Duration   `yaml:"timeout" env:"TIMEOUT" envDefault:"15s"`
	DatabasePath   string          `yaml:"database_path" env:"DATABASE_PATH" envDefault:"staffing.db"`
	TokenDuration  time.Duration   `yaml:"token_duration" env:"TOKEN_DURATION" envDefault:"24h"`
	MigrateOnStart bool            `yaml:"migrate_on_start" env:"MIGRATE_ON_START" envDefault:"true"`
	AllowedOrigins []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	TrustProxy     bool            `yaml:"trust_proxy" env:"TRUST_PROXY"`
	Snapshot       SnapshotConfig  `yaml:"snapshot" envPrefix:"SNAPSHOT_"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Metrics        MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
	Bootstrap      BootstrapConfig `yaml:"bootstrap" envPrefix:"BOOTSTRAP_"`
}

// SnapshotConfig controls database archives. Interval 0 disables the
// periodic snapshot job.
type SnapshotConfig struct {
	Dir       string        `yaml:"dir" env:"DIR" envDefault:"snapshots"`
	Driver    string        `yaml:"driver" env:"DRIVER" envDefault:"fs"`
	Bucket    string        `yaml:"bucket" env:"S3_BUCKET"`
	Prefix    string        `yaml:"prefix" env:"S3_PREFIX" envDefault:"snapshots/"`
	Region    string        `yaml:"region" env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	PathStyle bool          `yaml:"path_style" env:"S3_PATH_STYLE"`
	Interval  time.Duration `yaml:"interval" env:"INTERVAL" envDefault:"0s"`
	Keep      int           `yaml:"keep" env:"KEEP" envDefault:"10"`
}

type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	LoginPerMinute int  `yaml:"login_per_minute" env:"LOGIN_PER_MINUTE" envDefault:"10"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	Path    string `yaml:"path" env:"PATH" envDefault:"/metrics"`
}

// BootstrapConfig is the admin account created when no users exist.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD" envDefault:"changeme"`
}

// LoadConfig builds the configuration from defaults, then .env files and
// the STAFFING_* environment, then the optional YAML file at path.
func LoadConfig(path string) (*Config, error) {
	if err := loadEnvFiles(EnvFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// IsDevelopment reports whether the process runs with STAFFING_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	} else if c.JWTSecret == InsecureJWTSecret && !c.IsDevelopment() {
		errs = append(errs, errors.New("jwt_secret uses the insecure default; set STAFFING_JWT_SECRET"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.TokenDuration <= 0 {
		errs = append(errs, fmt.Errorf("token_duration must be positive, got %v", c.TokenDuration))
	}
	switch c.Snapshot.Driver {
	case "fs":
	case "s3":
		if c.Snapshot.Bucket == "" {
			errs = append(errs, errors.New("snapshot.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshot.driver must be 'fs' or 's3', got %q", c.Snapshot.Driver))
	}
	if c.Snapshot.Keep < 0 {
		errs = append(errs, fmt.Errorf("snapshot.keep must be non-negative, got %d", c.Snapshot.Keep))
	}
	if c.Snapshot.Interval < 0 {
		errs = append(errs, fmt.Errorf("snapshot.interval must be non-negative, got %v", c.Snapshot.Interval))
	}
	if c.RateLimit.Enabled && c.RateLimit.LoginPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.login_per_minute must be positive, got %d", c.RateLimit.LoginPerMinute))
	}
	return errors.Join(errs...)
}
