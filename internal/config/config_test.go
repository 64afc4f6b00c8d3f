package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/philipcowcer-eng/LoadBalance/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Env:           "production",
		Addr:          ":8080",
		JWTSecret:     "strongsecret",
		APITimeout:    5 * time.Second,
		DatabasePath:  "staffing.db",
		TokenDuration: 24 * time.Hour,
		Snapshot:      config.SnapshotConfig{Dir: "snapshots", Driver: "fs", Keep: 10},
		RateLimit:     config.RateLimitConfig{Enabled: true, LoginPerMinute: 10},
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = config.InsecureJWTSecret

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "development"
	cfg.JWTSecret = config.InsecureJWTSecret

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty secret", func(c *config.Config) { c.JWTSecret = "" }, "jwt_secret is required"},
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr is required"},
		{"zero token duration", func(c *config.Config) { c.TokenDuration = 0 }, "token_duration"},
		{"unknown driver", func(c *config.Config) { c.Snapshot.Driver = "ftp" }, "snapshot.driver"},
		{"s3 without bucket", func(c *config.Config) { c.Snapshot.Driver = "s3" }, "snapshot.bucket"},
		{"negative keep", func(c *config.Config) { c.Snapshot.Keep = -1 }, "snapshot.keep"},
		{"zero login rate", func(c *config.Config) { c.RateLimit.LoginPerMinute = 0 }, "login_per_minute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	cfg := validConfig()
	cfg.Snapshot.Driver = "s3"
	cfg.Snapshot.Bucket = "archives"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected s3 with bucket to validate, got: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"STAFFING_ADDR", "STAFFING_JWT_SECRET", "STAFFING_DATABASE_PATH", "STAFFING_TOKEN_DURATION"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != config.InsecureJWTSecret {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, config.InsecureJWTSecret)
	}
	if cfg.DatabasePath != "staffing.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "staffing.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 24*time.Hour)
	}
	if cfg.Snapshot.Driver != "fs" || cfg.Snapshot.Keep != 10 || cfg.Snapshot.Interval != 0 {
		t.Fatalf("unexpected snapshot defaults: %+v", cfg.Snapshot)
	}
	if cfg.Bootstrap.AdminUsername != "admin" || cfg.Bootstrap.AdminPassword != "changeme" {
		t.Fatalf("unexpected bootstrap defaults: %+v", cfg.Bootstrap)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("unexpected AllowedOrigins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("STAFFING_ADDR", ":7070")
	t.Setenv("STAFFING_SNAPSHOT_DRIVER", "s3")
	t.Setenv("STAFFING_SNAPSHOT_S3_BUCKET", "archives")
	t.Setenv("STAFFING_SNAPSHOT_INTERVAL", "6h")
	t.Setenv("STAFFING_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STAFFING_RATE_LIMIT_ENABLED", "false")
	t.Setenv("STAFFING_TRUST_PROXY", "true")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("unexpected Addr: %q", cfg.Addr)
	}
	if cfg.Snapshot.Driver != "s3" || cfg.Snapshot.Bucket != "archives" || cfg.Snapshot.Interval != 6*time.Hour {
		t.Fatalf("unexpected snapshot config: %+v", cfg.Snapshot)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected AllowedOrigins: %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("expected rate limiting disabled")
	}
	if !cfg.TrustProxy {
		t.Fatalf("expected TrustProxy from environment")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\nsnapshot:\n  keep: 3\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.Snapshot.Keep != 3 || cfg.Snapshot.Driver != "fs" {
		t.Fatalf("unexpected snapshot config: %+v", cfg.Snapshot)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestLoadConfig_BadEnvironment(t *testing.T) {
	t.Setenv("STAFFING_TOKEN_DURATION", "forever")
	if _, err := config.LoadConfig(""); err == nil {
		t.Fatalf("expected parse error for bad duration, got nil")
	}
}
