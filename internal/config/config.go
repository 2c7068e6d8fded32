package config

import (
	"flag"
	"fmt"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all server settings. Environment variables win over
// defaults; flags override only what the environment left unset.
type Config struct {
	DatabaseDSN string `env:"DATABASE_URI" validate:"required"`
	AuthSecret  string `env:"AUTH_SECRET" validate:"required"`

	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// disk or s3
	StorageBackend string `env:"STORAGE_BACKEND" validate:"oneof=disk s3"`
	StorageDir     string `env:"STORAGE_DIR" validate:"required_if=StorageBackend disk"`
	S3Bucket       string `env:"S3_BUCKET" validate:"required_if=StorageBackend s3"`
	S3KeyPrefix    string `env:"S3_KEY_PREFIX"`

	UploadMaxSizeMB int `env:"UPLOAD_MAX_MB" validate:"gt=0"`

	// bootstrap admin account, created once if no admin exists
	AdminEmail    string `env:"ADMIN_EMAIL" validate:"omitempty,email"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// NewConfig assembles the config from .env, environment and flags.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database connection string")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "secret for signing auth cookies")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "listen address as host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS")
	flag.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "blob storage backend: disk or s3")
	flag.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "directory for the disk blob store")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "bucket for the s3 blob store")
	flag.StringVar(&cfg.S3KeyPrefix, "s3-prefix", cfg.S3KeyPrefix, "key prefix for the s3 blob store")
	flag.IntVar(&cfg.UploadMaxSizeMB, "upload-max-mb", cfg.UploadMaxSizeMB, "upload size limit in MB")
	flag.Parse()

	// defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = "disk"
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = "./filestorage"
	}
	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 50
	}

	// BaseURL must be "host:port", no scheme, no path
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8080"
	}

	return cfg
}

// Validate checks the assembled config; called once at startup.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config: field %s failed %q validation", e.Field(), e.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
