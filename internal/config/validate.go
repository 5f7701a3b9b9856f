package config

import (
	"fmt"
	"strings"

	"github.com/erazemk/orodjarna/internal/blob"
)

// Validate performs range and consistency checks on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0 (got %s)", c.Server.ShutdownTimeout)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	if strings.TrimSpace(c.Auth.AdminUsername) == "" {
		return fmt.Errorf("auth.admin_username is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %s)", c.Auth.TokenTTL)
	}

	if c.Lifecycle.MaxAttempts < 1 {
		return fmt.Errorf("lifecycle.max_attempts must be >= 1 (got %d)", c.Lifecycle.MaxAttempts)
	}

	if err := c.Blob.validate(); err != nil {
		return fmt.Errorf("blob: %w", err)
	}

	if c.Image.MaxDimension <= 0 {
		return fmt.Errorf("image.max_dimension must be > 0 (got %d)", c.Image.MaxDimension)
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100 (got %d)", c.Image.Quality)
	}
	if c.Image.MaxBytes <= 0 {
		return fmt.Errorf("image.max_bytes must be > 0 (got %d)", c.Image.MaxBytes)
	}

	if !c.Metrics.Disabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

func (b *BlobConfig) validate() error {
	switch blob.Driver(b.Driver) {
	case blob.DriverFilesystem:
		if strings.TrimSpace(b.Root) == "" {
			return fmt.Errorf("root is required for the fs driver")
		}
	case blob.DriverS3:
		if b.S3Bucket == "" {
			return fmt.Errorf("s3_bucket is required for the s3 driver")
		}
	case blob.DriverMemory:
	default:
		return fmt.Errorf("unknown driver %q", b.Driver)
	}
	return nil
}
