// Package config loads orodjarna's runtime configuration.
package config

import (
	"time"

	"github.com/erazemk/orodjarna/internal/blob"
	"github.com/erazemk/orodjarna/internal/imaging"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Blob      BlobConfig      `yaml:"blob"`
	Image     ImageConfig     `yaml:"image"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"orodjarna.sqlite3"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	// File, when set, receives a copy of every log line.
	File string `yaml:"file" env:"LOG_FILE"`
}

type AuthConfig struct {
	AdminUsername string        `yaml:"admin_username" env:"AUTH_ADMIN_USERNAME" env-default:"admin"`
	TokenTTL      time.Duration `yaml:"token_ttl"      env:"AUTH_TOKEN_TTL"      env-default:"168h"`
}

type LifecycleConfig struct {
	MaxAttempts int `yaml:"max_attempts" env:"LIFECYCLE_MAX_ATTEMPTS" env-default:"3"`
}

type BlobConfig struct {
	Driver      string `yaml:"driver"        env:"BLOB_DRIVER"        env-default:"fs"`
	Root        string `yaml:"root"          env:"BLOB_ROOT"          env-default:"data/blobs"`
	S3Bucket    string `yaml:"s3_bucket"     env:"BLOB_S3_BUCKET"`
	S3Region    string `yaml:"s3_region"     env:"BLOB_S3_REGION"`
	S3Endpoint  string `yaml:"s3_endpoint"   env:"BLOB_S3_ENDPOINT"`
	S3PathStyle bool   `yaml:"s3_path_style" env:"BLOB_S3_PATH_STYLE"`
	S3Prefix    string `yaml:"s3_prefix"     env:"BLOB_S3_PREFIX"`
}

type ImageConfig struct {
	MaxDimension int   `yaml:"max_dimension" env:"IMAGE_MAX_DIMENSION" env-default:"1024"`
	Quality      int   `yaml:"quality"       env:"IMAGE_QUALITY"       env-default:"85"`
	MaxBytes     int64 `yaml:"max_bytes"     env:"IMAGE_MAX_BYTES"     env-default:"10485760"`
}

// MetricsConfig: metrics are served unless Disabled.
type MetricsConfig struct {
	Disabled bool   `yaml:"disabled" env:"METRICS_DISABLED"`
	Path     string `yaml:"path"     env:"METRICS_PATH"     env-default:"/metrics"`
}

// BlobStore converts the blob section into the backend configuration.
func (b BlobConfig) BlobStore() blob.Config {
	return blob.Config{
		Driver: blob.Driver(b.Driver),
		Root:   b.Root,
		S3: blob.S3Config{
			Bucket:    b.S3Bucket,
			Region:    b.S3Region,
			Endpoint:  b.S3Endpoint,
			PathStyle: b.S3PathStyle,
			Prefix:    b.S3Prefix,
		},
	}
}

func (i ImageConfig) Options() imaging.Options {
	return imaging.Options{
		MaxDimension: i.MaxDimension,
		JPEGQuality:  i.Quality,
		MaxBytes:     i.MaxBytes,
	}
}
