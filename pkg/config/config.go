package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultPresignExpiry is the default validity window for presigned
	// upload URLs.
	DefaultPresignExpiry = "1h"
)

// Config is the root configuration for uploadoor.
type Config struct {
	Global GlobalConfig `yaml:"global"`
	Upload UploadConfig `yaml:"upload"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// UploadConfig contains upload destination settings.
type UploadConfig struct {
	S3 *S3Config `yaml:"s3,omitempty"`
}

// S3Config contains S3 settings for presigned upload URL generation.
// Credentials left empty fall back to the AWS_* environment variables at
// load time; if those are absent too, the SDK's default lazy resolution
// applies and misconfiguration surfaces on first use, not at construction.
type S3Config struct {
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	SessionToken    string `yaml:"session_token,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	PresignExpiry   string `yaml:"presign_expiry,omitempty"`
}

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and an empty
// S3 section, for callers that configure the destination via flags.
func Default() *Config {
	cfg := &Config{
		Upload: UploadConfig{S3: &S3Config{}},
	}

	cfg.applyDefaults()

	return cfg
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Upload.S3 == nil {
		return
	}

	s3 := c.Upload.S3

	if s3.PresignExpiry == "" {
		s3.PresignExpiry = DefaultPresignExpiry
	}

	// Ambient credentials, read once at load time. Absence is not an
	// error here; the SDK resolves credentials lazily on first use.
	if s3.AccessKeyID == "" {
		s3.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	}

	if s3.SecretAccessKey == "" {
		s3.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	if s3.SessionToken == "" {
		s3.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Upload.S3 == nil {
		return fmt.Errorf("upload.s3 section is required")
	}

	s3 := c.Upload.S3

	if s3.Bucket == "" {
		return fmt.Errorf("upload.s3.bucket is required")
	}

	if s3.Key == "" {
		return fmt.Errorf("upload.s3.key is required")
	}

	if s3.PresignExpiry != "" {
		if _, err := time.ParseDuration(s3.PresignExpiry); err != nil {
			return fmt.Errorf("invalid upload.s3.presign_expiry %q: %w", s3.PresignExpiry, err)
		}
	}

	return nil
}
