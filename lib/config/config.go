// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when no --config
// flag is given.
const EnvironmentVariable = "RUNHISTORY_CONFIG"

// Config is the configuration of runhistory-service.
type Config struct {
	// LogDirectory is the event log directory as a store location:
	// an absolute path, file:///path, gs://bucket/prefix,
	// s3://bucket/prefix or mem://.
	LogDirectory string `yaml:"log_directory"`

	// UpdateInterval is the delay between the end of one scan and
	// the start of the next.
	// Default: 10s
	UpdateInterval time.Duration `yaml:"update_interval"`

	// Replay tunes the scanner's replay pool.
	Replay ReplayConfig `yaml:"replay"`

	// Cleaner configures retention.
	Cleaner CleanerConfig `yaml:"cleaner"`

	// SocketPath is where the service listens for CLI requests.
	// Default: /run/bureau/runhistory.sock
	SocketPath string `yaml:"socket_path"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	S3  S3Config  `yaml:"s3"`
	GCS GCSConfig `yaml:"gcs"`
}

// ReplayConfig tunes replay.
type ReplayConfig struct {
	// Workers is the number of batches replayed concurrently.
	// Default: 1
	Workers int `yaml:"workers"`

	// BatchSize is the number of logs per batch.
	// Default: 20
	BatchSize int `yaml:"batch_size"`
}

// CleanerConfig configures retention.
type CleanerConfig struct {
	// Enabled turns on the retention sweeper.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Interval is the delay between sweeps.
	// Default: 24h
	Interval time.Duration `yaml:"interval"`

	// MaxAge is how long a completed log may go unmodified before it
	// is expired and deleted.
	// Default: 168h
	MaxAge time.Duration `yaml:"max_age"`
}

// S3Config configures s3:// log directories. Credentials are read from
// the environment variables named here, never from the file.
type S3Config struct {
	// Endpoint is the host[:port] of the S3-compatible service.
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`

	// UseSSL selects https.
	// Default: true
	UseSSL bool `yaml:"use_ssl"`

	// Default: RUNHISTORY_S3_ACCESS_KEY
	AccessKeyEnv string `yaml:"access_key_env"`

	// Default: RUNHISTORY_S3_SECRET_KEY
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// GCSConfig configures gs:// log directories.
type GCSConfig struct {
	// CredentialsFile is a service account key file. Empty means
	// application default credentials.
	CredentialsFile string `yaml:"credentials_file"`
}

// Default returns the configuration that a file is loaded on top of.
// LogDirectory has no default; the file must set it.
func Default() *Config {
	return &Config{
		UpdateInterval: 10 * time.Second,
		Replay: ReplayConfig{
			Workers:   1,
			BatchSize: 20,
		},
		Cleaner: CleanerConfig{
			Enabled:  false,
			Interval: 24 * time.Hour,
			MaxAge:   7 * 24 * time.Hour,
		},
		SocketPath: "/run/bureau/runhistory.sock",
		LogLevel:   "info",
		S3: S3Config{
			UseSSL:       true,
			AccessKeyEnv: "RUNHISTORY_S3_ACCESS_KEY",
			SecretKeyEnv: "RUNHISTORY_S3_SECRET_KEY",
		},
	}
}

// Load loads the file named by RUNHISTORY_CONFIG. There is no search
// path: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your runhistory.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. Files ending in .json or
// .jsonc may contain comments and trailing commas; anything else is
// YAML. ${VAR} and ${VAR:-default} are expanded in path fields.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.LogDirectory = expandVars(c.LogDirectory)
	c.SocketPath = expandVars(c.SocketPath)
	c.GCS.CredentialsFile = expandVars(c.GCS.CredentialsFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Validate checks the configuration for errors and reports all of
// them at once.
func (c *Config) Validate() error {
	var errs []error

	if c.LogDirectory == "" {
		errs = append(errs, errors.New("log_directory is required"))
	}
	if c.UpdateInterval <= 0 {
		errs = append(errs, fmt.Errorf("update_interval must be positive, got %s", c.UpdateInterval))
	}
	if c.Replay.Workers < 1 {
		errs = append(errs, fmt.Errorf("replay.workers must be at least 1, got %d", c.Replay.Workers))
	}
	if c.Replay.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("replay.batch_size must be at least 1, got %d", c.Replay.BatchSize))
	}
	if c.Cleaner.Enabled {
		if c.Cleaner.Interval <= 0 {
			errs = append(errs, fmt.Errorf("cleaner.interval must be positive, got %s", c.Cleaner.Interval))
		}
		if c.Cleaner.MaxAge <= 0 {
			errs = append(errs, fmt.Errorf("cleaner.max_age must be positive, got %s", c.Cleaner.MaxAge))
		}
	}
	if c.SocketPath == "" {
		errs = append(errs, errors.New("socket_path is required"))
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// SlogLevel returns LogLevel as a slog level, info if unrecognized.
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[c.LogLevel]; ok {
		return level
	}
	return slog.LevelInfo
}

// S3Credentials reads the S3 access and secret keys from the
// configured environment variables.
func (c *Config) S3Credentials() (accessKey, secretKey string) {
	return os.Getenv(c.S3.AccessKeyEnv), os.Getenv(c.S3.SecretKeyEnv)
}
