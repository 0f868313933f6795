package config

import (
	"fmt"
	"strings"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, user file first.
	Files []string
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Drivers lists the supported store drivers.
func Drivers() []string {
	return []string{DriverFile, DriverMemory, DriverSQLite, DriverPostgres, DriverS3}
}

// Default values.
const (
	DefaultDriver    = DriverFile
	DefaultLogDir    = "~/.rxtodo"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultS3Prefix  = "rxtodo"
)

// Config holds the full configuration for rxtodo.
type Config struct {
	Store StoreConfig `toml:"store"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// MetricsAddr enables the Prometheus /metrics endpoint when set.
	MetricsAddr string `toml:"metrics_addr"`

	// Computed
	ProjectRoot string `toml:"-"`
}

// StoreConfig selects and configures the key-value store.
type StoreConfig struct {
	Driver string   `toml:"driver"`
	Path   string   `toml:"path"` // file and sqlite drivers
	DSN    string   `toml:"dsn"`  // postgres driver
	S3     S3Config `toml:"s3"`
}

// S3Config configures the s3 driver.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	Prefix    string `toml:"prefix"`
	PathStyle bool   `toml:"path_style"`
}

// Validate checks the store settings for the selected driver.
func (sc StoreConfig) Validate() error {
	switch sc.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres:
		return nil
	case DriverS3:
		if sc.S3.Bucket == "" {
			return fmt.Errorf("store.s3.bucket is required for the s3 driver")
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q (want one of %s)", sc.Driver, strings.Join(Drivers(), ", "))
	}
}
