package config

import "os"

// loadFromEnv overrides config from environment variables. If sources is
// non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	str := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			set(field)
		}
	}
	boolean := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			set(field)
		}
	}

	// Store
	str("RXTODO_STORE", "store.driver", &cfg.Store.Driver)
	str("RXTODO_STORE_PATH", "store.path", &cfg.Store.Path)
	str("RXTODO_STORE_DSN", "store.dsn", &cfg.Store.DSN)
	str("RXTODO_S3_BUCKET", "store.s3.bucket", &cfg.Store.S3.Bucket)
	str("RXTODO_S3_REGION", "store.s3.region", &cfg.Store.S3.Region)
	str("RXTODO_S3_ENDPOINT", "store.s3.endpoint", &cfg.Store.S3.Endpoint)
	str("RXTODO_S3_PREFIX", "store.s3.prefix", &cfg.Store.S3.Prefix)
	boolean("RXTODO_S3_PATH_STYLE", "store.s3.path_style", &cfg.Store.S3.PathStyle)

	// Logging configuration
	str("RXTODO_LOG_DIR", "log_dir", &cfg.LogDir)
	str("RXTODO_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("RXTODO_LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("RXTODO_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("RXTODO_LOG_CALLER", "log_caller", &cfg.LogCaller)

	str("RXTODO_METRICS_ADDR", "metrics_addr", &cfg.MetricsAddr)
}
