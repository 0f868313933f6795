package config

import "flag"

// parseFlags defines and parses the global CLI flags. Only flags that are
// explicitly set override cfg. If sources is non-nil, it tracks the source
// of each value.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("rxtodo", flag.ContinueOnError)
	}

	// Flag binding from flag name to config field
	type flagBinding struct {
		field string
		apply func()
	}
	bindings := make(map[string]flagBinding)

	str := func(name, field string, target *string, usage string) {
		v := fs.String(name, *target, usage)
		bindings[name] = flagBinding{field: field, apply: func() { *target = *v }}
	}
	boolean := func(name, field string, target *bool, usage string) {
		v := fs.Bool(name, *target, usage)
		bindings[name] = flagBinding{field: field, apply: func() { *target = *v }}
	}

	// Store
	str("store", "store.driver", &cfg.Store.Driver, "Store driver (file, memory, sqlite, postgres, s3)")
	str("store-path", "store.path", &cfg.Store.Path, "Store file path (file and sqlite drivers)")
	str("dsn", "store.dsn", &cfg.Store.DSN, "Postgres connection string")
	str("s3-bucket", "store.s3.bucket", &cfg.Store.S3.Bucket, "S3 bucket")
	str("s3-region", "store.s3.region", &cfg.Store.S3.Region, "S3 region")
	str("s3-endpoint", "store.s3.endpoint", &cfg.Store.S3.Endpoint, "S3 endpoint (for MinIO and other compatible services)")
	str("s3-prefix", "store.s3.prefix", &cfg.Store.S3.Prefix, "S3 object key prefix")
	boolean("s3-path-style", "store.s3.path_style", &cfg.Store.S3.PathStyle, "Use path-style S3 addressing")

	// Logging
	str("log-dir", "log_dir", &cfg.LogDir, "Log directory")
	str("log-level", "log_level", &cfg.LogLevel, "Log level (debug, info, warn, error)")
	str("log-format", "log_format", &cfg.LogFormat, "Log format (text, json, logfmt)")
	boolean("log-timestamps", "log_timestamps", &cfg.LogTimestamps, "Show timestamps in logs")
	boolean("log-caller", "log_caller", &cfg.LogCaller, "Show caller location in logs")

	// Metrics
	str("metrics-addr", "metrics_addr", &cfg.MetricsAddr, "Serve Prometheus metrics on this address (e.g. :9090)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Apply only the flags that were set
	fs.Visit(func(f *flag.Flag) {
		b, ok := bindings[f.Name]
		if !ok {
			return
		}
		b.apply()
		if sources != nil {
			sources[b.field] = SourceFlag
		}
	})

	return nil
}
