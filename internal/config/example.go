package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# rxtodo configuration file
# Values can be overridden by RXTODO_* environment variables or CLI flags

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.rxtodo"

# Log level: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"
log_timestamps = false
log_caller = false

# Serve Prometheus metrics on this address (disabled when empty)
# metrics_addr = ":9090"

[store]
# Driver: file, memory, sqlite, postgres, s3
driver = "file"

# File or database path for the file and sqlite drivers
# (default: .rxtodo/store.json or .rxtodo/rxtodo.db in the project root)
# path = ".rxtodo/store.json"

# Connection string for the postgres driver
# dsn = "postgres://localhost/rxtodo?sslmode=disable"

# S3-compatible bucket for the s3 driver
# Credentials come from the standard AWS environment and shared config
[store.s3]
# bucket = "my-bucket"
# region = "us-east-1"
# endpoint = "http://localhost:9000"
prefix = "rxtodo"
path_style = false
`
}
