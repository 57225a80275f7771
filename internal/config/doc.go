// Package config loads runtime configuration for runas.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / --config.
//  3. Command-line flags and their environment variables, which override
//     earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "1s" or integer
// nanoseconds. Keys that are absent keep the earlier value:
//
//	{
//	  "config_dir": "/etc/elasticsearch",
//	  "url": "https://localhost:9200",
//	  "request_timeout": "30s",
//	  "health_retries": 5,
//	  "retry_interval": "1s"
//	}
package config
