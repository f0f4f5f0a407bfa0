// Package config loads runtime configuration for the planner CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed PLANNER_, optionally seeded from a
//     .env file (see parseEnv). Real environment variables win over the file.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the SQLite database
//	-l string   log level: debug, info, warn, error
//	-e string   directory for exported files
//	-x          seal stored data with a passphrase
//
// # JSON schema
//
//	{
//	  "database_path": "planner.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "export_dir": "exports",
//	  "history_file": ".planner_history",
//	  "encrypt": false,
//	  "view_cache_ttl": "30s",
//	  "timezone": "Asia/Seoul"
//	}
//
// view_cache_ttl uses timex.Duration, so it may also be integer nanoseconds.
package config
