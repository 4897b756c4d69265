// Package config loads runtime configuration for the medialog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the media store database file
//	-t string   scratch directory for materialized media
//	-i int      thumbnail backfill interval (seconds)
//	-r int      index refresh interval (seconds, 0 disables)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "store_path": "medialog.db",
//	  "max_index_bytes": 262144,
//	  "backfill_interval": "30s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
