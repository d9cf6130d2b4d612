// Package config loads runtime configuration for gophterm.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config or the GOPHTERM_CONFIG
//     environment variable.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string        staging directory for encrypted bulk files
//	-p int           progress publication interval (milliseconds)
//	-w int           upload envelope line width (base64 characters, multiple of 4)
//	-b int           transport write buffer budget (bytes)
//	-wheel-keys      report the mouse wheel as cursor keys when not reported
//	-wheel-repeat n  cursor key repeat count per wheel notch
//	-l string        log level: debug, info, warn, error
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "250ms" or
// integer nanoseconds:
//
//	{
//	  "staging_dir": "/var/tmp/gophterm",
//	  "progress_interval": "250ms",
//	  "line_width": 80,
//	  "transport_buffer_size": 65536,
//	  "wheel_as_cursor_keys": true,
//	  "wheel_repeat": 3,
//	  "log_level": "debug"
//	}
package config
