// Package config loads runtime configuration for the fleet console.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables with the FLEET_ prefix.
//  4. Command-line flags.
//
// Flags
//
//	-a string    base URL of the fleet REST API
//	-s string    host:port of the backend status (gRPC) endpoint
//	-d string    directory holding the local credential database
//	-t duration  per-request HTTP timeout
//	-i int       online status check interval (seconds)
//	-l string    log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "status_endpoint_addr": "127.0.0.1:50051",
//	  "data_dir": ".fleetconsole",
//	  "request_timeout": "15s",
//	  "online_check_interval": "3s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// # Environment
//
// FLEET_API_BASE_URL, FLEET_STATUS_ENDPOINT_ADDR, FLEET_DATA_DIR,
// FLEET_REQUEST_TIMEOUT, FLEET_ONLINE_CHECK_INTERVAL, FLEET_LOG_LEVEL,
// FLEET_LOG_FORMAT.
package config
