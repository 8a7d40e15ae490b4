// Package config provides centralized configuration management for the
// salescope server. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (config.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SALESCOPE_* for namespacing:
//
//	SALESCOPE_SERVER_PORT=8080
//	SALESCOPE_LOGGING_LEVEL=info
//	SALESCOPE_UPLOAD_MAX_FILE_BYTES=52428800
//	SALESCOPE_ANALYSIS_MAX_ROWS=200000
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//   - Required fields are present
//   - Values are within acceptable ranges
//   - The upload directory exists or can be created
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
