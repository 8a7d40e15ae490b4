// Package app provides application initialization and lifecycle
// management for the analysis service. It wires configuration, logging,
// metrics, the session store, the analysis service, and the HTTP router
// together at startup, and handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//  1. Load configuration from environment and files
//  2. Initialize logging
//  3. Register Prometheus metrics
//  4. Create the session store and analysis service
//  5. Set up HTTP handlers and middleware
//  6. Configure and start the HTTP server
//  7. Set up graceful shutdown handlers
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM to ensure active requests are
// completed, the session sweeper is stopped, and log files are flushed.
// Initialization errors are returned to the caller; the package never
// calls os.Exit() directly.
package app
