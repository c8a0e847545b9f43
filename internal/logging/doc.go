// Package logging provides structured logging with per-module log level configuration.
//
// The logging system uses Go's slog package. Records go to stdout (text or
// json format) and into an in-memory ring buffer so recent output can be
// replayed on demand, e.g. when dumping supervisor state while subprocess
// output is hidden.
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"supervisor": "debug",  // Per-module overrides
//			"trigger":    "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("supervisor")
//	logger.Info("Process started", "pid", pid)
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	supervisor = "debug"
package logging
