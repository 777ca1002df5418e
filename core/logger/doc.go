// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different
// environments (development vs production).
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Watcher started")
//
// Stores and sync engines treat logging as optional: pass nil and they
// use a no-op logger internally.
package logger
