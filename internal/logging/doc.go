// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package logging is rmpd's zerolog-based structured logging layer.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Global logger configuration, set once at daemon startup
//   - An slog adapter (slog_adapter.go) bridging to the suture v4 supervisor
//     tree and internal/protocol.Server, both of which take a *slog.Logger
//
// # Quick Start
//
//	import "github.com/rmpd/rmpd/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("command", "play").Msg("command dispatched")
//	logging.Error().Err(err).Msg("scan failed")
//
// # Configuration
//
// Programmatic configuration only; there is no environment-variable layer
// here, and config-file/flag parsing happens outside this module:
//
//	logging.Init(logging.Config{
//	    Level:     "debug",    // trace, debug, info, warn, error, fatal
//	    Format:    "console",  // json or console
//	    Caller:    true,       // Include caller info
//	    Timestamp: true,       // Include timestamps
//	    Output:    os.Stderr,  // Output writer
//	})
//
// # Log Levels
//
// Supported log levels (from most to least verbose):
//
//	trace  - Very detailed diagnostic information
//	debug  - Per-connection/per-command tracing (internal/protocol.Server)
//	info   - General operational information (default)
//	warn   - Warning conditions that should be addressed
//	error  - Error conditions requiring attention
//	fatal  - Fatal errors that terminate the program
//	panic  - Panic conditions that crash the program
//
// # Structured Logging Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	// Good - structured, searchable, efficient
//	logging.Info().
//	    Str("command", cmd.Name).
//	    Int("args", len(cmd.Args)).
//	    Dur("elapsed", duration).
//	    Msg("command handled")
//
//	// Avoid - unstructured, harder to parse
//	logging.Info().Msgf("handled %s with %d args in %v", cmd.Name, len(cmd.Args), duration)
//
// # Component Loggers
//
// Create component-specific loggers with default fields:
//
//	catalogLogger := logging.With().Str("component", "catalog").Logger()
//	catalogLogger.Info().Msg("scan started")
//	catalogLogger.Error().Err(err).Msg("scan failed")
//
// # slog Adapter
//
// internal/logging/slog_adapter.go exposes an slog.Handler so code that
// only knows about log/slog (the suture supervisor tree,
// internal/protocol.Server.Logger) writes through the same global logger:
//
//	slogLogger := logging.NewSlogLoggerWithLevel("info")
//	hook := (&sutureslog.Handler{Logger: slogLogger}).MustHook()
//	super := suture.New("rmpd", suture.Spec{EventHook: hook})
//
// # Output Formats
//
// JSON Format (Production):
//
//	{"level":"info","time":"2026-01-03T10:30:00Z","message":"scan started","component":"catalog"}
//
// Console Format (Development):
//
//	10:30:00 INF scan started component=catalog
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
//
// # See Also
//
//   - github.com/rs/zerolog: Underlying logging library
//   - internal/middleware: RequestID middleware, which reads/writes the
//     request ID this package's context.go carries
package logging
