// Package log provides structured event logging for the core.
//
// This package defines the Logger interface and Event type for capturing
// what the core does: connection attempts, monitor traffic, writes, cache
// lifecycle, and dispatch worker activity (including callback errors
// isolated on a worker). It is separate from operational logging - the
// event stream is a machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Components accept a Logger; provide whichever implementation fits:
//
//	// For development: log to console via slog
//	d := dispatch.New(log.NewSlogAdapter(slog.Default()), "monitor")
//
//	// For capture: write CBOR to a file
//	fl, _ := log.NewFileLogger("/var/log/sigflow/session.slog")
//
//	// Both at once
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Capture files are a concatenation of CBOR-encoded Events with integer
// keys. Reader streams them back, optionally filtered by session,
// category, device, signal or time window.
package log
