// Package logging provides structured logging built on log/slog.
//
// The Logger carries service and version fields on every record so log
// aggregation can distinguish bot instances. Components receive a
// sub-logger via With("component", ...).
package logging
