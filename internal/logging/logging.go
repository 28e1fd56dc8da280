// Package logging provides structured logging setup and shared field
// names so log output stays consistent across the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Common field names used across commands and clients.
const (
	FieldEventID  = "event_id"
	FieldStatus   = "status"
	FieldRole     = "role"
	FieldDuration = "duration_ms"
	FieldError    = "error"
)

// New creates a logger with the given level and format. format can be
// "json" or "text" (default is text; this is a terminal tool). Logs go
// to stderr so they never interleave with command output.
func New(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
}

// EventID returns a slog attribute for a server-assigned event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// Status returns a slog attribute for an event delivery status.
func Status(status string) slog.Attr {
	return slog.String(FieldStatus, status)
}

// Role returns a slog attribute for a credential role.
func Role(role string) slog.Attr {
	return slog.String(FieldRole, role)
}

// Duration returns a slog attribute for elapsed milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error value.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
