// Package logging defines a minimal structured-logging interface shared by
// all BoardKeeper components. Implementations can wrap slog, zap, zerolog,
// etc.; the server wires the slog implementation from this package.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// interpreted as key-value pairs:
//
//	log.Info(ctx, "room saved", "room_id", roomID, "scene_version", v)
type Logger interface {
	// Debug logs fine-grained diagnostics (cache hits, sweep counts).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given
	// key-value pairs.
	With(args ...any) Logger
}
