// Package corelog is the core's structured logging seam: the handful of
// conditions the core swallows rather than propagating (implicit cloud push
// failures, key-fingerprint mismatches) still need to be visible to
// whatever wraps the core, without blocking the calling operation.
//
// ANSI pretty-printing is deliberately out of scope here; callers that want
// a colorised terminal presentation build it on top of a slog.Handler.
package corelog

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
)

// SetOutput replaces the destination logger, letting an embedding CLI or
// test redirect output.
func SetOutput(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func toAttrs(fields map[string]interface{}) []any {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, redactField(k, v))
	}
	return attrs
}

// Warn logs a non-fatal condition the core swallowed on the caller's
// behalf, such as a transient I/O failure on an implicit cloud push.
func Warn(msg string, fields map[string]interface{}) {
	current().Warn(msg, toAttrs(fields)...)
}

// Info logs a routine, expected event.
func Info(msg string, fields map[string]interface{}) {
	current().Info(msg, toAttrs(fields)...)
}

// Error logs a condition that failed an explicit, caller-visible operation.
func Error(msg string, fields map[string]interface{}) {
	current().Error(msg, toAttrs(fields)...)
}

// Debug logs verbose internal detail, suppressed by slog's default level.
func Debug(msg string, fields map[string]interface{}) {
	current().Debug(msg, toAttrs(fields)...)
}

// WarnContext is Warn with a context, for call sites that already carry one
// and want it attached to the log record's handler chain.
func WarnContext(ctx context.Context, msg string, fields map[string]interface{}) {
	current().WarnContext(ctx, msg, toAttrs(fields)...)
}
