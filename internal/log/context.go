package log

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// ModeLogger writes the engine's domain log lines.
type ModeLogger struct {
	logger *Logger
}

// NewModeLogger creates a ModeLogger. A nil logger uses slog.Default.
func NewModeLogger(logger *Logger) *ModeLogger {
	if logger == nil {
		logger = &Logger{Logger: slog.Default(), component: ComponentReconciler}
	}
	return &ModeLogger{logger: logger}
}

// LogTransition logs a detected change of one mode.
func (ml *ModeLogger) LogTransition(ctx context.Context, userID int64, mode string, change string, from, to int) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(OpRefresh)
	fields[FieldMode] = mode
	fields[FieldStatusChange] = change
	fields[FieldPrevProgress] = from
	fields[FieldProgress] = to

	ml.logger.InfoContext(ctx, "Mode changed", fields.ToSlice()...)
}

// LogRefresh logs the outcome of a full refresh.
func (ml *ModeLogger) LogRefresh(ctx context.Context, userID int64, transactions, events int, newlyUnlocked []string, durationMs int64) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(OpRefresh)
	fields[FieldTransactions] = transactions
	fields[FieldEvents] = events
	fields[FieldNewlyUnlocked] = newlyUnlocked
	fields[FieldDuration] = durationMs

	ml.logger.InfoContext(ctx, "Modes refreshed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (ml *ModeLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	ml.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
