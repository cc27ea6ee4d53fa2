// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// TenantKey is the context key for the tenant initials
	TenantKey contextKey = "tenant"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and tenant from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if tenant, ok := ctx.Value(TenantKey).(string); ok && tenant != "" {
		newLogger = newLogger.WithTenant(tenant)
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithTenant returns a logger with the tenant initials
func (l *Logger) WithTenant(tenant string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("tenant", tenant)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// RegistryCall logs an outbound call to the practice-management registry.
func (l *Logger) RegistryCall(method, endpoint string, status int, latencyMs float64) {
	l.Info("registry_call",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
	)
}

// RegistryError logs a failed outbound call with the raw response body
// captured for diagnostics.
func (l *Logger) RegistryError(method, endpoint string, status int, body string) {
	l.Error("registry_error",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.String("body", body),
	)
}

// Reconciliation logs the outcome of a contact reconciliation pass.
func (l *Logger) Reconciliation(entityType string, registryID int64, updated bool, emptyFields int) {
	l.Info("contact_reconciled",
		slog.String("entity_type", entityType),
		slog.Int64("registry_id", registryID),
		slog.Bool("updated", updated),
		slog.Int("empty_fields", emptyFields),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
