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
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return l.WithRequestID(requestID)
	}

	return l
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithProvider returns a logger scoped to one upstream supplier.
func (l *Logger) WithProvider(provider string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("provider", provider)),
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

// ProviderCall logs one outbound supplier API call.
func (l *Logger) ProviderCall(provider, method string, status int, latencyMs float64) {
	l.Debug("provider_call",
		slog.String("provider", provider),
		slog.String("method", method),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
	)
}

// ProviderError logs a failed supplier API call with its cause.
func (l *Logger) ProviderError(provider, method string, err error) {
	l.Error("provider_error",
		slog.String("provider", provider),
		slog.String("method", method),
		slog.String("error", err.Error()),
	)
}

// CacheEvent logs a search cache hit, miss, write or sweep.
func (l *Logger) CacheEvent(event, hash string, capability string) {
	l.Debug("cache_event",
		slog.String("event", event),
		slog.String("hash", hash),
		slog.String("capability", capability),
	)
}

// SearchCompleted logs one finished search fan-out.
func (l *Logger) SearchCompleted(capability string, results, succeeded, failed int, cached bool, latencyMs float64) {
	l.Info("search_completed",
		slog.String("capability", capability),
		slog.Int("results", results),
		slog.Int("providers_succeeded", succeeded),
		slog.Int("providers_failed", failed),
		slog.Bool("cached", cached),
		slog.Float64("latency_ms", latencyMs),
	)
}

// RateLimitExceeded logs rate limit violations
func (l *Logger) RateLimitExceeded(identifier, endpoint string) {
	l.Warn("rate_limit_exceeded",
		slog.String("identifier", identifier),
		slog.String("endpoint", endpoint),
	)
}
