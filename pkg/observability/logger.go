package observability

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger. format is "json" or
// "text"; unknown levels fall back to info.
func SetupLogger(level, format string, output io.Writer) {
	if output != nil {
		logrus.SetOutput(output)
	}

	switch strings.ToLower(format) {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	logrus.SetLevel(ParseLevel(level))
}

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// contextKey is the type for context keys
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger adds a logger entry to the context
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the request-scoped logger, annotated with the request
// id when one is present. Falls back to the global logger.
func FromContext(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(LoggerKey).(*logrus.Entry)
	if !ok {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		logger = logger.WithField("request_id", requestID)
	}
	return logger
}
