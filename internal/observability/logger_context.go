// Package observability carries request-scoped logging state through contexts
// so parse work started by an HTTP call or a queue record logs with the same
// correlation fields.
package observability

import (
	"context"
	"log/slog"
)

type (
	loggerKey    struct{}
	requestIDKey struct{}
)

// ContextWithLogger stores lg on ctx. A nil logger leaves ctx untouched.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, lg)
}

// LoggerFromContext falls back to slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && lg != nil {
			return lg
		}
	}
	return slog.Default()
}

// ContextWithAttrs derives the context logger with extra attributes, e.g. the
// candidate a background parse is working on.
func ContextWithAttrs(ctx context.Context, attrs ...any) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	return ContextWithLogger(ctx, LoggerFromContext(ctx).With(attrs...))
}

// ContextWithRequestID records the originating request id. Empty ids are ignored.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns "" when no id was recorded.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// Carry copies the logger and request id of src onto dst. Background work uses
// it to outlive the request context while keeping its correlation fields.
func Carry(dst, src context.Context) context.Context {
	if src == nil {
		return dst
	}
	if lg, ok := src.Value(loggerKey{}).(*slog.Logger); ok {
		dst = ContextWithLogger(dst, lg)
	}
	return ContextWithRequestID(dst, RequestIDFromContext(src))
}
