package log

import (
	"context"
	"log/slog"
	"net/http"
)

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger stored in ctx, or the default
// logger tagged with component "unknown".
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Scope narrows a request logger using data from the request.
type Scope func(*Logger, *http.Request) *Logger

// ForComponent tags the request logger with a component.
func ForComponent(component string) Scope {
	return func(l *Logger, _ *http.Request) *Logger { return l.WithComponent(component) }
}

// WithRequestID adds the id returned by extract to every request log line.
func WithRequestID(extract func(*http.Request) string) Scope {
	return func(l *Logger, r *http.Request) *Logger { return l.With(FieldRequestID, extract(r)) }
}

// Middleware seeds each request context with base.
func Middleware(base *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), base)))
		})
	}
}

// Narrow applies scopes, in order, to the logger already in the request
// context.
func Narrow(scopes ...Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := FromContext(r.Context())
			for _, s := range scopes {
				l = s(l, r)
			}
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
		})
	}
}
