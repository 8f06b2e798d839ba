package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Events writes the dashboard's recurring log records with a fixed field
// set, so request and report lines stay comparable across handlers.
type Events struct {
	logger *Logger
}

func NewEvents(logger *Logger) *Events {
	return &Events{logger: logger}
}

// RequestStarted records an incoming request.
func (e *Events) RequestStarted(ctx context.Context, r *http.Request, requestID, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	e.logger.WithComponent(ComponentHTTP).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// RequestFinished records the outcome of a request at info, warn for 4xx or
// error for 5xx.
func (e *Events) RequestFinished(ctx context.Context, r *http.Request, requestID, clientIP string, status int, elapsed time.Duration) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(status, elapsed.Milliseconds(), status < 400).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	e.logger.WithComponent(ComponentHTTP).Log(ctx, statusLevel(status), "HTTP request completed", fields.ToSlice()...)
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// ReportComputed records a report built on a cache miss.
func (e *Events) ReportComputed(ctx context.Context, granularity, filter string, matched, buckets, partners int) {
	fields := NewFields().
		WithReport(granularity, filter, matched, buckets, partners).
		WithOperation(OpRender)
	e.logger.WithComponent(ComponentReport).DebugContext(ctx, "Report computed", fields.ToSlice()...)
}

// Failure records err for operation op of component. fields may be nil.
func (e *Events) Failure(ctx context.Context, msg string, err error, component, op string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	e.logger.WithComponent(component).ErrorContext(ctx, msg, fields.WithError(err).WithOperation(op).ToSlice()...)
}
