// Package trace tags each request with an id and records its outcome.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "desembolsos/internal/log"
)

// HeaderRequestID carries the request id back to the client.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// Tracer assigns request ids and logs each request's start and completion.
type Tracer struct {
	clientIP func(*http.Request) string
	events   *applog.Events

	requests   atomic.Int64
	micros     atomic.Int64
	clientErrs atomic.Int64
	serverErrs atomic.Int64
}

// Metrics summarises the traced requests.
type Metrics struct {
	TotalRequests       int64 `json:"total_requests"`
	AverageResponseTime int64 `json:"avg_response_us"`
	ClientErrors        int64 `json:"client_errors"`
	ServerErrors        int64 `json:"server_errors"`
}

// NewTracer logs through logger; clientIP may be nil.
func NewTracer(logger *applog.Logger, clientIP func(*http.Request) string) *Tracer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if clientIP == nil {
		clientIP = func(*http.Request) string { return "" }
	}
	return &Tracer{
		clientIP: clientIP,
		events:   applog.NewEvents(logger.WithComponent(applog.ComponentTrace)),
	}
}

// Wrap traces every request served by next.
func (t *Tracer) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := NewRequestID()
		ip := t.clientIP(r)

		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
		w.Header().Set(HeaderRequestID, id)
		t.events.RequestStarted(r.Context(), r, id, ip)

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		status := sw.Status()
		elapsed := time.Since(start)

		t.requests.Add(1)
		t.micros.Add(elapsed.Microseconds())
		switch {
		case status >= 500:
			t.serverErrs.Add(1)
		case status >= 400:
			t.clientErrs.Add(1)
		}
		t.events.RequestFinished(r.Context(), r, id, ip, status, elapsed)
	})
}

func (t *Tracer) GetMetrics() Metrics {
	m := Metrics{
		TotalRequests: t.requests.Load(),
		ClientErrors:  t.clientErrs.Load(),
		ServerErrors:  t.serverErrs.Load(),
	}
	if m.TotalRequests > 0 {
		m.AverageResponseTime = t.micros.Load() / m.TotalRequests
	}
	return m
}

// statusWriter remembers the first status written; an implicit write
// counts as 200.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// NewRequestID returns "req_" followed by a random UUID.
func NewRequestID() string { return "req_" + uuid.NewString() }

// FromContext returns the request id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID reads the id assigned to r.
func RequestID(r *http.Request) string { return FromContext(r.Context()) }
