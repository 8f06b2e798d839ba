package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf})

	l.WithComponent(ComponentDataset).Info("loaded", FieldRecords, 3)
	require.Contains(t, buf.String(), "component=dataset")
	require.Contains(t, buf.String(), "records=3")

	buf.Reset()
	l.Debug("default component")
	require.Contains(t, buf.String(), "component=app")
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("dropped")
	require.Empty(t, buf.String())
	l.Warn("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestMiddlewareNarrow(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Output: &buf})

	var got *Logger
	h := Middleware(base)(
		Narrow(ForComponent(ComponentHTTP), WithRequestID(func(*http.Request) string { return "req-1" }))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = FromContext(r.Context())
				got.InfoContext(r.Context(), "inside")
			})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	require.Equal(t, ComponentHTTP, got.Component())
	require.Contains(t, buf.String(), "request_id=req-1")
	require.Contains(t, buf.String(), "component=http")
}

func TestFromContextDefault(t *testing.T) {
	l := FromContext(context.Background())
	require.Equal(t, "unknown", l.Component())
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	ev := NewEvents(New(Config{Level: slog.LevelDebug, Output: &buf}))
	req := httptest.NewRequest(http.MethodGet, "/ui/dashboard?granularity=QS", nil)

	ev.RequestFinished(context.Background(), req, "req-9", "10.0.0.1", http.StatusBadRequest, 3*time.Millisecond)
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "status_code=400")
	require.Contains(t, buf.String(), "request_id=req-9")

	buf.Reset()
	ev.RequestFinished(context.Background(), req, "req-9", "10.0.0.1", http.StatusBadGateway, time.Millisecond)
	require.Contains(t, buf.String(), "level=ERROR")

	buf.Reset()
	ev.ReportComputed(context.Background(), "QS", "partner=Acme", 10, 2, 1)
	require.Contains(t, buf.String(), "component=report")
	require.Contains(t, buf.String(), "matched_records=10")

	buf.Reset()
	ev.Failure(context.Background(), "export failed", errors.New("disk"), ComponentExport, OpExport, nil)
	require.Contains(t, buf.String(), "level=ERROR")
	require.Contains(t, buf.String(), "error=disk")
}
