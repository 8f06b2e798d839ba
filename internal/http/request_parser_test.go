package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"desembolsos/internal/core"
)

func TestDashboardQueryParams(t *testing.T) {
	tests := []struct {
		name     string
		query    url.Values
		def      core.Granularity
		wantG    core.Granularity
		wantKey  string
		wantErr  bool
		errField string
	}{
		{
			name:    "empty query uses default",
			query:   url.Values{},
			def:     core.Semesterly,
			wantG:   core.Semesterly,
			wantKey: "6MS|",
		},
		{
			name:    "missing default falls back to semesterly",
			query:   url.Values{},
			wantG:   core.Semesterly,
			wantKey: "6MS|",
		},
		{
			name:    "code",
			query:   url.Values{"granularity": {"QS"}},
			def:     core.Semesterly,
			wantG:   core.Quarterly,
			wantKey: "QS|",
		},
		{
			name:    "name is case insensitive",
			query:   url.Values{"granularity": {"Yearly"}},
			def:     core.Semesterly,
			wantG:   core.Yearly,
			wantKey: "YS|",
		},
		{
			name:    "dimension values are trimmed and ordered",
			query:   url.Values{"partner": {" Globex", "Acme", ""}, "area": {"Saúde"}},
			def:     core.Monthly,
			wantG:   core.Monthly,
			wantKey: "MS|area=Saúde;partner=Acme\x1fGlobex",
		},
		{
			name:     "unknown granularity",
			query:    url.Values{"granularity": {"weekly"}},
			def:      core.Semesterly,
			wantErr:  true,
			errField: "granularity",
		},
		{
			name:     "value too long",
			query:    url.Values{"unit": {strings.Repeat("x", 201)}},
			def:      core.Semesterly,
			wantErr:  true,
			errField: "unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ReadDashboardQuery(tt.query).Params(tt.def)
			if tt.wantErr {
				var qe *QueryError
				if !errors.As(err, &qe) {
					t.Fatalf("error = %v, want *QueryError", err)
				}
				if qe.Field != tt.errField {
					t.Errorf("Field = %q, want %q", qe.Field, tt.errField)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if params.Granularity != tt.wantG {
				t.Errorf("Granularity = %v, want %v", params.Granularity, tt.wantG)
			}
			if params.CacheKey() != tt.wantKey {
				t.Errorf("CacheKey = %q, want %q", params.CacheKey(), tt.wantKey)
			}
		})
	}
}

func TestDashboardQueryTooManyValues(t *testing.T) {
	q := url.Values{}
	for i := 0; i < 101; i++ {
		q.Add("foundation", "f")
	}
	_, err := ReadDashboardQuery(q).Params(core.Semesterly)
	var qe *QueryError
	if !errors.As(err, &qe) || qe.Field != "foundation" {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(qe.Reason, "at most 100") {
		t.Errorf("Reason = %q", qe.Reason)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Acme  ", "Acme"},
		{"Ac\x00me", "Acme"},
		{"a\tb", "a\tb"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequireGET(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead} {
		if resp := RequireGET(httptest.NewRequest(m, "/", nil)); resp != nil {
			t.Errorf("%s should be allowed", m)
		}
	}

	resp := RequireGET(httptest.NewRequest(http.MethodPost, "/", nil))
	if resp == nil {
		t.Fatal("POST should be rejected")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET" {
		t.Errorf("status = %d, Allow = %q", w.Code, w.Header().Get("Allow"))
	}
}
