// Package http provides HTTP server and handler implementations.
//
// This file parses and validates dashboard query strings.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"desembolsos/internal/core"
)

const (
	maxFilterValues   = 100
	maxFilterValueLen = 200
)

// DashboardQuery is the raw query of every dashboard endpoint.
type DashboardQuery struct {
	Granularity string   `validate:"omitempty,granularity"`
	Process     []string `validate:"max=100,dive,max=200"`
	Area        []string `validate:"max=100,dive,max=200"`
	Unit        []string `validate:"max=100,dive,max=200"`
	Partner     []string `validate:"max=100,dive,max=200"`
	Foundation  []string `validate:"max=100,dive,max=200"`
}

// DashboardParams is a validated dashboard selection.
type DashboardParams struct {
	Granularity core.Granularity
	Filter      core.Filter
}

// CacheKey identifies the report the params select.
func (p DashboardParams) CacheKey() string {
	return string(p.Granularity) + "|" + p.Filter.Canonical()
}

// QueryError is returned for a query that fails validation.
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query parameter %s: %s", e.Field, e.Reason)
}

var queryValidator = newQueryValidator()

func newQueryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("granularity", func(fl validator.FieldLevel) bool {
		_, err := core.ParseGranularity(fl.Field().String())
		return err == nil
	})
	return v
}

// ReadDashboardQuery copies the recognised parameters out of q. Dimensions
// are repeated keys, one value each.
func ReadDashboardQuery(q url.Values) DashboardQuery {
	return DashboardQuery{
		Granularity: strings.TrimSpace(q.Get("granularity")),
		Process:     q[core.Process.Key()],
		Area:        q[core.Area.Key()],
		Unit:        q[core.Unit.Key()],
		Partner:     q[core.Partner.Key()],
		Foundation:  q[core.Foundation.Key()],
	}
}

// Params validates the query and resolves it against a default granularity.
func (q DashboardQuery) Params(def core.Granularity) (DashboardParams, error) {
	if err := queryValidator.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return DashboardParams{}, queryErrorFrom(verrs[0])
		}
		return DashboardParams{}, fmt.Errorf("validate query: %w", err)
	}

	params := DashboardParams{Granularity: def, Filter: core.Filter{}}
	if q.Granularity != "" {
		g, err := core.ParseGranularity(q.Granularity)
		if err != nil {
			return DashboardParams{}, &QueryError{Field: "granularity", Reason: err.Error()}
		}
		params.Granularity = g
	}
	if params.Granularity == "" {
		params.Granularity = core.DefaultGranularity
	}

	for d, vs := range map[core.Dimension][]string{
		core.Process:    q.Process,
		core.Area:       q.Area,
		core.Unit:       q.Unit,
		core.Partner:    q.Partner,
		core.Foundation: q.Foundation,
	} {
		var kept []string
		for _, v := range vs {
			if v = sanitizeInput(v); v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			params.Filter[d] = kept
		}
	}
	return params, nil
}

func queryErrorFrom(fe validator.FieldError) *QueryError {
	field := strings.ToLower(fe.StructField())
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	switch fe.Tag() {
	case "granularity":
		return &QueryError{Field: field, Reason: fmt.Sprintf("unknown granularity %q", fe.Value())}
	case "max":
		if fe.Kind() == reflect.Slice {
			return &QueryError{Field: field, Reason: fmt.Sprintf("at most %d values allowed", maxFilterValues)}
		}
		return &QueryError{Field: field, Reason: fmt.Sprintf("values are limited to %d characters", maxFilterValueLen)}
	}
	return &QueryError{Field: field, Reason: fe.Tag()}
}

// ParseDashboardRequest reads and validates the dashboard query of r.
func ParseDashboardRequest(r *http.Request, def core.Granularity) (DashboardParams, error) {
	return ReadDashboardQuery(r.URL.Query()).Params(def)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod returns a 405 response unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *Response {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowed(strings.Join(methods, ", "))
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *Response {
	if r.Method == http.MethodHead {
		return nil
	}
	return RequireMethod(r, http.MethodGet)
}
