package security

import (
	"net/http"
	"strconv"
	"strings"
)

// HeadersConfig lists the response headers applied to every page. Empty
// fields are not sent.
type HeadersConfig struct {
	CSP                 []string
	FrameOptions        string
	ContentTypeOptions  string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// HSTSMaxAge in seconds; sent only on TLS requests.
	HSTSMaxAge     int
	HSTSSubdomains bool
}

// DefaultHeadersConfig permits the htmx and Chart.js bundles from unpkg and
// the logo host. Everything else is same-origin.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: []string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data: https://encrypted-tbn0.gstatic.com",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		},
		FrameOptions:        "DENY",
		ContentTypeOptions:  "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",
		HSTSMaxAge:          365 * 24 * 60 * 60,
		HSTSSubdomains:      true,
	}
}

type header struct{ name, value string }

// Headers returns middleware that sets the configured headers before the
// handler runs.
func Headers(cfg HeadersConfig) func(http.Handler) http.Handler {
	var fixed []header
	add := func(name, value string) {
		if value != "" {
			fixed = append(fixed, header{name, value})
		}
	}
	add("Content-Security-Policy", strings.Join(cfg.CSP, "; "))
	add("X-Frame-Options", cfg.FrameOptions)
	add("X-Content-Type-Options", cfg.ContentTypeOptions)
	add("Referrer-Policy", cfg.ReferrerPolicy)
	add("Permissions-Policy", cfg.PermissionsPolicy)
	add("Cross-Origin-Opener-Policy", cfg.CrossOriginOpener)
	add("Cross-Origin-Resource-Policy", cfg.CrossOriginResource)

	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, f := range fixed {
				h.Set(f.name, f.value)
			}
			if hsts != "" && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CacheStatic marks responses as publicly cacheable for maxAge seconds.
func CacheStatic(maxAge int) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
