package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"desembolsos/internal/cache"
	"desembolsos/internal/core"
	"desembolsos/internal/dataset"
	applog "desembolsos/internal/log"
	"desembolsos/internal/middleware/ratelimit"
	"desembolsos/internal/middleware/security"
	"desembolsos/internal/middleware/trace"
	"desembolsos/internal/report"
	"desembolsos/internal/view"
	appweb "desembolsos/web"
)

// Options tunes a Server. Zero values fall back to the defaults of each
// component.
type Options struct {
	Logger             *applog.Logger
	DefaultGranularity core.Granularity
	CacheSize          int
	CacheTTL           time.Duration
	CacheSweep         time.Duration
	RateLimitRPM       int
	TrustedProxies     []string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = applog.New(applog.DefaultConfig())
	}
	if o.DefaultGranularity == "" {
		o.DefaultGranularity = core.DefaultGranularity
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 10 * time.Minute
	}
	if o.CacheSweep <= 0 {
		o.CacheSweep = o.CacheTTL
	}
	return o
}

type Server struct {
	http.Server
	templates   *template.Template
	aggregator  *report.Aggregator
	filters     view.Filters
	granularity core.Granularity

	reports *cache.Memo[report.Report]
	caches  *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Tracer

	logger *applog.Logger
	events *applog.Events

	shutdownOnce sync.Once
}

// NewServer configures routes and templates over an immutable dataset,
// returning a ready-to-run http.Server.
func NewServer(addr string, ds *dataset.Dataset, opts Options) (*Server, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy: %w", err)
		}
	}

	store := cache.NewLRUCache[report.Report](opts.CacheSize, opts.CacheTTL)
	manager := cache.NewManager(opts.Logger)
	manager.Register(store)
	manager.StartCleanup(opts.CacheSweep)

	mux := http.NewServeMux()
	s := &Server{
		templates:   t,
		aggregator:  report.NewAggregator(ds),
		filters:     view.FilterWidgets(ds),
		granularity: opts.DefaultGranularity,
		reports:     cache.NewMemo(store),
		caches:      manager,
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		detector:    detector,
		tracer:      trace.NewTracer(opts.Logger, detector.ExtractClientIP),
		logger:      logger,
		events:      applog.NewEvents(opts.Logger),
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.CacheStatic(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/ui/dashboard", s.handleDashboardPartial)
	mux.HandleFunc("/api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("/api/filters", s.handleFiltersJSON)
	mux.HandleFunc("/export.xlsx", s.handleExport)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.chain(mux),
	}
	return s, nil
}

// chain wraps h in the request pipeline, outermost first: context logger,
// request tracing, request-scoped logger, probe detection, security headers
// and rate limiting.
func (s *Server) chain(h http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(h)
	headers := security.Headers(security.DefaultHeadersConfig())(limited)
	detected := s.detector.Middleware(headers)
	scoped := applog.Narrow(applog.WithRequestID(trace.RequestID))(detected)
	traced := s.tracer.Wrap(scoped)
	return applog.Middleware(s.logger)(traced)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequests("Limite de requisições excedido. Tente novamente em instantes.").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Report returns the report for params, computing it at most once per key
// while it stays cached.
func (s *Server) Report(ctx context.Context, params DashboardParams) (report.Report, error) {
	rep, cached, err := s.reports.Do(params.CacheKey(), func() (report.Report, error) {
		rep := s.aggregator.Build(params.Filter, params.Granularity)
		s.events.ReportComputed(ctx, string(rep.Granularity), params.Filter.Canonical(),
			rep.Matched, len(rep.Labels()), len(rep.Partners()))
		return rep, nil
	})
	if err != nil {
		return report.Report{}, err
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentCache).DebugContext(ctx, "Report lookup",
		applog.FieldGranularity, string(params.Granularity),
		applog.FieldCacheHit, cached)
	return rep, nil
}

// Metrics is the runtime counters exposed on /readyz.
type Metrics struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
	Cache     cache.Stats               `json:"cache"`
}

// GetMetrics returns the current counters.
func (s *Server) GetMetrics() Metrics {
	return Metrics{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
		Cache:     s.reports.Store().Stats(),
	}
}

var templateFuncs = template.FuncMap{
	"granularityLabel": func(g string) string { return view.GranularityLabel(core.Granularity(g)) },
}
