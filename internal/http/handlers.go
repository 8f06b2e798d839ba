package http

import (
	"net/http"

	applog "desembolsos/internal/log"
	"desembolsos/internal/view"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady answers "ready" once a dataset is loaded; ?verbose=1 returns
// the runtime counters instead.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("verbose") != "" {
		NewResponse().JSON(s.GetMetrics()).Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// pageData feeds index.html.
type pageData struct {
	Brand     view.Branding
	Filters   view.Filters
	Dashboard view.Dashboard
	Query     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFound("Página não encontrada").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	params, err := ParseDashboardRequest(r, s.granularity)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	rep, err := s.Report(r.Context(), params)
	if err != nil {
		s.events.Failure(r.Context(), "Report failed", err, applog.ComponentReport, applog.OpRender, nil)
		ServerError("Relatório indisponível").Write(w)
		return
	}

	data := pageData{
		Brand:     view.Brand,
		Filters:   s.filters.Select(params.Filter, params.Granularity),
		Dashboard: view.Build(rep),
		Query:     r.URL.RawQuery,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.events.Failure(r.Context(), "Index template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithRequestID(RequestIDFrom(r)))
	}
}
