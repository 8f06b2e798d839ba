package http

import (
	"bytes"
	"errors"
	"net/http"

	"desembolsos/internal/export"
	applog "desembolsos/internal/log"
	"desembolsos/internal/middleware/trace"
	"desembolsos/internal/report"
	"desembolsos/internal/view"
)

// ExportFilename is the attachment name of the XLSX download.
const ExportFilename = "desembolsos.xlsx"

// RequestIDFrom returns the trace id of r.
func RequestIDFrom(r *http.Request) string { return trace.RequestID(r) }

// loadReport parses the dashboard query and resolves its report. It writes
// the error response itself and reports false when the handler must stop.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (DashboardParams, report.Report, bool) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return DashboardParams{}, report.Report{}, false
	}

	params, err := ParseDashboardRequest(r, s.granularity)
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid dashboard query",
				applog.FieldQuery, r.URL.RawQuery,
				applog.FieldError, err)
		}
		BadRequest(err.Error()).Write(w)
		return DashboardParams{}, report.Report{}, false
	}

	rep, err := s.Report(r.Context(), params)
	if err != nil {
		s.events.Failure(r.Context(), "Report failed", err, applog.ComponentReport, applog.OpRender,
			applog.NewFields().WithRequestID(RequestIDFrom(r)))
		ServerError("Relatório indisponível").Write(w)
		return DashboardParams{}, report.Report{}, false
	}
	return params, rep, true
}

// handleDashboardPartial renders cards, chart config and table for an HTMX swap.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	_, rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	dash := view.Build(rep)
	if err := s.templates.ExecuteTemplate(&buf, "dashboard", dash); err != nil {
		s.events.Failure(r.Context(), "Dashboard template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithRequestID(RequestIDFrom(r)))
		ServerError("Erro ao renderizar o painel").Write(w)
		return
	}

	NewResponse().
		DashboardUpdated(dash.Granularity, dash.Matched).
		HTML(buf.String()).
		Write(w)
}

// handleDashboardJSON returns the dashboard view tree.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	_, rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	NewResponse().JSON(view.Build(rep)).Write(w)
}

// handleFiltersJSON returns the filter controls reflecting the query.
func (s *Server) handleFiltersJSON(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	params, err := ParseDashboardRequest(r, s.granularity)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	NewResponse().JSON(s.filters.Select(params.Filter, params.Granularity)).Write(w)
}

// handleExport streams the pivot table of the selection as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params, rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePivot(&buf, rep.Pivot); err != nil {
		s.events.Failure(r.Context(), "Export failed", err, applog.ComponentExport, applog.OpExport,
			applog.NewFields().WithRequestID(RequestIDFrom(r)))
		ServerError("Erro ao gerar a planilha").Write(w)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentExport).InfoContext(r.Context(), "Pivot exported",
		applog.FieldGranularity, string(params.Granularity),
		applog.FieldFilter, params.Filter.Canonical(),
		"rows", len(rep.Pivot.Rows),
		"bytes", buf.Len())

	NewResponse().Attachment(ExportFilename, export.ContentType, buf.Bytes()).Write(w)
}
