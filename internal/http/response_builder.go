package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
)

// EventDashboardUpdated is raised on the page after every dashboard swap.
const EventDashboardUpdated = "dashboard:updated"

// Response collects status, headers, HTMX events and body, and writes them
// in one step. The zero status is 200.
type Response struct {
	status int
	header http.Header
	events map[string]any
	body   []byte
}

// NewResponse starts an empty 200 response.
func NewResponse() *Response {
	return &Response{status: http.StatusOK, header: make(http.Header)}
}

func (b *Response) Status(code int) *Response {
	b.status = code
	return b
}

func (b *Response) Set(name, value string) *Response {
	b.header.Set(name, value)
	return b
}

// Event queues an HX-Trigger event. detail is encoded as the event's JSON
// payload; nil raises the event without one.
func (b *Response) Event(name string, detail any) *Response {
	if b.events == nil {
		b.events = make(map[string]any)
	}
	b.events[name] = detail
	return b
}

// DashboardUpdated reports the selection the swapped partial renders.
func (b *Response) DashboardUpdated(granularity string, matched int) *Response {
	return b.Event(EventDashboardUpdated, dashboardEvent{Granularity: granularity, Matched: matched})
}

type dashboardEvent struct {
	Granularity string `json:"granularity"`
	Matched     int    `json:"matched"`
}

func (b *Response) Text(s string) *Response {
	return b.content("text/plain; charset=utf-8", []byte(s))
}

func (b *Response) HTML(s string) *Response {
	return b.content("text/html; charset=utf-8", []byte(s))
}

// JSON encodes v as the body. A value that cannot be encoded turns the
// response into a plain 500.
func (b *Response) JSON(v any) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		return b.Status(http.StatusInternalServerError).Text("encoding error")
	}
	return b.content("application/json; charset=utf-8", data)
}

// Attachment sends data as a download named filename.
func (b *Response) Attachment(filename, contentType string, data []byte) *Response {
	b.header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	b.header.Set("Content-Length", strconv.Itoa(len(data)))
	return b.content(contentType, data)
}

func (b *Response) content(contentType string, data []byte) *Response {
	b.header.Set("Content-Type", contentType)
	b.body = data
	return b
}

// Write flushes the response to w.
func (b *Response) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.header {
		h[name] = values
	}
	if len(b.events) > 0 {
		if raw, err := json.Marshal(b.events); err == nil {
			h.Set("HX-Trigger", string(raw))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorPanel renders msg as the alert swapped into the dashboard target.
func errorPanel(status int, msg string) *Response {
	return NewResponse().
		Status(status).
		HTML(`<div class="error" role="alert">` + template.HTMLEscapeString(msg) + `</div>`)
}

func BadRequest(msg string) *Response  { return errorPanel(http.StatusBadRequest, msg) }
func ServerError(msg string) *Response { return errorPanel(http.StatusInternalServerError, msg) }
func NotFound(msg string) *Response    { return errorPanel(http.StatusNotFound, msg) }
func TooManyRequests(msg string) *Response {
	return errorPanel(http.StatusTooManyRequests, msg)
}

// MethodNotAllowed answers 405 with the Allow header set to allowed.
func MethodNotAllowed(allowed string) *Response {
	return NewResponse().Status(http.StatusMethodNotAllowed).Set("Allow", allowed)
}
