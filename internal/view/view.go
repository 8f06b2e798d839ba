// Package view turns a report into the render-ready dashboard tree consumed
// by the HTML templates, the JSON API and the chart script.
package view

import (
	"fmt"

	"desembolsos/internal/report"
)

// Branding carries the fixed identity of the portal.
type Branding struct {
	Title      string `json:"title"`
	Heading    string `json:"heading"`
	Subtitle   string `json:"subtitle"`
	LogoURL    string `json:"logo_url"`
	Primary    string `json:"primary"`
	Support    string `json:"support"`
	Background string `json:"background"`
}

// Brand is the portal identity.
var Brand = Branding{
	Title:      "Portal de Desembolsos COPP",
	Heading:    "Gestão de Desembolsos do RCI",
	Subtitle:   "Coordenação de Projetos e Parcerias",
	LogoURL:    "https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcSpLIQtpxxZeXqbNamdf-y-O_AZYeqwKA5FqA&s",
	Primary:    "#5c079e",
	Support:    "#8cc63f",
	Background: "#F8F9FA",
}

// Palette is the 26-colour qualitative sequence assigned to partner series
// in partner order, wrapping around when exhausted.
var Palette = []string{
	"#AA0DFE", "#3283FE", "#85660D", "#782AB6", "#565656", "#1C8356",
	"#16FF32", "#F7E1A0", "#E2E2E2", "#1CBE4F", "#C4451C", "#DEA0FD",
	"#FE00FA", "#325A9B", "#FEAF16", "#F8A19F", "#90AD1C", "#F6222E",
	"#1CFFCE", "#2ED9FF", "#B10DA1", "#C075A6", "#FC1CBF", "#B00068",
	"#FBE426", "#FA0087",
}

const (
	TotalCardLabel   = "TOTAL GERAL"
	TableFirstHeader = "Projeto / Parceiro"

	StylePrimary = "primary"
	StyleSupport = "support"
)

type (
	Card struct {
		Label string `json:"label"`
		Value string `json:"value"`
		Style string `json:"style"`
	}

	// Point is one partner value at one x label. Buckets where the partner
	// has no aggregate stay at zero.
	Point struct {
		Label    string  `json:"label"`
		Value    float64 `json:"value"`
		Projects int     `json:"projects"`
		Hover    string  `json:"hover,omitempty"`
	}

	Series struct {
		Name   string  `json:"name"`
		Color  string  `json:"color"`
		Points []Point `json:"points"`
	}

	// Chart describes a stacked area chart with categorical x labels.
	Chart struct {
		Labels       []string `json:"labels"`
		Series       []Series `json:"series"`
		TickPrefix   string   `json:"tick_prefix"`
		Separators   string   `json:"separators"`
		Stacked      bool     `json:"stacked"`
		Height       int      `json:"height"`
		GridColor    string   `json:"grid_color"`
		FontFamily   string   `json:"font_family"`
		HoverUnified bool     `json:"hover_unified"`
	}

	TableRow struct {
		Label string   `json:"label"`
		Cells []string `json:"cells"`
		Total bool     `json:"total"`
	}

	Table struct {
		Header []string   `json:"header"`
		Rows   []TableRow `json:"rows"`
	}

	// Dashboard is the full render tree for one report.
	Dashboard struct {
		Granularity string `json:"granularity"`
		Matched     int    `json:"matched"`
		Cards       []Card `json:"cards"`
		Chart       Chart  `json:"chart"`
		Table       Table  `json:"table"`
	}
)

// Empty reports whether the table has no bucket columns.
func (t Table) Empty() bool { return len(t.Header) <= 1 }

// Build renders a report.
func Build(rep report.Report) Dashboard {
	return Dashboard{
		Granularity: string(rep.Granularity),
		Matched:     rep.Matched,
		Cards:       cards(rep.Summary),
		Chart:       chart(rep),
		Table:       table(rep.Pivot),
	}
}

func cards(s report.Summary) []Card {
	out := make([]Card, 0, len(s.Areas)+1)
	out = append(out, Card{Label: TotalCardLabel, Value: FormatBRL(s.Total), Style: StylePrimary})
	for _, a := range s.Areas {
		out = append(out, Card{Label: a.Area, Value: FormatBRL(a.Amount), Style: StyleSupport})
	}
	return out
}

func chart(rep report.Report) Chart {
	c := Chart{
		Labels:       nonNil(rep.Labels()),
		Series:       []Series{},
		TickPrefix:   "R$ ",
		Separators:   ",.",
		Stacked:      true,
		Height:       350,
		GridColor:    "#F2F2F2",
		FontFamily:   "Inter, sans-serif",
		HoverUnified: true,
	}

	pos := make(map[string]int, len(c.Labels))
	for i, l := range c.Labels {
		pos[l] = i
	}

	for i, partner := range rep.Partners() {
		s := Series{Name: partner, Color: Palette[i%len(Palette)], Points: make([]Point, len(c.Labels))}
		for j, l := range c.Labels {
			s.Points[j] = Point{Label: l}
		}
		for _, p := range rep.Chart {
			if p.Partner != partner {
				continue
			}
			s.Points[pos[p.Label]] = Point{
				Label:    p.Label,
				Value:    p.Amount.InexactFloat64(),
				Projects: p.Projects,
				Hover:    fmt.Sprintf("<b>%s</b> | %d proj. | %s", p.Partner, p.Projects, FormatBRL(p.Amount)),
			}
		}
		c.Series = append(c.Series, s)
	}
	return c
}

func table(p report.Pivot) Table {
	t := Table{Header: []string{TableFirstHeader}, Rows: []TableRow{}}
	if p.Empty() {
		return t
	}
	for _, c := range p.Columns {
		t.Header = append(t.Header, c.Label)
	}
	for _, r := range p.Rows {
		row := TableRow{Label: r.Label, Total: r.Total, Cells: make([]string, len(r.Values))}
		for i, v := range r.Values {
			row.Cells[i] = FormatNumber(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
