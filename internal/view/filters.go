package view

import (
	"desembolsos/internal/core"
	"desembolsos/internal/dataset"
)

// Placeholder is shown by a multi-select with nothing selected.
const Placeholder = "Todas"

type (
	Option struct {
		Value    string `json:"value"`
		Label    string `json:"label"`
		Selected bool   `json:"selected"`
	}

	// Control is one dashboard input. Name is the query parameter it binds.
	Control struct {
		Name        string   `json:"name"`
		Label       string   `json:"label"`
		Placeholder string   `json:"placeholder,omitempty"`
		Multi       bool     `json:"multi"`
		Options     []Option `json:"options"`
	}

	Filters struct {
		Granularity Control   `json:"granularity"`
		Dimensions  []Control `json:"dimensions"`
	}
)

var granularityLabels = map[core.Granularity]string{
	core.Monthly:    "Mensal",
	core.Quarterly:  "Trimestral",
	core.Semesterly: "Semestral",
	core.Yearly:     "Anual",
}

// controlLabels are the dimensions exposed as dashboard controls.
var controlLabels = []struct {
	dim   core.Dimension
	label string
}{
	{core.Area, "CONHECIMENTO"},
	{core.Unit, "UNIDADE"},
	{core.Partner, "EMPRESA/PARCEIRO"},
	{core.Foundation, "FUNDAÇÃO"},
}

// GranularityLabel returns the display name of a granularity.
func GranularityLabel(g core.Granularity) string {
	if l, ok := granularityLabels[g]; ok {
		return l
	}
	return string(g)
}

// FilterWidgets builds the dashboard controls from the dataset's distinct
// values, with the default granularity selected and no dimension filter.
func FilterWidgets(ds *dataset.Dataset) Filters {
	f := Filters{Granularity: Control{Name: "granularity", Label: "PERIODICIDADE"}}
	for _, g := range core.Granularities {
		f.Granularity.Options = append(f.Granularity.Options, Option{
			Value:    string(g),
			Label:    granularityLabels[g],
			Selected: g == core.DefaultGranularity,
		})
	}

	for _, c := range controlLabels {
		ctl := Control{Name: c.dim.Key(), Label: c.label, Placeholder: Placeholder, Multi: true, Options: []Option{}}
		for _, v := range ds.Values(c.dim) {
			ctl.Options = append(ctl.Options, Option{Value: v, Label: v})
		}
		f.Dimensions = append(f.Dimensions, ctl)
	}
	return f
}

// Select returns a copy of the controls reflecting a current selection.
func (f Filters) Select(sel core.Filter, g core.Granularity) Filters {
	out := Filters{Granularity: f.Granularity}
	out.Granularity.Options = make([]Option, len(f.Granularity.Options))
	for i, o := range f.Granularity.Options {
		o.Selected = o.Value == string(g)
		out.Granularity.Options[i] = o
	}

	for _, ctl := range f.Dimensions {
		dim, err := core.ParseDimension(ctl.Name)
		chosen := map[string]struct{}{}
		if err == nil {
			for _, v := range sel.Selected(dim) {
				chosen[v] = struct{}{}
			}
		}
		c := ctl
		c.Options = make([]Option, len(ctl.Options))
		for i, o := range ctl.Options {
			_, o.Selected = chosen[o.Value]
			c.Options[i] = o
		}
		out.Dimensions = append(out.Dimensions, c)
	}
	return out
}
