// Package report implements the dashboard aggregation pipeline:
// filter → bucket → group → chart series, summary cards and pivot table.
//
// Every function here is a pure function of the immutable dataset and its
// inputs; nothing is cached or mutated between calls.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"desembolsos/internal/core"
)

// TotalRowLabel labels the synthetic pivot row summing every partner.
const TotalRowLabel = "TOTAL CONSOLIDADO"

type (
	// Aggregate is one (partner, bucket) group.
	Aggregate struct {
		Partner  string
		Bucket   core.Month
		Amount   decimal.Decimal
		Projects int
	}

	// ChartPoint is an aggregate that survived the zero-bucket trim, with its
	// display label.
	ChartPoint struct {
		Partner  string
		Bucket   core.Month
		Label    string
		Amount   decimal.Decimal
		Projects int
	}

	// AreaTotal is the subtotal of one knowledge area.
	AreaTotal struct {
		Area   string
		Amount decimal.Decimal
	}

	// Summary feeds the summary cards.
	Summary struct {
		Total decimal.Decimal
		Areas []AreaTotal
	}

	// PivotColumn is a bucket column of the pivot table.
	PivotColumn struct {
		Bucket core.Month
		Label  string
	}

	// PivotRow is a row of the pivot table; Values align with Pivot.Columns.
	PivotRow struct {
		Label  string
		Total  bool
		Values []decimal.Decimal
	}

	// Pivot is the partner × bucket matrix. When non-empty, Rows[0] is the
	// consolidated total row.
	Pivot struct {
		Columns []PivotColumn
		Rows    []PivotRow
	}

	// Report bundles the three outputs for one (filter, granularity) input.
	Report struct {
		Granularity core.Granularity
		Filter      core.Filter
		Matched     int
		Aggregates  []Aggregate
		Chart       []ChartPoint
		Summary     Summary
		Pivot       Pivot
	}
)

// Empty reports whether the pivot has nothing to show.
func (p Pivot) Empty() bool { return len(p.Columns) == 0 }

// Partners returns the distinct partners of the chart series, sorted.
func (r Report) Partners() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range r.Chart {
		if _, ok := seen[p.Partner]; ok {
			continue
		}
		seen[p.Partner] = struct{}{}
		out = append(out, p.Partner)
	}
	sort.Strings(out)
	return out
}

// Labels returns the distinct chart bucket labels in chronological order.
func (r Report) Labels() []string {
	var out []string
	var last core.Month
	for i, p := range r.Chart {
		if i > 0 && p.Bucket.Equal(last.Time) {
			continue
		}
		last = p.Bucket
		out = append(out, p.Label)
	}
	return out
}
