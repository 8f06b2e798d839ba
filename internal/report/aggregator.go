package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"desembolsos/internal/core"
	"desembolsos/internal/dataset"
)

// Aggregator runs the reporting pipeline over one immutable dataset.
type Aggregator struct {
	ds *dataset.Dataset
}

// NewAggregator binds an aggregator to a dataset.
func NewAggregator(ds *dataset.Dataset) *Aggregator {
	return &Aggregator{ds: ds}
}

// Dataset returns the underlying dataset.
func (a *Aggregator) Dataset() *dataset.Dataset { return a.ds }

// Filter returns the records that survive f.
func (a *Aggregator) Filter(f core.Filter) []core.Record {
	m := f.Compile()
	var out []core.Record
	for i := 0; i < a.ds.Len(); i++ {
		if r := a.ds.At(i); m.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

type groupKey struct {
	partner string
	bucket  int
}

type group struct {
	bucket    core.Month
	amount    decimal.Decimal
	processes map[string]struct{}
}

// Build computes the report for a filter and granularity. It never fails:
// an empty selection yields an empty chart and pivot and a zero total.
func (a *Aggregator) Build(f core.Filter, g core.Granularity) Report {
	if g == "" {
		g = core.DefaultGranularity
	}
	origin := a.ds.First()
	m := f.Compile()

	rep := Report{Granularity: g, Filter: f.Clone(), Summary: Summary{Total: decimal.Zero}}
	groups := map[groupKey]*group{}
	areas := map[string]decimal.Decimal{}

	for i := 0; i < a.ds.Len(); i++ {
		r := a.ds.At(i)
		if !m.Match(r) {
			continue
		}
		rep.Matched++
		rep.Summary.Total = rep.Summary.Total.Add(r.Amount)
		if area := r.Value(core.Area); area != "" {
			areas[area] = areas[area].Add(r.Amount)
		}

		partner := r.Value(core.Partner)
		if partner == "" {
			continue
		}
		b := g.Bucket(r.Month, origin)
		k := groupKey{partner: partner, bucket: b.Index()}
		grp, ok := groups[k]
		if !ok {
			grp = &group{bucket: b, amount: decimal.Zero, processes: map[string]struct{}{}}
			groups[k] = grp
		}
		grp.amount = grp.amount.Add(r.Amount)
		if p := r.Value(core.Process); p != "" {
			grp.processes[p] = struct{}{}
		}
	}

	rep.Aggregates = aggregates(groups)
	rep.Summary.Areas = areaTotals(areas)

	valid := positiveBuckets(rep.Aggregates)
	rep.Chart = chartSeries(rep.Aggregates, valid)
	rep.Pivot = pivot(rep.Aggregates, valid, g)
	return rep
}

func aggregates(groups map[groupKey]*group) []Aggregate {
	out := make([]Aggregate, 0, len(groups))
	for k, grp := range groups {
		out = append(out, Aggregate{
			Partner:  k.partner,
			Bucket:   grp.bucket,
			Amount:   grp.amount,
			Projects: len(grp.processes),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Partner != out[j].Partner {
			return out[i].Partner < out[j].Partner
		}
		return out[i].Bucket.Before(out[j].Bucket.Time)
	})
	return out
}

// positiveBuckets returns the buckets whose total across partners is
// positive, in chronological order.
func positiveBuckets(aggs []Aggregate) []core.Month {
	totals := map[int]decimal.Decimal{}
	months := map[int]core.Month{}
	for _, a := range aggs {
		idx := a.Bucket.Index()
		totals[idx] = totals[idx].Add(a.Amount)
		months[idx] = a.Bucket
	}
	var out []core.Month
	for idx, t := range totals {
		if t.IsPositive() {
			out = append(out, months[idx])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j].Time) })
	return out
}

func chartSeries(aggs []Aggregate, valid []core.Month) []ChartPoint {
	keep := make(map[int]struct{}, len(valid))
	for _, b := range valid {
		keep[b.Index()] = struct{}{}
	}
	var out []ChartPoint
	for _, a := range aggs {
		if _, ok := keep[a.Bucket.Index()]; !ok {
			continue
		}
		out = append(out, ChartPoint{
			Partner:  a.Partner,
			Bucket:   a.Bucket,
			Label:    a.Bucket.ChartLabel(),
			Amount:   a.Amount,
			Projects: a.Projects,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Bucket.Equal(out[j].Bucket.Time) {
			return out[i].Bucket.Before(out[j].Bucket.Time)
		}
		return out[i].Partner < out[j].Partner
	})
	return out
}

func areaTotals(areas map[string]decimal.Decimal) []AreaTotal {
	var out []AreaTotal
	for area, amt := range areas {
		if amt.IsPositive() {
			out = append(out, AreaTotal{Area: area, Amount: amt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out
}

// pivot reshapes aggregates into partner rows × bucket columns, preceded by
// the consolidated total row. No surviving column means an empty pivot.
func pivot(aggs []Aggregate, cols []core.Month, g core.Granularity) Pivot {
	if len(cols) == 0 {
		return Pivot{}
	}
	colIdx := make(map[int]int, len(cols))
	p := Pivot{Columns: make([]PivotColumn, len(cols))}
	for i, b := range cols {
		colIdx[b.Index()] = i
		p.Columns[i] = PivotColumn{Bucket: b, Label: g.Label(b)}
	}

	total := PivotRow{Label: TotalRowLabel, Total: true, Values: zeros(len(cols))}
	p.Rows = append(p.Rows, total)

	rowIdx := map[string]int{}
	for _, a := range aggs {
		ri, ok := rowIdx[a.Partner]
		if !ok {
			ri = len(p.Rows)
			rowIdx[a.Partner] = ri
			p.Rows = append(p.Rows, PivotRow{Label: a.Partner, Values: zeros(len(cols))})
		}
		ci, ok := colIdx[a.Bucket.Index()]
		if !ok {
			continue
		}
		p.Rows[ri].Values[ci] = p.Rows[ri].Values[ci].Add(a.Amount)
		p.Rows[0].Values[ci] = p.Rows[0].Values[ci].Add(a.Amount)
	}
	return p
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
