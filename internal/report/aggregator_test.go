package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"desembolsos/internal/core"
	"desembolsos/internal/dataset"
)

func month(y int, m time.Month) core.Month { return core.NewMonth(y, m) }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func row(process, area, unit, partner, foundation string, amounts ...int64) dataset.WideRow {
	r := dataset.WideRow{Dims: [core.NumDimensions]string{process, area, unit, partner, foundation}}
	for _, a := range amounts {
		r.Amounts = append(r.Amounts, dec(a))
	}
	return r
}

func build(periods []core.Month, rows ...dataset.WideRow) *Aggregator {
	return NewAggregator(dataset.Reshape(dataset.Wide{Periods: periods, Rows: rows}))
}

func TestZeroBucketDropped(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January), month(2025, time.February)},
		row("P1", "Saúde", "U", "Acme", "F", 100, 0))

	rep := agg.Build(nil, core.Monthly)
	require.Len(t, rep.Chart, 1)
	require.Equal(t, "01/25", rep.Chart[0].Label)
	require.True(t, rep.Chart[0].Amount.Equal(dec(100)))

	require.Len(t, rep.Pivot.Columns, 1)
	require.Equal(t, "01/25", rep.Pivot.Columns[0].Label)
	require.Len(t, rep.Pivot.Rows, 2)
	require.Equal(t, TotalRowLabel, rep.Pivot.Rows[0].Label)
	require.True(t, rep.Pivot.Rows[0].Total)
	require.Equal(t, "Acme", rep.Pivot.Rows[1].Label)
	require.True(t, rep.Pivot.Rows[1].Values[0].Equal(dec(100)))
}

func TestPartnerFilter(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January)},
		row("P1", "Saúde", "U", "Acme", "F", 100),
		row("P2", "Energia", "U", "Globex", "F", 200))

	rep := agg.Build(core.Filter{}.With(core.Partner, "Acme"), core.Monthly)
	require.Equal(t, []string{"Acme"}, rep.Partners())
	require.True(t, rep.Summary.Total.Equal(dec(100)))
	require.Len(t, rep.Summary.Areas, 1)
	require.Equal(t, "Saúde", rep.Summary.Areas[0].Area)
	require.Equal(t, 1, rep.Matched)
}

func TestQuarterlyRollup(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January), month(2025, time.February), month(2025, time.March)},
		row("P1", "Saúde", "U", "Acme", "F", 10, 10, 10))

	rep := agg.Build(nil, core.Quarterly)
	require.Len(t, rep.Pivot.Columns, 1)
	require.Equal(t, "Q1/25", rep.Pivot.Columns[0].Label)
	require.True(t, rep.Pivot.Rows[1].Values[0].Equal(dec(30)))
	require.Len(t, rep.Chart, 1)
	require.Equal(t, "01/25", rep.Chart[0].Label)
}

func TestSemesterBucketsAnchorAtFirstMonth(t *testing.T) {
	periods := []core.Month{}
	amounts := []int64{}
	for m := time.March; m <= time.September; m++ {
		periods = append(periods, month(2024, m))
		amounts = append(amounts, 1)
	}
	agg := build(periods, row("P1", "A", "U", "Acme", "F", amounts...))

	rep := agg.Build(nil, core.Semesterly)
	require.Equal(t, []string{"03/24", "09/24"}, rep.Labels())
	require.True(t, rep.Pivot.Rows[1].Values[0].Equal(dec(6)))
	require.True(t, rep.Pivot.Rows[1].Values[1].Equal(dec(1)))
}

func TestDistinctProjectCount(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January), month(2025, time.February)},
		row("P1", "A", "U", "Acme", "F", 5, 5),
		row("P1", "B", "U", "Acme", "F", 1, 0),
		row("P2", "A", "U", "Acme", "F", 1, 1))

	rep := agg.Build(nil, core.Quarterly)
	require.Len(t, rep.Aggregates, 1)
	require.Equal(t, 2, rep.Aggregates[0].Projects)
	require.True(t, rep.Aggregates[0].Amount.Equal(dec(13)))
}

func TestFilterYieldsSubset(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January)},
		row("P1", "Saúde", "U1", "Acme", "F1", 1),
		row("P2", "Saúde", "U2", "Globex", "F2", 2),
		row("P3", "Energia", "U1", "Initech", "F1", 3))

	f := core.Filter{}.With(core.Area, "Saúde").With(core.Unit, "U1", "U2")
	got := agg.Filter(f)
	require.Len(t, got, 2)
	for _, r := range got {
		require.Equal(t, "Saúde", r.Value(core.Area))
		require.Contains(t, []string{"U1", "U2"}, r.Value(core.Unit))
	}
	require.Len(t, agg.Filter(nil), 3)
}

func TestBuildIsIdempotent(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January), month(2025, time.July)},
		row("P1", "Saúde", "U", "Acme", "F", 10, 20),
		row("P2", "Energia", "U", "Globex", "F", 0, 5))

	f := core.Filter{}.With(core.Foundation, "F")
	require.Equal(t, agg.Build(f, core.Semesterly), agg.Build(f, core.Semesterly))
}

func TestChartBucketsWithinDataRange(t *testing.T) {
	periods := []core.Month{month(2024, time.November), month(2025, time.February), month(2025, time.May)}
	agg := build(periods, row("P1", "A", "U", "Acme", "F", 1, 2, 3))
	ds := agg.Dataset()

	for _, g := range core.Granularities {
		rep := agg.Build(nil, g)
		for _, p := range rep.Chart {
			end := p.Bucket.AddMonths(g.Months())
			require.False(t, p.Bucket.After(ds.Last().Time), "%s bucket %s after last", g, p.Label)
			require.True(t, end.After(ds.First().Time), "%s bucket %s before first", g, p.Label)
		}
	}
}

func TestTotalRowEqualsColumnSums(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January), month(2025, time.April), month(2025, time.July)},
		row("P1", "A", "U", "Acme", "F", 10, 0, 7),
		row("P2", "A", "U", "Globex", "F", 3, 0, 0),
		row("P3", "B", "U", "Initech", "F", 0, 0, 4))

	for _, g := range core.Granularities {
		rep := agg.Build(nil, g)
		require.False(t, rep.Pivot.Empty())
		for c := range rep.Pivot.Columns {
			sum := decimal.Zero
			for _, r := range rep.Pivot.Rows[1:] {
				sum = sum.Add(r.Values[c])
			}
			require.True(t, sum.Equal(rep.Pivot.Rows[0].Values[c]), "%s column %d", g, c)
			require.True(t, sum.IsPositive(), "%s column %d not positive", g, c)
		}
	}
}

func TestPivotRowsSortedAndZeroRowsKept(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January), month(2025, time.February)},
		row("P1", "A", "U", "Zeta", "F", 1, 0),
		row("P2", "A", "U", "Alpha", "F", 0, 2),
		row("P3", "A", "U", "Mid", "F", 0, 0))

	rep := agg.Build(nil, core.Monthly)
	labels := []string{}
	for _, r := range rep.Pivot.Rows {
		labels = append(labels, r.Label)
	}
	require.Equal(t, []string{TotalRowLabel, "Alpha", "Mid", "Zeta"}, labels)
	require.Equal(t, []string{"01/25", "02/25"}, rep.Labels())
}

func TestEmptySelection(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January)}, row("P1", "A", "U", "Acme", "F", 5))

	rep := agg.Build(core.Filter{}.With(core.Partner, "Nobody"), core.Monthly)
	require.Zero(t, rep.Matched)
	require.Empty(t, rep.Chart)
	require.True(t, rep.Pivot.Empty())
	require.Empty(t, rep.Pivot.Rows)
	require.True(t, rep.Summary.Total.IsZero())
	require.Empty(t, rep.Summary.Areas)
}

func TestAllZeroAmounts(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January)}, row("P1", "A", "U", "Acme", "F", 0))

	rep := agg.Build(nil, core.Yearly)
	require.Equal(t, 1, rep.Matched)
	require.Empty(t, rep.Chart)
	require.True(t, rep.Pivot.Empty())
	require.Empty(t, rep.Summary.Areas)
}

func TestBlankPartnerCountsTowardTotalOnly(t *testing.T) {
	agg := build([]core.Month{month(2025, time.January)},
		row("P1", "A", "U", "", "F", 5),
		row("P2", "A", "U", "Acme", "F", 7))

	rep := agg.Build(nil, core.Monthly)
	require.True(t, rep.Summary.Total.Equal(dec(12)))
	require.Equal(t, []string{"Acme"}, rep.Partners())
	require.True(t, rep.Pivot.Rows[0].Values[0].Equal(dec(7)))
}
