package dataset

import (
	"fmt"

	"github.com/shopspring/decimal"

	"desembolsos/internal/core"
	"desembolsos/internal/source"
)

type (
	// Wide is the ingested table: dimension values plus one normalized
	// amount per period column.
	Wide struct {
		Periods []core.Month
		Rows    []WideRow
		// Coerced counts non-empty cells that did not parse and became zero.
		Coerced int
	}

	WideRow struct {
		Dims    [core.NumDimensions]string
		Amounts []decimal.Decimal
	}
)

// layout maps header positions to their role under a schema.
type layout struct {
	dims    [core.NumDimensions]int
	periods []int
	months  []core.Month
}

// Ingest validates the table header against the schema and normalizes every
// period cell into a decimal amount. Header problems are fatal; individual
// cells never are.
func Ingest(t source.Table, schema core.Schema) (Wide, error) {
	l, err := resolve(t.Header, schema)
	if err != nil {
		return Wide{}, err
	}

	w := Wide{Periods: l.months, Rows: make([]WideRow, 0, len(t.Rows))}
	for _, row := range t.Rows {
		var wr WideRow
		for d, idx := range l.dims {
			wr.Dims[d] = cell(row, idx)
		}
		wr.Amounts = make([]decimal.Decimal, len(l.periods))
		for i, idx := range l.periods {
			raw := cell(row, idx)
			if !core.IsAmount(raw, schema.Thousands, schema.Decimal) {
				w.Coerced++
			}
			wr.Amounts[i] = core.ParseAmount(raw, schema.Thousands, schema.Decimal)
		}
		w.Rows = append(w.Rows, wr)
	}
	return w, nil
}

func resolve(header []string, schema core.Schema) (layout, error) {
	var l layout
	for i := range l.dims {
		l.dims[i] = -1
	}

	dimByName := make(map[string]core.Dimension, core.NumDimensions)
	for _, d := range core.Dimensions {
		dimByName[schema.Columns[d]] = d
	}

	seen := map[core.Month]string{}
	for i, h := range header {
		if d, ok := dimByName[h]; ok {
			if l.dims[d] != -1 {
				return layout{}, fmt.Errorf("%w: duplicate column %q", core.ErrSchemaMismatch, h)
			}
			l.dims[d] = i
			continue
		}
		m, err := core.ParseMonthLabel(h)
		if err != nil {
			return layout{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		if prev, dup := seen[m]; dup {
			return layout{}, fmt.Errorf("%w: period %q duplicates %q", core.ErrSchemaMismatch, h, prev)
		}
		seen[m] = h
		l.periods = append(l.periods, i)
		l.months = append(l.months, m)
	}

	for _, d := range core.Dimensions {
		if l.dims[d] == -1 {
			return layout{}, fmt.Errorf("%w: missing column %q", core.ErrSchemaMismatch, schema.Columns[d])
		}
	}
	if len(l.periods) == 0 {
		return layout{}, fmt.Errorf("%w: no period columns", core.ErrSchemaMismatch)
	}
	return l, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
