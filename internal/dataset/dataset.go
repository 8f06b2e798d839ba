// Package dataset holds the immutable long-form disbursement relation built
// once at startup from the wide source table.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"desembolsos/internal/core"
	"desembolsos/internal/source"
)

// Dataset is read-only after construction. Accessors hand out copies so no
// caller can mutate the shared relation.
type Dataset struct {
	records []core.Record
	months  []core.Month
	values  [core.NumDimensions][]string
	coerced int
	rows    int
}

// Stats summarizes a load for logging.
type Stats struct {
	SourceRows int
	Periods    int
	Records    int
	Coerced    int
	First      core.Month
	Last       core.Month
}

// Load reads the source table, ingests it under schema and melts it.
func Load(ctx context.Context, r source.Reader, schema core.Schema) (*Dataset, error) {
	t, err := r.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	w, err := Ingest(t, schema)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return Reshape(w), nil
}

// Reshape melts the wide table: each (row, period column) pair becomes one
// long record, in row order then column order.
func Reshape(w Wide) *Dataset {
	ds := &Dataset{
		records: make([]core.Record, 0, len(w.Rows)*len(w.Periods)),
		coerced: w.Coerced,
		rows:    len(w.Rows),
	}

	distinct := [core.NumDimensions]map[string]struct{}{}
	for d := range distinct {
		distinct[d] = map[string]struct{}{}
	}

	for _, row := range w.Rows {
		var dims [core.NumDimensions]string
		for d, v := range row.Dims {
			v = strings.TrimSpace(v)
			dims[d] = v
			if v != "" {
				distinct[d][v] = struct{}{}
			}
		}
		for i, m := range w.Periods {
			ds.records = append(ds.records, core.Record{Dims: dims, Month: m, Amount: row.Amounts[i]})
		}
	}

	ds.months = append([]core.Month(nil), w.Periods...)
	sort.Slice(ds.months, func(i, j int) bool { return ds.months[i].Before(ds.months[j].Time) })

	for d, set := range distinct {
		vs := make([]string, 0, len(set))
		for v := range set {
			vs = append(vs, v)
		}
		sort.Strings(vs)
		ds.values[d] = vs
	}
	return ds
}

// Len returns the number of long records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th long record by value.
func (d *Dataset) At(i int) core.Record { return d.records[i] }

// Records returns a copy of the long relation.
func (d *Dataset) Records() []core.Record {
	return append([]core.Record(nil), d.records...)
}

// Months returns the period columns in chronological order.
func (d *Dataset) Months() []core.Month {
	return append([]core.Month(nil), d.months...)
}

// First returns the earliest month of the export, zero when empty.
func (d *Dataset) First() core.Month {
	if len(d.months) == 0 {
		return core.Month{}
	}
	return d.months[0]
}

// Last returns the latest month of the export, zero when empty.
func (d *Dataset) Last() core.Month {
	if len(d.months) == 0 {
		return core.Month{}
	}
	return d.months[len(d.months)-1]
}

// Values returns the sorted distinct non-empty values of a dimension.
func (d *Dataset) Values(dim core.Dimension) []string {
	if dim < 0 || int(dim) >= core.NumDimensions {
		return nil
	}
	return append([]string(nil), d.values[dim]...)
}

// Stats reports load counters.
func (d *Dataset) Stats() Stats {
	return Stats{
		SourceRows: d.rows,
		Periods:    len(d.months),
		Records:    len(d.records),
		Coerced:    d.coerced,
		First:      d.First(),
		Last:       d.Last(),
	}
}
