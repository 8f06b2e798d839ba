package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"desembolsos/internal/source"
)

// Reader loads a delimited text export from disk.
type Reader struct {
	Path      string
	Delimiter rune
}

var _ source.Reader = (*Reader)(nil)

// New returns a reader for path. A zero delimiter means comma.
func New(path string, delimiter rune) *Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{Path: path, Delimiter: delimiter}
}

// Read opens and parses the file.
func (r *Reader) Read(ctx context.Context) (source.Table, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return source.Table{}, fmt.Errorf("open source file %s: %w", r.Path, err)
	}
	defer f.Close()

	return Parse(ctx, f, r.Delimiter)
}

// Parse reads a delimited table from rd.
func Parse(ctx context.Context, rd io.Reader, delimiter rune) (source.Table, error) {
	cr := csv.NewReader(rd)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var raw [][]string
	for {
		if err := ctx.Err(); err != nil {
			return source.Table{}, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return source.Table{}, fmt.Errorf("read csv: %w", err)
		}
		raw = append(raw, rec)
	}

	t, err := source.NewTable(raw)
	if err != nil {
		return source.Table{}, fmt.Errorf("parse csv: %w", err)
	}
	return t, nil
}
