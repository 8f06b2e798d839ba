package xlsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"desembolsos/internal/source"
)

// Reader loads one sheet of an .xlsx workbook. Cells are read with their
// display formatting, so currency cells arrive as "R$ 1.234,56" just like a
// CSV export of the same sheet.
type Reader struct {
	Path  string
	Sheet string
}

var _ source.Reader = (*Reader)(nil)

// New returns a reader for the given workbook; an empty sheet selects the first one.
func New(path, sheet string) *Reader {
	return &Reader{Path: path, Sheet: sheet}
}

func (r *Reader) Read(ctx context.Context) (source.Table, error) {
	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return source.Table{}, fmt.Errorf("open workbook %s: %w", r.Path, err)
	}
	defer f.Close()

	return ReadFile(ctx, f, r.Sheet)
}

// ReadFile extracts the table from an already opened workbook.
func ReadFile(ctx context.Context, f *excelize.File, sheet string) (source.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return source.Table{}, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	if err := ctx.Err(); err != nil {
		return source.Table{}, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return source.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	t, err := source.NewTable(rows)
	if err != nil {
		return source.Table{}, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return t, nil
}
