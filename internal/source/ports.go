package source

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyTable is returned when a source has no header row.
var ErrEmptyTable = errors.New("source table has no header")

// Ports for inbound table readers.
type (
	// Reader loads the raw disbursement table from its origin.
	Reader interface {
		Read(ctx context.Context) (Table, error)
	}

	// Table is a header row plus string cells. Every row has exactly
	// len(Header) cells.
	Table struct {
		Header []string
		Rows   [][]string
	}
)

// NewTable builds a Table from raw rows, taking the first as header.
// Header cells are trimmed and a UTF-8 byte order mark is dropped; data rows
// are padded or truncated to the header width and fully blank rows skipped.
func NewTable(raw [][]string) (Table, error) {
	if len(raw) == 0 {
		return Table{}, ErrEmptyTable
	}
	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	if len(header) == 0 {
		return Table{}, ErrEmptyTable
	}

	t := Table{Header: header}
	for _, r := range raw[1:] {
		if blank(r) {
			continue
		}
		row := make([]string, len(header))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
