package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension identifies one of the categorical attributes of a disbursement record.
type Dimension int

const (
	Process Dimension = iota
	Area
	Unit
	Partner
	Foundation

	NumDimensions = 5
)

// Dimensions lists every dimension in source column order.
var Dimensions = [NumDimensions]Dimension{Process, Area, Unit, Partner, Foundation}

var dimensionKeys = [NumDimensions]string{"process", "area", "unit", "partner", "foundation"}

var dimensionColumns = [NumDimensions]string{
	"PROCESSO",
	"ÁREA DO CONHECIMENTO",
	"UNIDADE",
	"EMPRESA/PARCEIRO",
	"FUNDAÇÃO",
}

var (
	ErrSchemaMismatch     = errors.New("schema mismatch")
	ErrBadPeriodLabel     = errors.New("invalid period label")
	ErrUnknownGranularity = errors.New("unknown granularity")
	ErrUnknownDimension   = errors.New("unknown dimension")
)

// Key returns the stable identifier used in URLs and JSON.
func (d Dimension) Key() string {
	if d < 0 || int(d) >= NumDimensions {
		return ""
	}
	return dimensionKeys[d]
}

// Column returns the source column name for the dimension.
func (d Dimension) Column() string {
	if d < 0 || int(d) >= NumDimensions {
		return ""
	}
	return dimensionColumns[d]
}

func (d Dimension) String() string { return d.Key() }

// ParseDimension resolves a dimension from its key.
func ParseDimension(key string) (Dimension, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, k := range dimensionKeys {
		if k == key {
			return Dimension(i), nil
		}
	}
	return 0, ErrUnknownDimension
}

type (
	// Schema declares the expected layout of the source table. Every column
	// that is not a dimension column is a period column labeled MM/YYYY.
	Schema struct {
		Columns   [NumDimensions]string
		Thousands rune
		Decimal   rune
	}

	// Record is one long-form row: a dimension tuple, a month and an amount.
	Record struct {
		Dims   [NumDimensions]string
		Month  Month
		Amount decimal.Decimal
	}
)

// DefaultSchema returns the schema of the disbursement control export,
// with Brazilian Real punctuation.
func DefaultSchema() Schema {
	return Schema{
		Columns:   dimensionColumns,
		Thousands: '.',
		Decimal:   ',',
	}
}

// Value returns the record's value for a dimension.
func (r Record) Value(d Dimension) string {
	if d < 0 || int(d) >= NumDimensions {
		return ""
	}
	return r.Dims[d]
}
