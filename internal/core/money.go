// Package core provides amount normalization for currency formatted cells.
//
// Source cells come from spreadsheet exports and may carry currency symbols,
// thousands separators and a locale decimal separator. Normalization never
// fails: anything that does not parse becomes zero.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// currencyRunes are stripped from amount cells before parsing.
const currencyRunes = "R$€£"

// ParseAmount normalizes a raw cell into a non-negative decimal amount.
//
// Whitespace and currency symbols are removed, the thousands separator is
// dropped and the decimal separator becomes a period. Empty cells, "nan",
// malformed numbers and negative values all yield zero.
//
// Examples:
//
//	ParseAmount("R$ 1.234,56", '.', ',') -> 1234.56
//	ParseAmount("abc", '.', ',')         -> 0
func ParseAmount(raw string, thousands, dec rune) decimal.Decimal {
	s, ok := normalizeAmount(raw, thousands, dec)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// IsAmount reports whether a raw cell would parse without being coerced.
// Empty cells count as amounts (they are legitimately zero).
func IsAmount(raw string, thousands, dec rune) bool {
	s, ok := normalizeAmount(raw, thousands, dec)
	if !ok {
		return strings.TrimSpace(raw) == "" || strings.EqualFold(strings.TrimSpace(raw), "nan")
	}
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}

func normalizeAmount(raw string, thousands, dec rune) (string, bool) {
	s := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == thousands:
			return -1
		case r == dec:
			return '.'
		case strings.ContainsRune(currencyRunes, r):
			return -1
		}
		return r
	}, raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return "", false
	}
	return s, true
}
