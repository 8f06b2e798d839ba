package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatNumber renders an amount with two decimals in Brazilian notation,
// e.g. 1234.5 → "1.234,50". Halves round away from zero.
func FormatNumber(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg && (intPart != "0" || frac != "00") {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatBRL renders an amount as Brazilian reais: "R$ 1.234,56", or
// "-R$ 1.234,56" for negative amounts.
func FormatBRL(d decimal.Decimal) string {
	n := FormatNumber(d)
	if rest, ok := strings.CutPrefix(n, "-"); ok {
		return "-R$ " + rest
	}
	return "R$ " + n
}
