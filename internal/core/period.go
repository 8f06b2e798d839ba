package core

import (
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month, stored as midnight UTC on its first day.
type Month struct {
	time.Time
}

const (
	Monthly    Granularity = "MS"
	Quarterly  Granularity = "QS"
	Semesterly Granularity = "6MS"
	Yearly     Granularity = "YS"

	DefaultGranularity = Semesterly
)

// Granularity is the width of the buckets records are rolled up into.
// Values mirror the period codes used by the dashboard controls.
type Granularity string

// Granularities lists the supported granularities from finest to coarsest.
var Granularities = []Granularity{Monthly, Quarterly, Semesterly, Yearly}

var granularityNames = map[string]Granularity{
	"ms":         Monthly,
	"monthly":    Monthly,
	"qs":         Quarterly,
	"quarterly":  Quarterly,
	"6ms":        Semesterly,
	"semesterly": Semesterly,
	"ys":         Yearly,
	"yearly":     Yearly,
}

// NewMonth returns the month containing the given year and month number.
func NewMonth(year int, month time.Month) Month {
	return Month{Time: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// MonthOf truncates a time to its month.
func MonthOf(t time.Time) Month {
	return NewMonth(t.Year(), t.Month())
}

// ParseMonthLabel parses a period header such as "01/2025".
func ParseMonthLabel(label string) (Month, error) {
	t, err := time.Parse("1/2006", strings.TrimSpace(label))
	if err != nil {
		return Month{}, fmt.Errorf("%w %q: expected MM/YYYY", ErrBadPeriodLabel, label)
	}
	return MonthOf(t), nil
}

// Index returns a monotonically increasing month number, useful for arithmetic.
func (m Month) Index() int {
	return m.Year()*12 + int(m.Month()) - 1
}

// AddMonths shifts the month by n (which may be negative).
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year(), m.Month()+time.Month(n))
}

// ChartLabel formats the month as MM/YY.
func (m Month) ChartLabel() string {
	return fmt.Sprintf("%02d/%02d", int(m.Month()), m.Year()%100)
}

// ParseGranularity accepts either a period code (MS, QS, 6MS, YS) or a name
// (monthly, quarterly, semesterly, yearly). Empty input yields the default.
func ParseGranularity(s string) (Granularity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultGranularity, nil
	}
	if g, ok := granularityNames[s]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// Months returns the bucket width in months.
func (g Granularity) Months() int {
	switch g {
	case Quarterly:
		return 3
	case Semesterly:
		return 6
	case Yearly:
		return 12
	default:
		return 1
	}
}

// Bucket maps a month to the first month of its containing bucket.
//
// Quarters and years are calendar aligned. Semesters are six month windows
// anchored at origin, the earliest month of the dataset; a zero origin falls
// back to January/July.
func (g Granularity) Bucket(m Month, origin Month) Month {
	switch g {
	case Quarterly, Yearly:
		w := g.Months()
		idx := int(m.Month()) - 1
		return NewMonth(m.Year(), time.Month(idx-idx%w+1))
	case Semesterly:
		if origin.IsZero() {
			origin = NewMonth(m.Year(), time.January)
		}
		diff := m.Index() - origin.Index()
		k := diff / 6
		if diff < 0 && diff%6 != 0 {
			k--
		}
		return origin.AddMonths(k * 6)
	default:
		return m
	}
}

// Label formats a bucket start for table columns: MM/YY for monthly and
// semesterly buckets, Q<n>/YY for quarters and YYYY for years.
func (g Granularity) Label(bucket Month) string {
	switch g {
	case Quarterly:
		return fmt.Sprintf("Q%d/%02d", (int(bucket.Month())-1)/3+1, bucket.Year()%100)
	case Yearly:
		return fmt.Sprintf("%04d", bucket.Year())
	default:
		return bucket.ChartLabel()
	}
}
