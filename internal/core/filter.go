package core

import (
	"sort"
	"strings"
)

// Filter holds the selected values per dimension. A dimension with no
// selected values imposes no constraint.
type Filter map[Dimension][]string

// With returns a copy of the filter with values selected for d.
func (f Filter) With(d Dimension, values ...string) Filter {
	out := f.Clone()
	out[d] = append(out[d], values...)
	return out
}

// Clone returns a deep copy of the filter.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for d, vs := range f {
		out[d] = append([]string(nil), vs...)
	}
	return out
}

// Selected returns the selected values for a dimension, trimmed and
// deduplicated, in sorted order.
func (f Filter) Selected(d Dimension) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range f[d] {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the filter imposes no constraint at all.
func (f Filter) Empty() bool {
	for _, d := range Dimensions {
		if len(f.Selected(d)) > 0 {
			return false
		}
	}
	return true
}

// Canonical returns a deterministic key for the filter. Two filters that
// select the same values produce the same key regardless of order.
func (f Filter) Canonical() string {
	var b strings.Builder
	for _, d := range Dimensions {
		vs := f.Selected(d)
		if len(vs) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d.Key())
		b.WriteByte('=')
		b.WriteString(strings.Join(vs, "\x1f"))
	}
	return b.String()
}

// Matcher is a compiled filter for fast membership checks.
type Matcher struct {
	sets [NumDimensions]map[string]struct{}
}

// Compile prepares the filter for repeated matching.
func (f Filter) Compile() Matcher {
	var m Matcher
	for _, d := range Dimensions {
		vs := f.Selected(d)
		if len(vs) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(vs))
		for _, v := range vs {
			set[v] = struct{}{}
		}
		m.sets[d] = set
	}
	return m
}

// Match reports whether a record survives the filter: AND across
// dimensions, OR within a dimension.
func (m Matcher) Match(r Record) bool {
	for d, set := range m.sets {
		if set == nil {
			continue
		}
		if _, ok := set[r.Dims[d]]; !ok {
			return false
		}
	}
	return true
}
