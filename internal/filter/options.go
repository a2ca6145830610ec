package filter

import (
	"encoding/json"
	"sort"

	"painel/internal/core"
)

// Selection is either every value of a column (the zero value) or an
// explicit, possibly empty, set of values.
type Selection struct {
	explicit bool
	values   map[string]struct{}
}

// All selects every value, nulls included.
func All() Selection {
	return Selection{}
}

// Only selects exactly the given values. With no values nothing matches.
func Only(values ...string) Selection {
	s := Selection{explicit: true, values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.values[v] = struct{}{}
	}
	return s
}

// IsAll reports whether s selects every value.
func (s Selection) IsAll() bool {
	return !s.explicit
}

// Len returns the size of an explicit selection, or -1 for All.
func (s Selection) Len() int {
	if !s.explicit {
		return -1
	}
	return len(s.values)
}

// Values returns the explicit values in ascending byte order; nil for All.
func (s Selection) Values() []string {
	if !s.explicit {
		return nil
	}
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether v is selected. A null value never matches an
// explicit selection.
func (s Selection) Contains(v string) bool {
	if !s.explicit {
		return true
	}
	if v == "" {
		return false
	}
	_, ok := s.values[v]
	return ok
}

// Intersect returns the values selected by both s and o.
func (s Selection) Intersect(o Selection) Selection {
	switch {
	case !s.explicit:
		return o
	case !o.explicit:
		return s
	}
	out := Selection{explicit: true, values: make(map[string]struct{})}
	for v := range s.values {
		if _, ok := o.values[v]; ok {
			out.values[v] = struct{}{}
		}
	}
	return out
}

// MonthRange is an inclusive range over data_mes. The zero value is
// unbounded and also keeps rows whose month is null. A bounded range with a
// zero From or To is open on that side.
type MonthRange struct {
	From    core.Month
	To      core.Month
	bounded bool
}

// AllMonths keeps every row.
func AllMonths() MonthRange {
	return MonthRange{}
}

// Between is the inclusive range [from, to]; swapped bounds are reordered.
func Between(from, to core.Month) MonthRange {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	return MonthRange{From: from, To: to, bounded: true}
}

// IsAll reports whether r is unbounded.
func (r MonthRange) IsAll() bool {
	return !r.bounded
}

// Empty reports whether no month can satisfy r.
func (r MonthRange) Empty() bool {
	return r.bounded && !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To)
}

// Contains reports whether m is inside r. Null months are only inside an
// unbounded range.
func (r MonthRange) Contains(m core.Month) bool {
	if !r.bounded {
		return true
	}
	if m.IsZero() {
		return false
	}
	if !r.From.IsZero() && m.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && m.After(r.To) {
		return false
	}
	return true
}

// Intersect returns the months inside both ranges. The result may be Empty.
func (r MonthRange) Intersect(o MonthRange) MonthRange {
	switch {
	case !r.bounded:
		return o
	case !o.bounded:
		return r
	}
	out := MonthRange{From: r.From, To: r.To, bounded: true}
	if out.From.IsZero() || (!o.From.IsZero() && o.From.After(out.From)) {
		out.From = o.From
	}
	if out.To.IsZero() || (!o.To.IsZero() && o.To.Before(out.To)) {
		out.To = o.To
	}
	return out
}

// Clamp resolves open ends to [min, max] and narrows r to those bounds.
func (r MonthRange) Clamp(min, max core.Month) MonthRange {
	return Between(min, max).Intersect(r)
}

// Options are the dashboard filters. The zero value filters nothing.
type Options struct {
	EgressoOnly    bool       `json:"egresso_only"`
	CapitalOnly    bool       `json:"capital_only"`
	Municipios     Selection  `json:"municipios"`
	TiposDocumento Selection  `json:"tipos_documento"`
	DateRange      MonthRange `json:"date_range"`
}

// And combines two option sets so that applying the result equals applying
// a and then b.
func And(a, b Options) Options {
	return Options{
		EgressoOnly:    a.EgressoOnly || b.EgressoOnly,
		CapitalOnly:    a.CapitalOnly || b.CapitalOnly,
		Municipios:     a.Municipios.Intersect(b.Municipios),
		TiposDocumento: a.TiposDocumento.Intersect(b.TiposDocumento),
		DateRange:      a.DateRange.Intersect(b.DateRange),
	}
}

// And is the method form of And.
func (o Options) And(other Options) Options {
	return And(o, other)
}

// MarshalJSON encodes All as null and an explicit selection as its sorted values.
func (s Selection) MarshalJSON() ([]byte, error) {
	if !s.explicit {
		return []byte("null"), nil
	}
	return json.Marshal(s.Values())
}

// MarshalJSON encodes an unbounded range as null.
func (r MonthRange) MarshalJSON() ([]byte, error) {
	if !r.bounded {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		From core.Month `json:"from"`
		To   core.Month `json:"to"`
	}{r.From, r.To})
}
