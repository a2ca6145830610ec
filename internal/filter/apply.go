package filter

import "painel/internal/core"

type step struct {
	column string
	active bool
	keep   func(core.Record) bool
}

func steps(o Options) []step {
	return []step{
		{
			column: core.ColEgressoBool,
			active: o.EgressoOnly,
			keep:   func(r core.Record) bool { return r.Egresso },
		},
		{
			column: core.ColCapitalBool,
			active: o.CapitalOnly,
			keep:   func(r core.Record) bool { return r.Capital },
		},
		{
			column: core.ColVaraCidade,
			active: !o.Municipios.IsAll(),
			keep:   func(r core.Record) bool { return o.Municipios.Contains(r.VaraCidade) },
		},
		{
			column: core.ColTipoDocumento,
			active: !o.TiposDocumento.IsAll(),
			keep:   func(r core.Record) bool { return o.TiposDocumento.Contains(r.TipoDocumento) },
		},
		{
			column: core.ColDataMes,
			active: !o.DateRange.IsAll(),
			keep:   func(r core.Record) bool { return o.DateRange.Contains(r.DataMes) },
		},
	}
}

// Apply returns the rows of t that pass every enabled filter. A filter whose
// source column is absent from t is skipped. Once a filter leaves no rows the
// rest are not evaluated. t is never modified.
func Apply(t *core.Table, o Options) *core.Table {
	if t == nil {
		return nil
	}
	active := make([]step, 0, 5)
	for _, s := range steps(o) {
		if s.active && t.Has(s.column) {
			active = append(active, s)
		}
	}

	out := t.Where(func(core.Record) bool { return true })
	for _, s := range active {
		if out.Empty() {
			return t.Truncate()
		}
		out = out.Where(s.keep)
	}
	if out.Empty() {
		return t.Truncate()
	}
	return out
}
