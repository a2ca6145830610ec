package filter

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"painel/internal/core"
)

// Choices are the values offered by the sidebar for the current options.
type Choices struct {
	Municipios     []string   `json:"municipios"`
	TiposDocumento []string   `json:"tipos_documento"`
	MinMonth       core.Month `json:"min_month"`
	MaxMonth       core.Month `json:"max_month"`
	HasMonths      bool       `json:"has_months"`
}

// Available lists the sidebar choices in cascade: municipalities come from
// the rows left by the egresso and capital filters, document types from the
// rows also left by the municipality filter, and month bounds from the rows
// left by every filter except the period itself.
func Available(t *core.Table, o Options) Choices {
	var c Choices

	base := Apply(t, Options{EgressoOnly: o.EgressoOnly, CapitalOnly: o.CapitalOnly})
	if base.Has(core.ColVaraCidade) {
		c.Municipios = distinctSorted(base, core.ColVaraCidade)
	}

	byMun := Apply(base, Options{Municipios: o.Municipios})
	if byMun.Has(core.ColTipoDocumento) {
		c.TiposDocumento = distinctSorted(byMun, core.ColTipoDocumento)
	}

	byTipo := Apply(byMun, Options{TiposDocumento: o.TiposDocumento})
	c.MinMonth, c.MaxMonth, c.HasMonths = byTipo.MonthBounds()
	return c
}

func distinctSorted(t *core.Table, column string) []string {
	seen := make(map[string]struct{})
	values := []string{}
	t.Each(func(r core.Record) {
		v := r.Field(column)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		values = append(values, v)
	})
	SortStrings(values)
	return values
}

// SortStrings sorts values in place using Brazilian Portuguese collation.
func SortStrings(values []string) {
	collate.New(language.BrazilianPortuguese).SortStrings(values)
}
