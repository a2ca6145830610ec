// Package views aggregates a filtered extract into the three dashboard views.
// Every function here is pure: tables are read, never modified.
package views

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"painel/internal/core"
)

// View names used in MissingColumnError.
const (
	ViewOverview   = "overview"
	ViewDocumentos = "documentos"
	ViewMunicipios = "municipios"
)

// User-facing texts.
const (
	MsgNoDataFilters = "Nenhum registro encontrado com os filtros selecionados."
	MsgNoDataPeriod  = "Nenhum registro dentro do período selecionado."
	MsgNoEstado      = "Coluna 'estado' não encontrada para o gráfico por estado."
	MsgNoTipoDoc     = "Coluna 'tipodocumento' não encontrada."
	MsgNoMunicipio   = "Colunas 'varacidade' e/ou 'numeroprocesso' não encontradas."
)

// Metric is a named scalar shown as a summary card.
type Metric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ChartRow is one long-form row of a bar chart payload.
type ChartRow struct {
	Category string `json:"category"`
	Metric   string `json:"metric"`
	Quantity int    `json:"quantity"`
}

// Group is one bucket of a grouped count.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// bucket accumulates the rows of one grouping key.
type bucket struct {
	rows     int
	distinct map[string]map[string]struct{}
}

func (b *bucket) count(column string) int {
	return len(b.distinct[column])
}

// tally groups t by keyColumn, substituting placeholder for null keys, and
// tracks distinct non-null values of each of distinctColumns present in t.
func tally(t *core.Table, keyColumn, placeholder string, distinctColumns ...string) map[string]*bucket {
	var tracked []string
	for _, c := range distinctColumns {
		if t.Has(c) {
			tracked = append(tracked, c)
		}
	}

	out := make(map[string]*bucket)
	t.Each(func(r core.Record) {
		key := core.OrDefault(r.Field(keyColumn), placeholder)
		b, ok := out[key]
		if !ok {
			b = &bucket{distinct: make(map[string]map[string]struct{}, len(tracked))}
			for _, c := range tracked {
				b.distinct[c] = make(map[string]struct{})
			}
			out[key] = b
		}
		b.rows++
		for _, c := range tracked {
			if v := r.Field(c); v != "" {
				b.distinct[c][v] = struct{}{}
			}
		}
	})
	return out
}

// sortedKeys returns the keys of buckets in Brazilian Portuguese collation order.
func sortedKeys(buckets map[string]*bucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	collate.New(language.BrazilianPortuguese).SortStrings(keys)
	return keys
}

// rankGroups orders groups by descending count, ties by ascending collated key.
func rankGroups(groups []Group) {
	col := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return col.CompareString(groups[i].Key, groups[j].Key) < 0
	})
}
