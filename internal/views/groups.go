package views

import "painel/internal/core"

// Grouped view labels.
const (
	LabelTotalPartes    = "Total de partes (soma por tipo de documento)"
	LabelTiposDocumento = "Nº de tipos de documento"
	MetricQtdPartes     = "Quantidade de partes"

	LabelTotalProcessos = "Total de processos (soma por município)"
	LabelMunicipios     = "Nº de municípios"
	MetricQtdProcessos  = "Quantidade de processos"
)

// GroupResult is a grouped bar chart with its total and group cardinality.
type GroupResult struct {
	Groups  []Group       `json:"groups"`
	Rows    []ChartRow    `json:"rows"`
	Total   int           `json:"total"`
	Count   int           `json:"count"`
	Metrics []Metric      `json:"metrics"`
	Notices []core.Notice `json:"notices"`
	NoData  bool          `json:"no_data"`

	Err error `json:"-"`
}

// ByDocumentType counts distinct parties per tipodocumento. Without codparte
// each group counts its rows.
func ByDocumentType(t *core.Table) GroupResult {
	if t.Empty() {
		return noData()
	}
	if err := core.RequireColumns(t, ViewDocumentos, core.ColTipoDocumento); err != nil {
		return missing(err, MsgNoTipoDoc)
	}

	buckets := tally(t, core.ColTipoDocumento, core.NaoInformado, core.ColCodParte)
	byParte := t.Has(core.ColCodParte)
	groups := make([]Group, 0, len(buckets))
	for key, b := range buckets {
		n := b.rows
		if byParte {
			n = b.count(core.ColCodParte)
		}
		groups = append(groups, Group{Key: key, Count: n})
	}
	return grouped(groups, MetricQtdPartes, LabelTotalPartes, LabelTiposDocumento)
}

// ByMunicipality counts distinct processes (numero) per varacidade.
func ByMunicipality(t *core.Table) GroupResult {
	if t.Empty() {
		return noData()
	}
	if err := core.RequireColumns(t, ViewMunicipios, core.ColVaraCidade, core.ColNumero); err != nil {
		return missing(err, MsgNoMunicipio)
	}

	buckets := tally(t, core.ColVaraCidade, core.SemMunicipio, core.ColNumero)
	groups := make([]Group, 0, len(buckets))
	for key, b := range buckets {
		groups = append(groups, Group{Key: key, Count: b.count(core.ColNumero)})
	}
	return grouped(groups, MetricQtdProcessos, LabelTotalProcessos, LabelMunicipios)
}

func grouped(groups []Group, metric, totalLabel, countLabel string) GroupResult {
	rankGroups(groups)

	res := GroupResult{
		Groups: groups,
		Rows:   make([]ChartRow, 0, len(groups)),
		Count:  len(groups),
	}
	for _, g := range groups {
		res.Total += g.Count
		res.Rows = append(res.Rows, ChartRow{Category: g.Key, Metric: metric, Quantity: g.Count})
	}
	res.Metrics = []Metric{
		{Label: totalLabel, Value: res.Total},
		{Label: countLabel, Value: res.Count},
	}
	return res
}

func noData() GroupResult {
	return GroupResult{NoData: true, Notices: []core.Notice{core.Warn(MsgNoDataFilters)}}
}

func missing(err error, msg string) GroupResult {
	return GroupResult{Err: err, Notices: []core.Notice{core.Alert(msg)}}
}
