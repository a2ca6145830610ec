package views

import (
	"painel/internal/core"
	"painel/internal/filter"
)

// Overview metric labels.
const (
	LabelCumprimentos    = "Qtde de cumprimento de cartório"
	LabelProcessos       = "Qtde de processos (sem repetição)"
	LabelPartes          = "Qtde de partes (sem repetição)"
	LabelFlaggedGeral    = "Qtde de Moradores de Rua com Flag de Identificação Geral"
	LabelFlaggedFiltrado = "Qtde de Moradores de Rua com Flag de Identificação Filtrado"

	MetricCumprimento = "Cumprimento de cartório"
	MetricProcessos   = "Processos (sem repetição)"
	MetricPartes      = "Partes (sem repetição)"
)

// OverviewResult is the Visão Geral tab.
type OverviewResult struct {
	// Period is the resolved inclusive range; unbounded when the data has no months.
	Period    filter.MonthRange `json:"period"`
	MinMonth  core.Month        `json:"min_month"`
	MaxMonth  core.Month        `json:"max_month"`
	HasPeriod bool              `json:"has_period"`

	Cumprimentos    int `json:"cumprimentos"`
	ProcessosUnicos int `json:"processos_unicos"`
	PartesUnicas    int `json:"partes_unicas"`
	FlaggedGeral    int `json:"flagged_geral"`
	FlaggedFiltrado int `json:"flagged_filtrado"`

	Metrics   []Metric      `json:"metrics"`
	PorEstado []ChartRow    `json:"por_estado"`
	Preview   Preview       `json:"preview"`
	Notices   []core.Notice `json:"notices"`
	NoData    bool          `json:"no_data"`

	// Rows is the period-filtered table behind the metrics.
	Rows *core.Table `json:"-"`
	Err  error       `json:"-"`
}

// Overview computes the summary metrics and per-state breakdown of filtered,
// restricted to period. Period defaults to the month bounds of filtered and
// is clamped to them. The global flagged count is taken over full.
func Overview(full, filtered *core.Table, period filter.MonthRange) OverviewResult {
	var res OverviewResult
	if filtered.Empty() {
		res.NoData = true
		res.Notices = []core.Notice{core.Warn(MsgNoDataFilters)}
		res.Rows = filtered
		return res
	}

	rows := filtered
	if lo, hi, ok := filtered.MonthBounds(); ok {
		res.MinMonth, res.MaxMonth, res.HasPeriod = lo, hi, true
		res.Period = period.Clamp(lo, hi)
		rows = filter.Apply(filtered, filter.Options{DateRange: res.Period})
	}
	res.Rows = rows

	if rows.Empty() {
		res.NoData = true
		res.Notices = []core.Notice{core.Warn(MsgNoDataPeriod)}
		return res
	}

	res.Cumprimentos = rows.Len()
	res.ProcessosUnicos = rows.DistinctCount(core.ColNumeroProcesso)
	res.PartesUnicas = rows.DistinctCount(core.ColCodParte)
	res.FlaggedGeral = flaggedPartes(full)
	res.FlaggedFiltrado = flaggedPartes(rows)

	res.Metrics = []Metric{
		{Label: LabelCumprimentos, Value: res.Cumprimentos},
		{Label: LabelProcessos, Value: res.ProcessosUnicos},
		{Label: LabelPartes, Value: res.PartesUnicas},
		{Label: LabelFlaggedGeral, Value: res.FlaggedGeral},
		{Label: LabelFlaggedFiltrado, Value: res.FlaggedFiltrado},
	}

	if err := core.RequireColumns(rows, ViewOverview, core.ColEstado); err != nil {
		res.Err = err
		res.Notices = append(res.Notices, core.Alert(MsgNoEstado))
		return res
	}
	res.PorEstado = porEstado(rows)
	return res
}

// flaggedPartes counts distinct codparte among rows flagged as pessoa em
// situação de rua. Without the flag column the count is zero.
func flaggedPartes(t *core.Table) int {
	if !t.Has(core.ColSituacaoDeRua) {
		return 0
	}
	return t.Where(func(r core.Record) bool { return r.SituacaoDeRua }).DistinctCount(core.ColCodParte)
}

func porEstado(t *core.Table) []ChartRow {
	buckets := tally(t, core.ColEstado, core.SemEstado, core.ColNumero, core.ColCodParte)
	rows := make([]ChartRow, 0, 3*len(buckets))
	for _, estado := range sortedKeys(buckets) {
		b := buckets[estado]
		rows = append(rows,
			ChartRow{Category: estado, Metric: MetricCumprimento, Quantity: b.rows},
			ChartRow{Category: estado, Metric: MetricProcessos, Quantity: b.count(core.ColNumero)},
			ChartRow{Category: estado, Metric: MetricPartes, Quantity: b.count(core.ColCodParte)},
		)
	}
	return rows
}
