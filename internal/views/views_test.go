package views

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
	"painel/internal/filter"
)

var allColumns = []string{
	core.ColNumeroProcesso, core.ColNumero, core.ColCodParte, core.ColEstado,
	core.ColVaraCidade, core.ColTipoDocumento, core.ColDataReceb,
	core.ColEgresso, core.ColCapital, core.ColSituacaoDeRua,
}

func month(y int, m time.Month) core.Month {
	return core.Month{Year: y, Month: m}
}

func TestOverviewScenarioSharedProcess(t *testing.T) {
	table := core.NewTable([]string{core.ColNumeroProcesso, core.ColNumero, core.ColCodParte}, []core.Record{
		{NumeroProcesso: "P1", Numero: "P1", CodParte: "C1"},
		{NumeroProcesso: "P1", Numero: "P1", CodParte: "C2"},
		{NumeroProcesso: "P2", Numero: "P2", CodParte: "C3"},
	})

	res := Overview(table, table, filter.AllMonths())

	assert.False(t, res.NoData)
	assert.Equal(t, 3, res.Cumprimentos)
	assert.Equal(t, 2, res.ProcessosUnicos)
	assert.Equal(t, 3, res.PartesUnicas)
}

func TestOverviewWithoutFlagColumn(t *testing.T) {
	table := core.NewTable([]string{core.ColNumeroProcesso, core.ColCodParte, core.ColEstado}, []core.Record{
		{NumeroProcesso: "P1", CodParte: "C1", Estado: "SP"},
		{NumeroProcesso: "P2", CodParte: "C2", Estado: "RJ"},
	})

	res := Overview(table, table, filter.AllMonths())

	assert.Equal(t, 0, res.FlaggedGeral)
	assert.Equal(t, 0, res.FlaggedFiltrado)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Notices)
}

func TestOverviewFlaggedBaselineUsesFullTable(t *testing.T) {
	full := core.NewTable(allColumns, []core.Record{
		{CodParte: "C1", Estado: "SP", SituacaoDeRua: true, Egresso: true},
		{CodParte: "C1", Estado: "SP", SituacaoDeRua: true},
		{CodParte: "C2", Estado: "RJ", SituacaoDeRua: true},
		{CodParte: "C3", Estado: "RJ"},
	})
	filtered := filter.Apply(full, filter.Options{EgressoOnly: true})

	res := Overview(full, filtered, filter.AllMonths())

	assert.Equal(t, 2, res.FlaggedGeral)
	assert.Equal(t, 1, res.FlaggedFiltrado)
}

func TestOverviewPeriod(t *testing.T) {
	table := core.NewTable(allColumns, []core.Record{
		{NumeroProcesso: "A", CodParte: "C1", Estado: "SP", DataMes: month(2024, 1)},
		{NumeroProcesso: "B", CodParte: "C2", Estado: "SP", DataMes: month(2024, 2)},
		{NumeroProcesso: "C", CodParte: "C3", Estado: "RJ", DataMes: month(2024, 5)},
		{NumeroProcesso: "D", CodParte: "C4", Estado: "RJ"},
	})

	t.Run("defaults to data bounds", func(t *testing.T) {
		res := Overview(table, table, filter.AllMonths())

		require.True(t, res.HasPeriod)
		assert.Equal(t, month(2024, 1), res.Period.From)
		assert.Equal(t, month(2024, 5), res.Period.To)
		assert.Equal(t, 3, res.Cumprimentos, "null month is outside the period")
	})

	t.Run("narrower period refilters", func(t *testing.T) {
		res := Overview(table, table, filter.Between(month(2024, 2), month(2024, 5)))

		assert.Equal(t, 2, res.Cumprimentos)
		assert.Equal(t, 2, res.Rows.Len())
	})

	t.Run("period is clamped", func(t *testing.T) {
		res := Overview(table, table, filter.Between(month(2020, 1), month(2030, 1)))

		assert.Equal(t, month(2024, 1), res.Period.From)
		assert.Equal(t, month(2024, 5), res.Period.To)
	})

	t.Run("empty period", func(t *testing.T) {
		res := Overview(table, table, filter.Between(month(2024, 3), month(2024, 4)))

		assert.True(t, res.NoData)
		require.Len(t, res.Notices, 1)
		assert.Equal(t, MsgNoDataPeriod, res.Notices[0].Message)
	})
}

func TestOverviewPorEstado(t *testing.T) {
	table := core.NewTable(allColumns, []core.Record{
		{Numero: "N1", CodParte: "C1", Estado: "SP"},
		{Numero: "N1", CodParte: "C2", Estado: "SP"},
		{Numero: "N2", CodParte: "C2", Estado: "SP"},
		{Numero: "N3", CodParte: "C3"},
	})

	res := Overview(table, table, filter.AllMonths())

	want := []ChartRow{
		{Category: core.SemEstado, Metric: MetricCumprimento, Quantity: 1},
		{Category: core.SemEstado, Metric: MetricProcessos, Quantity: 1},
		{Category: core.SemEstado, Metric: MetricPartes, Quantity: 1},
		{Category: "SP", Metric: MetricCumprimento, Quantity: 3},
		{Category: "SP", Metric: MetricProcessos, Quantity: 2},
		{Category: "SP", Metric: MetricPartes, Quantity: 2},
	}
	if diff := cmp.Diff(want, res.PorEstado); diff != "" {
		t.Errorf("PorEstado mismatch (-want +got):\n%s", diff)
	}
}

func TestOverviewWithoutEstado(t *testing.T) {
	table := core.NewTable([]string{core.ColNumeroProcesso, core.ColCodParte}, []core.Record{
		{NumeroProcesso: "P1", CodParte: "C1"},
	})

	res := Overview(table, table, filter.AllMonths())

	var missing *core.MissingColumnError
	require.ErrorAs(t, res.Err, &missing)
	assert.Equal(t, []string{core.ColEstado}, missing.Columns)
	assert.Equal(t, 1, res.Cumprimentos, "metrics still reported")
	assert.Nil(t, res.PorEstado)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, core.NoticeError, res.Notices[0].Level)
}

func TestByDocumentTypeScenario(t *testing.T) {
	table := core.NewTable([]string{core.ColCodParte, core.ColTipoDocumento}, []core.Record{
		{CodParte: "C1", TipoDocumento: "RG"},
		{CodParte: "C1", TipoDocumento: "RG"},
		{CodParte: "C2", TipoDocumento: "CPF"},
	})

	res := ByDocumentType(table)

	want := []Group{{Key: "CPF", Count: 1}, {Key: "RG", Count: 1}}
	if diff := cmp.Diff(want, res.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Count)
}

func TestByDocumentTypeSumEqualsTotal(t *testing.T) {
	table := core.NewTable(allColumns, []core.Record{
		{CodParte: "C1", TipoDocumento: "RG"},
		{CodParte: "C2", TipoDocumento: "RG"},
		{CodParte: "C1", TipoDocumento: "CPF"},
		{CodParte: "C3"},
		{CodParte: "C4", TipoDocumento: "CNH"},
		{CodParte: "C5", TipoDocumento: "RG"},
	})

	res := ByDocumentType(table)

	sum := 0
	for _, g := range res.Groups {
		sum += g.Count
	}
	assert.Equal(t, res.Total, sum)
	assert.Equal(t, Metric{Label: LabelTotalPartes, Value: sum}, res.Metrics[0])
	assert.Equal(t, "RG", res.Groups[0].Key)
	assert.Equal(t, 3, res.Groups[0].Count)
	assert.Contains(t, res.Groups, Group{Key: core.NaoInformado, Count: 1})
}

func TestByDocumentTypeCountsRowsWithoutCodParte(t *testing.T) {
	table := core.NewTable([]string{core.ColTipoDocumento}, []core.Record{
		{TipoDocumento: "RG"}, {TipoDocumento: "RG"}, {TipoDocumento: "CPF"},
	})

	res := ByDocumentType(table)

	assert.Equal(t, []Group{{Key: "RG", Count: 2}, {Key: "CPF", Count: 1}}, res.Groups)
	assert.Equal(t, 3, res.Total)
}

func TestByDocumentTypeMissingColumn(t *testing.T) {
	table := core.NewTable([]string{core.ColCodParte}, []core.Record{{CodParte: "C1"}})

	res := ByDocumentType(table)

	var missing *core.MissingColumnError
	assert.ErrorAs(t, res.Err, &missing)
	assert.Nil(t, res.Groups)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, MsgNoTipoDoc, res.Notices[0].Message)
}

func TestByMunicipality(t *testing.T) {
	table := core.NewTable(allColumns, []core.Record{
		{Numero: "N1", VaraCidade: "Recife"},
		{Numero: "N1", VaraCidade: "Recife"},
		{Numero: "N2", VaraCidade: "Olinda"},
		{Numero: "N3", VaraCidade: "Olinda"},
		{Numero: "N4"},
		{Numero: "N5", VaraCidade: "Caruaru"},
	})

	res := ByMunicipality(table)

	want := []Group{
		{Key: "Olinda", Count: 2},
		{Key: "Caruaru", Count: 1},
		{Key: "Recife", Count: 1},
		{Key: core.SemMunicipio, Count: 1},
	}
	if diff := cmp.Diff(want, res.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, ChartRow{Category: "Olinda", Metric: MetricQtdProcessos, Quantity: 2}, res.Rows[0])
}

func TestViewsReportNoData(t *testing.T) {
	empty := core.NewTable(allColumns, nil)

	overview := Overview(empty, empty, filter.AllMonths())
	docs := ByDocumentType(empty)
	muns := ByMunicipality(empty)

	for _, notices := range [][]core.Notice{overview.Notices, docs.Notices, muns.Notices} {
		require.Len(t, notices, 1)
		assert.Equal(t, MsgNoDataFilters, notices[0].Message)
	}
	assert.True(t, overview.NoData)
	assert.True(t, docs.NoData)
	assert.True(t, muns.NoData)
	assert.Nil(t, docs.Rows)
	assert.Nil(t, muns.Rows)
}

func TestRenderMissingNumeroIsolatesMunicipality(t *testing.T) {
	table := core.NewTable(
		[]string{core.ColNumeroProcesso, core.ColCodParte, core.ColEstado, core.ColVaraCidade, core.ColTipoDocumento},
		[]core.Record{
			{NumeroProcesso: "P1", CodParte: "C1", Estado: "SP", VaraCidade: "Santos", TipoDocumento: "RG"},
			{NumeroProcesso: "P2", CodParte: "C2", Estado: "SP", VaraCidade: "Santos", TipoDocumento: "CPF"},
		})

	d := Render(State{Full: table})

	var missing *core.MissingColumnError
	require.ErrorAs(t, d.Municipios.Err, &missing)
	assert.Equal(t, []string{core.ColNumero}, missing.Columns)
	assert.Nil(t, d.Municipios.Rows)
	require.Len(t, d.Municipios.Notices, 1)
	assert.Equal(t, MsgNoMunicipio, d.Municipios.Notices[0].Message)

	assert.NoError(t, d.Overview.Err)
	assert.Equal(t, 2, d.Overview.Cumprimentos)
	assert.NoError(t, d.Documentos.Err)
	assert.Equal(t, 2, d.Documentos.Total)
}

func TestRenderIsIdempotent(t *testing.T) {
	table := core.NewTable(allColumns, []core.Record{
		{Numero: "N1", CodParte: "C1", Estado: "SP", VaraCidade: "Santos", TipoDocumento: "RG", DataMes: month(2024, 1), Egresso: true},
		{Numero: "N2", CodParte: "C2", Estado: "RJ", VaraCidade: "Niterói", TipoDocumento: "CPF", DataMes: month(2024, 2)},
	})
	state := State{
		Full:         table,
		Filters:      filter.Options{Municipios: filter.Only("Santos", "Niterói")},
		Period:       filter.Between(month(2024, 1), month(2024, 2)),
		PreviewLimit: 1,
		Notices:      []core.Notice{core.Warn("carregado")},
	}

	first, err := json.Marshal(Render(state))
	require.NoError(t, err)
	second, err := json.Marshal(Render(state))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))

	d := Render(state)
	assert.Equal(t, 2, d.FilteredRows)
	assert.True(t, d.Overview.Preview.Truncated)
	assert.Len(t, d.Overview.Preview.Rows, 1)
	assert.Equal(t, 2, d.Overview.Preview.Total)
	assert.Equal(t, []string{"Niterói", "Santos"}, d.Choices.Municipios)
}

func TestNewPreviewColumns(t *testing.T) {
	received := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	table := core.NewTable([]string{core.ColNumero, core.ColDataReceb}, []core.Record{
		{Numero: "N1", DataRecebimento: &received, DataMes: core.MonthOf(received), Egresso: true},
	})

	p := NewPreview(table, 0)

	assert.Equal(t, []string{core.ColNumero, core.ColDataReceb, core.ColDataMes, core.ColEgressoBool, core.ColCapitalBool}, p.Columns)
	assert.Equal(t, [][]string{{"N1", "2024-03-09", "2024-03", "true", "false"}}, p.Rows)
	assert.False(t, p.Truncated)
}
