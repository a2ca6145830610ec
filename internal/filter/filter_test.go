package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
)

var allColumns = []string{
	core.ColNumeroProcesso, core.ColNumero, core.ColCodParte, core.ColEstado,
	core.ColVaraCidade, core.ColTipoDocumento, core.ColDataReceb,
	core.ColEgresso, core.ColCapital, core.ColSituacaoDeRua,
}

func month(y int, m time.Month) core.Month {
	return core.Month{Year: y, Month: m}
}

func fixture() *core.Table {
	return core.NewTable(allColumns, []core.Record{
		{Numero: "P1", CodParte: "C1", Estado: "SP", VaraCidade: "São Paulo", TipoDocumento: "RG", DataMes: month(2024, 1), Egresso: true, Capital: true},
		{Numero: "P1", CodParte: "C2", Estado: "SP", VaraCidade: "Campinas", TipoDocumento: "CPF", DataMes: month(2024, 2)},
		{Numero: "P2", CodParte: "C3", Estado: "RJ", VaraCidade: "Rio de Janeiro", TipoDocumento: "RG", DataMes: month(2024, 3), Egresso: true, Capital: true},
		{Numero: "P3", CodParte: "C4"},
		{Numero: "P4", CodParte: "C1", Estado: "MG", VaraCidade: "Belo Horizonte", TipoDocumento: "CNH", DataMes: month(2024, 2), Egresso: true},
	})
}

func optionGrid() []Options {
	return []Options{
		{},
		{EgressoOnly: true},
		{CapitalOnly: true},
		{EgressoOnly: true, CapitalOnly: true},
		{Municipios: Only("São Paulo", "Campinas")},
		{Municipios: Only("Belo Horizonte", "Rio de Janeiro", "São Paulo")},
		{Municipios: Only()},
		{TiposDocumento: Only("RG")},
		{TiposDocumento: Only("CPF", "CNH")},
		{DateRange: Between(month(2024, 2), month(2024, 3))},
		{DateRange: Between(month(2024, 1), month(2024, 1))},
		{DateRange: Between(month(2024, 2), core.Month{})},
		{EgressoOnly: true, TiposDocumento: Only("RG", "CNH"), DateRange: Between(month(2023, 12), month(2024, 2))},
	}
}

func TestApplyIsOrderIndependent(t *testing.T) {
	table := fixture()
	grid := optionGrid()

	for i, o1 := range grid {
		for j, o2 := range grid {
			t.Run(fmt.Sprintf("%d_%d", i, j), func(t *testing.T) {
				sequential := Apply(Apply(table, o1), o2)
				reversed := Apply(Apply(table, o2), o1)
				combined := Apply(table, And(o1, o2))

				if diff := cmp.Diff(combined.Records(), sequential.Records()); diff != "" {
					t.Errorf("Apply(Apply(T,O1),O2) mismatch (-combined +sequential):\n%s", diff)
				}
				if diff := cmp.Diff(sequential.Records(), reversed.Records()); diff != "" {
					t.Errorf("order dependence (-o1o2 +o2o1):\n%s", diff)
				}
			})
		}
	}
}

func TestDistinctCountsShrinkAsFiltersNarrow(t *testing.T) {
	table := fixture()
	columns := []string{core.ColCodParte, core.ColNumero, core.ColNumeroProcesso}

	for i, o := range optionGrid() {
		filtered := Apply(table, o)
		for _, c := range columns {
			assert.LessOrEqual(t, filtered.DistinctCount(c), table.DistinctCount(c), "options %d column %s", i, c)
		}
		assert.LessOrEqual(t, filtered.Len(), table.Len())
	}
}

func TestEmptyExplicitSelectionYieldsEmptyTable(t *testing.T) {
	table := fixture()

	assert.True(t, Apply(table, Options{Municipios: Only()}).Empty())
	assert.True(t, Apply(table, Options{TiposDocumento: Only()}).Empty())
}

func TestSelectionSkippedWhenColumnAbsent(t *testing.T) {
	table := core.NewTable([]string{core.ColNumero}, []core.Record{{Numero: "P1"}, {Numero: "P2"}})

	got := Apply(table, Options{Municipios: Only(), TiposDocumento: Only("RG"), DateRange: Between(month(2024, 1), month(2024, 2))})
	assert.Equal(t, 2, got.Len())
}

func TestEgressoOnlyWithoutEgressoColumn(t *testing.T) {
	table := core.NewTable([]string{core.ColNumero, core.ColCodParte, core.ColVaraCidade}, []core.Record{
		{Numero: "P1", CodParte: "C1", VaraCidade: "Recife"},
		{Numero: "P2", CodParte: "C2", VaraCidade: "Olinda"},
	})

	require.True(t, table.Has(core.ColEgressoBool))
	table.Each(func(r core.Record) { assert.False(t, r.Egresso) })
	assert.True(t, Apply(table, Options{EgressoOnly: true}).Empty())
	assert.True(t, Apply(table, Options{EgressoOnly: true, Municipios: Only("Recife")}).Empty())
}

func TestNullValuesNeverMatchExplicitSelection(t *testing.T) {
	table := fixture()

	got := Apply(table, Options{Municipios: Only("", "Campinas")})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Campinas", got.Records()[0].VaraCidade)

	assert.Equal(t, table.Len(), Apply(table, Options{Municipios: All()}).Len())
}

func TestDateRangeExcludesNullMonths(t *testing.T) {
	got := Apply(fixture(), Options{DateRange: Between(core.Month{}, core.Month{})})

	assert.Equal(t, 4, got.Len())
	got.Each(func(r core.Record) { assert.False(t, r.DataMes.IsZero()) })
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	table := fixture()
	before := table.Records()

	_ = Apply(table, Options{EgressoOnly: true, TiposDocumento: Only("RG")})

	if diff := cmp.Diff(before, table.Records()); diff != "" {
		t.Errorf("input mutated:\n%s", diff)
	}
}

func TestApplyEmptyKeepsColumns(t *testing.T) {
	table := fixture()
	got := Apply(table, Options{Municipios: Only("Manaus")})

	assert.True(t, got.Empty())
	assert.Equal(t, table.Columns(), got.Columns())
}

func TestMonthRange(t *testing.T) {
	jan, feb, mar := month(2024, 1), month(2024, 2), month(2024, 3)

	tests := []struct {
		name string
		r    MonthRange
		in   []core.Month
		out  []core.Month
	}{
		{"all keeps null", AllMonths(), []core.Month{{}, jan, mar}, nil},
		{"closed", Between(feb, mar), []core.Month{feb, mar}, []core.Month{jan, {}}},
		{"swapped bounds", Between(mar, feb), []core.Month{feb, mar}, []core.Month{jan}},
		{"open end", Between(feb, core.Month{}), []core.Month{feb, mar}, []core.Month{jan}},
		{"intersection", Between(jan, feb).Intersect(Between(feb, mar)), []core.Month{feb}, []core.Month{jan, mar}},
		{"disjoint", Between(jan, jan).Intersect(Between(mar, mar)), nil, []core.Month{jan, feb, mar}},
		{"clamp", AllMonths().Clamp(jan, feb), []core.Month{jan, feb}, []core.Month{mar, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, m := range tt.in {
				assert.True(t, tt.r.Contains(m), "want %v inside", m)
			}
			for _, m := range tt.out {
				assert.False(t, tt.r.Contains(m), "want %v outside", m)
			}
		})
	}

	assert.True(t, Between(jan, jan).Intersect(Between(mar, mar)).Empty())
	assert.False(t, Between(jan, mar).Empty())
}

func TestSelectionIntersect(t *testing.T) {
	got := Only("a", "b", "c").Intersect(Only("b", "c", "d"))
	assert.Equal(t, []string{"b", "c"}, got.Values())

	assert.True(t, All().Intersect(All()).IsAll())
	assert.Equal(t, []string{"x"}, All().Intersect(Only("x")).Values())
	assert.Equal(t, 0, Only("a").Intersect(Only("b")).Len())
	assert.Equal(t, -1, All().Len())
}

func TestAvailableCascades(t *testing.T) {
	table := fixture()

	all := Available(table, Options{})
	assert.Equal(t, []string{"Belo Horizonte", "Campinas", "Rio de Janeiro", "São Paulo"}, all.Municipios)
	assert.Equal(t, []string{"CNH", "CPF", "RG"}, all.TiposDocumento)
	assert.True(t, all.HasMonths)
	assert.Equal(t, month(2024, 1), all.MinMonth)
	assert.Equal(t, month(2024, 3), all.MaxMonth)

	capital := Available(table, Options{CapitalOnly: true, Municipios: Only("Rio de Janeiro")})
	assert.Equal(t, []string{"Rio de Janeiro", "São Paulo"}, capital.Municipios)
	assert.Equal(t, []string{"RG"}, capital.TiposDocumento)
	assert.Equal(t, month(2024, 3), capital.MinMonth)
}

func TestAvailableWithoutColumns(t *testing.T) {
	table := core.NewTable([]string{core.ColNumero}, []core.Record{{Numero: "P1"}})

	c := Available(table, Options{})
	assert.Nil(t, c.Municipios)
	assert.Nil(t, c.TiposDocumento)
	assert.False(t, c.HasMonths)
}

func TestSortStringsUsesPortugueseCollation(t *testing.T) {
	values := []string{"Belo Horizonte", "Álvares Machado", "abaeté"}

	SortStrings(values)

	assert.Equal(t, []string{"abaeté", "Álvares Machado", "Belo Horizonte"}, values)
}
