package views

import (
	"painel/internal/core"
	"painel/internal/filter"
)

// State is everything one dashboard interaction depends on.
type State struct {
	Full    *core.Table
	Filters filter.Options
	Period  filter.MonthRange
	// PreviewLimit caps the overview data table; 0 keeps every row.
	PreviewLimit int
	// Notices raised while loading Full, shown above every view.
	Notices []core.Notice
}

// Dashboard is the complete output of one interaction.
type Dashboard struct {
	Choices      filter.Choices `json:"choices"`
	Filters      filter.Options `json:"filters"`
	TotalRows    int            `json:"total_rows"`
	FilteredRows int            `json:"filtered_rows"`
	Overview     OverviewResult `json:"overview"`
	Documentos   GroupResult    `json:"documentos"`
	Municipios   GroupResult    `json:"municipios"`
	Notices      []core.Notice  `json:"notices"`
}

// Render runs the whole pipeline: filter, then the three independent views.
// The same state always yields the same dashboard.
func Render(state State) Dashboard {
	filtered := filter.Apply(state.Full, state.Filters)

	overview := Overview(state.Full, filtered, state.Period)
	overview.Preview = NewPreview(overview.Rows, state.PreviewLimit)

	notices := make([]core.Notice, len(state.Notices))
	copy(notices, state.Notices)

	return Dashboard{
		Choices:      filter.Available(state.Full, state.Filters),
		Filters:      state.Filters,
		TotalRows:    state.Full.Len(),
		FilteredRows: filtered.Len(),
		Overview:     overview,
		Documentos:   ByDocumentType(filtered),
		Municipios:   ByMunicipality(filtered),
		Notices:      notices,
	}
}
