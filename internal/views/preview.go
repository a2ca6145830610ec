package views

import (
	"strconv"

	"painel/internal/core"
)

// Column order of the data table. Only columns present in the table are shown.
var previewColumns = []string{
	core.ColNumeroProcesso,
	core.ColNumero,
	core.ColCodParte,
	core.ColEstado,
	core.ColVaraCidade,
	core.ColTipoDocumento,
	core.ColDataReceb,
	core.ColDataMes,
	core.ColEgressoBool,
	core.ColCapitalBool,
	core.ColSituacaoDeRua,
}

// Preview is a tabular sample of the rows behind a view.
type Preview struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

// NewPreview renders at most limit rows of t as strings. limit <= 0 keeps every row.
func NewPreview(t *core.Table, limit int) Preview {
	p := Preview{Total: t.Len()}
	for _, c := range previewColumns {
		if t.Has(c) {
			p.Columns = append(p.Columns, c)
		}
	}

	n := t.Len()
	if limit > 0 && n > limit {
		n = limit
		p.Truncated = true
	}
	p.Rows = make([][]string, 0, n)
	t.Each(func(r core.Record) {
		if len(p.Rows) == n {
			return
		}
		row := make([]string, len(p.Columns))
		for i, c := range p.Columns {
			row[i] = cell(r, c)
		}
		p.Rows = append(p.Rows, row)
	})
	return p
}

func cell(r core.Record, column string) string {
	switch column {
	case core.ColDataReceb:
		if r.DataRecebimento == nil {
			return ""
		}
		return r.DataRecebimento.Format("2006-01-02")
	case core.ColDataMes:
		return r.DataMes.String()
	case core.ColEgressoBool:
		return strconv.FormatBool(r.Egresso)
	case core.ColCapitalBool:
		return strconv.FormatBool(r.Capital)
	case core.ColSituacaoDeRua:
		return strconv.FormatBool(r.SituacaoDeRua)
	}
	return r.Field(column)
}
