package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"painel/internal/core"
)

// row mirrors one line of the extract. Flags stay strings and are coerced
// after decoding so that loosely formatted cells never fail the load.
type row struct {
	NumeroProcesso  string `csv:"numeroprocesso"`
	Numero          string `csv:"numero"`
	CodParte        string `csv:"codparte"`
	Estado          string `csv:"estado"`
	VaraCidade      string `csv:"varacidade"`
	TipoDocumento   string `csv:"tipodocumento"`
	DataRecebimento string `csv:"datarecebimento"`
	Egresso         string `csv:"Egresso"`
	Capital         string `csv:"Capital"`
	SituacaoDeRua   string `csv:"pessoaemsituacaoderua"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cells read as null, the same tokens a dataframe reader treats as missing.
var nullTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-NaN":     {},
	"-nan":     {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"1.#IND":   {},
	"1.#QNAN":  {},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

func nullable(s string) string {
	if _, ok := nullTokens[s]; ok {
		return ""
	}
	return s
}

// parseDate returns nil for null or unrecognised values.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Parse decodes a comma-separated extract with a header row. path is only
// used in errors. The returned notices describe every defaulted column.
func Parse(path string, data []byte) (*core.Table, []core.Notice, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &core.ParseError{Path: path, Err: errors.New("missing header row")}
		}
		return nil, nil, parseError(path, err)
	}

	var rows []*row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil, &core.ParseError{Path: path, Err: errors.New("missing header row")}
		}
		return nil, nil, parseError(path, err)
	}

	columns := make(map[string]bool, len(header))
	for _, h := range header {
		columns[h] = true
	}

	records := make([]core.Record, 0, len(rows))
	coerced := 0
	for _, r := range rows {
		rec := core.Record{
			NumeroProcesso: nullable(r.NumeroProcesso),
			Numero:         nullable(r.Numero),
			CodParte:       nullable(r.CodParte),
			Estado:         nullable(r.Estado),
			VaraCidade:     nullable(r.VaraCidade),
			TipoDocumento:  nullable(r.TipoDocumento),
			Egresso:        columns[core.ColEgresso] && core.Truthy(r.Egresso),
			Capital:        columns[core.ColCapital] && core.Truthy(r.Capital),
			SituacaoDeRua:  columns[core.ColSituacaoDeRua] && core.Truthy(r.SituacaoDeRua),
		}
		if columns[core.ColDataReceb] {
			raw := nullable(strings.TrimSpace(r.DataRecebimento))
			rec.DataRecebimento = parseDate(raw)
			if rec.DataRecebimento != nil {
				rec.DataMes = core.MonthOf(*rec.DataRecebimento)
			} else if raw != "" {
				coerced++
			}
		}
		records = append(records, rec)
	}

	return core.NewTable(header, records), loadNotices(columns, coerced), nil
}

func loadNotices(columns map[string]bool, coercedDates int) []core.Notice {
	var notices []core.Notice
	if !columns[core.ColDataReceb] {
		notices = append(notices, core.Warn("Coluna 'datarecebimento' não encontrada; filtro por período desativado."))
	}
	if coercedDates > 0 {
		notices = append(notices, core.Warn(fmt.Sprintf(
			"%d valor(es) de 'datarecebimento' não reconhecido(s) como data foram tratados como vazios.", coercedDates)))
	}
	if !columns[core.ColEgresso] {
		notices = append(notices, core.Warn("Coluna 'Egresso' não encontrada; nenhum registro considerado egresso."))
	}
	if !columns[core.ColCapital] {
		notices = append(notices, core.Warn("Coluna 'Capital' não encontrada; nenhum registro considerado de capital."))
	}
	if !columns[core.ColSituacaoDeRua] {
		notices = append(notices, core.Warn("Coluna 'pessoaemsituacaoderua' não encontrada; contagens com flag de morador de rua reportadas como 0."))
	}
	return notices
}

func parseError(path string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &core.ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
	}
	return &core.ParseError{Path: path, Err: err}
}
