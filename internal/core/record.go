package core

import (
	"strings"
	"time"
)

// Source and derived column names of the extract.
const (
	ColNumeroProcesso = "numeroprocesso"
	ColNumero         = "numero"
	ColCodParte       = "codparte"
	ColEstado         = "estado"
	ColVaraCidade     = "varacidade"
	ColTipoDocumento  = "tipodocumento"
	ColDataReceb      = "datarecebimento"
	ColEgresso        = "Egresso"
	ColCapital        = "Capital"
	ColSituacaoDeRua  = "pessoaemsituacaoderua"

	ColDataMes     = "data_mes"
	ColEgressoBool = "Egresso_bool"
	ColCapitalBool = "capital_bool"
)

// Placeholders used when a grouping key is null.
const (
	SemEstado    = "Sem estado"
	SemMunicipio = "Sem município"
	NaoInformado = "Não informado"
)

// Record is one cumprimento de cartório. Empty strings stand for null cells.
type Record struct {
	NumeroProcesso  string
	Numero          string
	CodParte        string
	Estado          string
	VaraCidade      string
	TipoDocumento   string
	DataRecebimento *time.Time
	DataMes         Month
	Egresso         bool
	Capital         bool
	SituacaoDeRua   bool
}

var truthyValues = map[string]struct{}{
	"true": {},
	"t":    {},
	"1":    {},
	"sim":  {},
	"s":    {},
}

// Truthy reports whether a loosely formatted flag cell means true.
// Matching is case-insensitive and ignores surrounding whitespace.
func Truthy(s string) bool {
	_, ok := truthyValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// OrDefault returns v, or def when v is null.
func OrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Field returns the string value of a source column for r.
// Unknown columns yield "".
func (r Record) Field(column string) string {
	switch column {
	case ColNumeroProcesso:
		return r.NumeroProcesso
	case ColNumero:
		return r.Numero
	case ColCodParte:
		return r.CodParte
	case ColEstado:
		return r.Estado
	case ColVaraCidade:
		return r.VaraCidade
	case ColTipoDocumento:
		return r.TipoDocumento
	case ColDataMes:
		return r.DataMes.String()
	}
	return ""
}
