// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of the dashboard filters from query strings
// and the canonical encoding used for links and render cache keys.

package http

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"painel/internal/core"
	"painel/internal/filter"
)

// Query parameter names of the dashboard filters.
const (
	ParamEgresso   = "egresso"
	ParamCapital   = "capital"
	ParamMunSet    = "mun_set"
	ParamMunicipio = "municipio"
	ParamTipoSet   = "tipo_set"
	ParamTipo      = "tipo"
	ParamInicio    = "inicio"
	ParamFim       = "fim"
	ParamDe        = "de"
	ParamAte       = "ate"

	egressoSomente = "somente"
)

// DashboardParams holds the filters and overview period of one request.
type DashboardParams struct {
	Filters filter.Options
	Period  filter.MonthRange
}

// ParseDashboardParams reads filter options from query values. Absent
// selections mean every value; unparseable months are ignored.
func ParseDashboardParams(query url.Values) DashboardParams {
	var p DashboardParams

	p.Filters.EgressoOnly = strings.EqualFold(strings.TrimSpace(query.Get(ParamEgresso)), egressoSomente)
	p.Filters.CapitalOnly = flagSet(query.Get(ParamCapital))

	if flagSet(query.Get(ParamMunSet)) {
		p.Filters.Municipios = filter.Only(cleanValues(query[ParamMunicipio])...)
	}
	if flagSet(query.Get(ParamTipoSet)) {
		p.Filters.TiposDocumento = filter.Only(cleanValues(query[ParamTipo])...)
	}

	p.Filters.DateRange = parseRange(query.Get(ParamInicio), query.Get(ParamFim))
	p.Period = parseRange(query.Get(ParamDe), query.Get(ParamAte))
	return p
}

// Encode returns the canonical query string for p. Equal params encode
// equally regardless of parameter order.
func (p DashboardParams) Encode() string {
	v := url.Values{}
	if p.Filters.EgressoOnly {
		v.Set(ParamEgresso, egressoSomente)
	}
	if p.Filters.CapitalOnly {
		v.Set(ParamCapital, "1")
	}
	if !p.Filters.Municipios.IsAll() {
		v.Set(ParamMunSet, "1")
		v[ParamMunicipio] = p.Filters.Municipios.Values()
	}
	if !p.Filters.TiposDocumento.IsAll() {
		v.Set(ParamTipoSet, "1")
		v[ParamTipo] = p.Filters.TiposDocumento.Values()
	}
	encodeRange(v, ParamInicio, ParamFim, p.Filters.DateRange)
	encodeRange(v, ParamDe, ParamAte, p.Period)
	return v.Encode()
}

func flagSet(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "sim":
		return true
	}
	return false
}

func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = stripControl(v); v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func parseMonthParam(s string) core.Month {
	if strings.TrimSpace(s) == "" {
		return core.Month{}
	}
	m, err := core.ParseMonth(s)
	if err != nil {
		return core.Month{}
	}
	return m
}

func parseRange(from, to string) filter.MonthRange {
	f, t := parseMonthParam(from), parseMonthParam(to)
	if f.IsZero() && t.IsZero() {
		return filter.AllMonths()
	}
	return filter.Between(f, t)
}

func encodeRange(v url.Values, fromKey, toKey string, r filter.MonthRange) {
	if r.IsAll() {
		return
	}
	if !r.From.IsZero() {
		v.Set(fromKey, r.From.String())
	}
	if !r.To.IsZero() {
		v.Set(toKey, r.To.String())
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return stripControl(strings.TrimSpace(s))
}

// stripControl removes control characters but keeps surrounding spaces, so
// selected values still equal the dataset values they were offered from.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de requisição inválido")
	}
	return nil
}
