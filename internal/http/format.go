package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"painel/internal/core"
	"painel/internal/filter"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// formatCount formats n with pt-BR digit grouping, e.g. 12.345.
func formatCount(n int) string {
	return ptBR.Sprintf("%d", n)
}

// chartJSON encodes chart rows for a data attribute.
func chartJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func noticeClass(level core.NoticeLevel) string {
	switch level {
	case core.NoticeError:
		return "notice--error"
	case core.NoticeWarning:
		return "notice--warning"
	}
	return "notice--info"
}

// dict builds a map from alternating keys and values for sub-templates.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"count":       formatCount,
		"chartJSON":   chartJSON,
		"dict":        dict,
		"noticeClass": noticeClass,
		"monthLabel":  func(m core.Month) string { return m.Label() },
		"selected": func(s filter.Selection, v string) bool {
			return s.Contains(v)
		},
	}
}
