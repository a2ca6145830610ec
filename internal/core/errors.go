package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData marks a selection that left no rows to aggregate.
var ErrNoData = errors.New("no data")

// IOError reports that the source extract could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read extract %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a structurally malformed extract.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse extract %s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse extract %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnError reports columns a view needs but the table lacks.
type MissingColumnError struct {
	View    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: column not found: %s", e.View, strings.Join(e.Columns, ", "))
}

// RequireColumns returns a *MissingColumnError naming every absent column, or nil.
func RequireColumns(t *Table, view string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingColumnError{View: view, Columns: missing}
}

// IsFatal reports whether err must halt rendering (unreadable or malformed source).
func IsFatal(err error) bool {
	var ioErr *IOError
	var parseErr *ParseError
	return errors.As(err, &ioErr) || errors.As(err, &parseErr)
}
