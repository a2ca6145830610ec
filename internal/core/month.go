package core

import (
	"fmt"
	"strings"
	"time"
)

// Month is the first day of a calendar month. The zero value is a null month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM" (also accepts a full "YYYY-MM-DD" date).
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	layout := "2006-01"
	if len(s) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// IsZero reports whether m is null.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Time returns the first instant of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// String formats the month as YYYY-MM; null months format as "".
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label formats the month as M/YYYY for display.
func (m Month) Label() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d", int(m.Month), m.Year)
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
