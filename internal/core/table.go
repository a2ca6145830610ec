package core

import "sort"

// Table is an immutable set of records together with the columns that were
// present in the source header. Transformations return new tables.
type Table struct {
	columns map[string]struct{}
	records []Record
}

// NewTable builds a table from records and the column names available for them.
// Derived columns are always present.
func NewTable(columns []string, records []Record) *Table {
	cols := make(map[string]struct{}, len(columns)+3)
	for _, c := range columns {
		cols[c] = struct{}{}
	}
	cols[ColEgressoBool] = struct{}{}
	cols[ColCapitalBool] = struct{}{}
	if _, ok := cols[ColDataReceb]; ok {
		cols[ColDataMes] = struct{}{}
	}
	recs := make([]Record, len(records))
	copy(recs, records)
	return &Table{columns: cols, records: recs}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Has reports whether column is available.
func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[column]
	return ok
}

// Columns returns the available column names in ascending order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.columns))
	for c := range t.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Records returns a copy of the rows.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every row in order without copying.
func (t *Table) Each(fn func(Record)) {
	if t == nil {
		return
	}
	for _, r := range t.records {
		fn(r)
	}
}

// Where returns a new table holding the rows that satisfy keep.
func (t *Table) Where(keep func(Record) bool) *Table {
	if t == nil {
		return nil
	}
	out := &Table{columns: t.columns}
	for _, r := range t.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Truncate returns a new table with the column set of t and no rows.
func (t *Table) Truncate() *Table {
	if t == nil {
		return nil
	}
	return &Table{columns: t.columns}
}

// MonthBounds returns the earliest and latest non-null data_mes.
// ok is false when the column is absent or every month is null.
func (t *Table) MonthBounds() (min, max Month, ok bool) {
	if !t.Has(ColDataMes) {
		return Month{}, Month{}, false
	}
	for _, r := range t.records {
		if r.DataMes.IsZero() {
			continue
		}
		if !ok {
			min, max, ok = r.DataMes, r.DataMes, true
			continue
		}
		if r.DataMes.Before(min) {
			min = r.DataMes
		}
		if r.DataMes.After(max) {
			max = r.DataMes
		}
	}
	return min, max, ok
}

// DistinctCount counts distinct non-null values of column over the rows.
// An absent column counts as zero.
func (t *Table) DistinctCount(column string) int {
	if !t.Has(column) {
		return 0
	}
	seen := make(map[string]struct{})
	for _, r := range t.records {
		if v := r.Field(column); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
