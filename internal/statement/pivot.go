package statement

import (
	"sort"

	"github.com/seenimoa/finratios/pkg/models"
)

// YearColumn is the join key of every pivoted table.
const YearColumn = "year"

// PivotTable is a long-form statement reshaped to one row per year, with one
// column per distinct metric named "<prefix>_<metric>".
type PivotTable struct {
	Prefix  string              `json:"prefix"`
	Columns []string            `json:"columns"` // sorted; excludes YearColumn
	Rows    []models.WideRecord `json:"rows"`

	byYear map[int]int
}

// Pivot groups records by year and spreads metrics into columns. When a
// metric repeats within a year the record with the lowest Seq wins (input
// order breaks ties), even if its value is nil. The column set is the union
// of metrics across all years; a metric absent from a year is nil there.
func Pivot(records []models.LongRecord, prefix string) (*PivotTable, error) {
	if prefix == "" {
		return nil, pivotError(prefix, "empty column prefix")
	}
	if t := models.StatementType(prefix); t.Valid() {
		for _, r := range records {
			if r.StatementType != "" && r.StatementType != t {
				return nil, pivotError(prefix, "record %d (%s) belongs to statement %q", r.Seq, r.Metric, r.StatementType)
			}
		}
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Seq < records[order[b]].Seq
	})

	// Schema first: union of metrics over the whole input.
	colSet := make(map[string]bool)
	var columns []string
	for _, r := range records {
		col := prefix + "_" + r.Metric
		if !colSet[col] {
			colSet[col] = true
			columns = append(columns, col)
		}
	}
	sort.Strings(columns)

	type cell struct {
		year int
		col  string
	}
	filled := make(map[cell]bool)

	t := &PivotTable{Prefix: prefix, Columns: columns, byYear: make(map[int]int)}
	for _, i := range order {
		r := records[i]
		idx, ok := t.byYear[r.Year]
		if !ok {
			values := make(map[string]*float64, len(columns))
			for _, c := range columns {
				values[c] = nil
			}
			t.Rows = append(t.Rows, models.WideRecord{Year: r.Year, Values: values})
			idx = len(t.Rows) - 1
			t.byYear[r.Year] = idx
		}
		k := cell{year: r.Year, col: prefix + "_" + r.Metric}
		if filled[k] {
			continue
		}
		filled[k] = true
		t.Rows[idx].Values[k.col] = r.Value
	}

	sort.Slice(t.Rows, func(a, b int) bool { return t.Rows[a].Year < t.Rows[b].Year })
	for i, row := range t.Rows {
		t.byYear[row.Year] = i
	}
	return t, nil
}

// Schema returns the table columns including the year key.
func (t *PivotTable) Schema() []string {
	return append([]string{YearColumn}, t.Columns...)
}

// Years returns the years present in the table, ascending.
func (t *PivotTable) Years() []int {
	years := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		years[i] = r.Year
	}
	return years
}

// Row returns the record for year.
func (t *PivotTable) Row(year int) (models.WideRecord, bool) {
	if t == nil {
		return models.WideRecord{}, false
	}
	i, ok := t.byYear[year]
	if !ok {
		return models.WideRecord{}, false
	}
	return t.Rows[i], true
}

// HasColumn reports whether col is part of the table schema.
func (t *PivotTable) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	i := sort.SearchStrings(t.Columns, col)
	return i < len(t.Columns) && t.Columns[i] == col
}

// Value returns the value of col in year; nil when absent.
func (t *PivotTable) Value(year int, col string) *float64 {
	row, ok := t.Row(year)
	if !ok {
		return nil
	}
	return row.Values[col]
}
