package statement

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/finratios/pkg/models"
)

// MetricColumn is the key the first statement column is renamed to.
const MetricColumn = "metric"

// Junk rows exported by spreadsheet tools alongside the statement data.
const (
	junkMarker      = "Data Model"
	dateStampMarker = "01-31"
)

// Stats summarizes one Clean call.
type Stats struct {
	RowsIn          int      `json:"rows_in"`
	JunkRowsDropped int      `json:"junk_rows_dropped"`
	DateRowsDropped int      `json:"date_rows_dropped"`
	PeriodColumns   int      `json:"period_columns"`
	SkippedColumns  []string `json:"skipped_columns,omitempty"` // headers that are not a year
	RecordsOut      int      `json:"records_out"`
	NullValues      int      `json:"null_values"`
}

// Cleaner converts one raw wide statement into long-form records.
type Cleaner struct {
	statementType models.StatementType
	normalizer    Normalizer

	long  []models.LongRecord
	stats Stats
	done  bool
}

// NewCleaner creates a cleaner for the given statement type.
func NewCleaner(t models.StatementType) *Cleaner {
	return &Cleaner{statementType: t, normalizer: NewNormalizer(t)}
}

// StatementType returns the statement type the cleaner was built for.
func (c *Cleaner) StatementType() models.StatementType { return c.statementType }

// Clean normalizes raw and reshapes it to long form. raw is not modified.
// On error the cleaner keeps no partial output.
func (c *Cleaner) Clean(raw *models.RawStatement) error {
	c.long, c.stats, c.done = nil, Stats{}, false

	if !c.statementType.Valid() {
		return cleanError(c.statementType, "unknown statement type")
	}
	if raw == nil || len(raw.Columns) == 0 {
		return cleanError(c.statementType, "table has no columns")
	}
	if len(raw.Columns) == 1 {
		return cleanError(c.statementType, "table has no period columns")
	}

	stats := Stats{RowsIn: len(raw.Rows)}

	type period struct {
		index int
		year  int
	}
	var periods []period
	for i, h := range raw.Columns[1:] {
		header := c.normalizer.NormalizeHeader(h)
		year, ok := parseYear(header)
		if !ok {
			stats.SkippedColumns = append(stats.SkippedColumns, h)
			continue
		}
		periods = append(periods, period{index: i + 1, year: year})
	}
	stats.PeriodColumns = len(periods)
	if len(periods) == 0 {
		return cleanError(c.statementType, "no year columns in header %q", raw.Columns[1:])
	}

	var long []models.LongRecord
	seq := 0
	for _, row := range raw.Rows {
		label := ""
		if len(row) > 0 {
			label = strings.TrimSpace(row[0])
		}
		if strings.EqualFold(label, junkMarker) {
			stats.JunkRowsDropped++
			continue
		}
		if strings.Contains(label, dateStampMarker) {
			stats.DateRowsDropped++
			continue
		}

		metric := c.normalizer.NormalizeMetric(label)
		for _, p := range periods {
			cell := ""
			if p.index < len(row) {
				cell = row[p.index]
			}
			value := parseValue(cell)
			if value == nil {
				stats.NullValues++
			}
			long = append(long, models.LongRecord{
				Seq:           seq,
				Metric:        metric,
				Year:          p.year,
				Value:         value,
				StatementType: c.statementType,
			})
			seq++
		}
	}
	stats.RecordsOut = len(long)

	c.long, c.stats, c.done = long, stats, true
	return nil
}

// LongForm returns the cleaned records in ingestion order.
func (c *Cleaner) LongForm() ([]models.LongRecord, error) {
	if !c.done {
		return nil, ErrNotCleaned
	}
	return c.long, nil
}

// Stats returns counters from the last successful Clean.
func (c *Cleaner) Stats() Stats { return c.stats }

// Clean is a convenience wrapper around NewCleaner + Clean + LongForm.
func Clean(t models.StatementType, raw *models.RawStatement) ([]models.LongRecord, Stats, error) {
	c := NewCleaner(t)
	if err := c.Clean(raw); err != nil {
		return nil, Stats{}, err
	}
	long, err := c.LongForm()
	return long, c.Stats(), err
}

// FilterYear returns the records for year, preserving input order.
func FilterYear(records []models.LongRecord, year int) []models.LongRecord {
	var out []models.LongRecord
	for _, r := range records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// Years returns the distinct years present in records, ascending.
func Years(records []models.LongRecord) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}

// parseYear accepts a 4-digit year.
func parseYear(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 {
		return 0, false
	}
	return y, true
}

// parseValue parses a numeric cell; blank, non-numeric, NaN and infinite
// cells become nil.
func parseValue(cell string) *float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
