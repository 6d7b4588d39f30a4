package sink

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// CSVWriter writes records to a CSV file with a header row. Appending to an
// existing non-empty file skips the header.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a CSV writer; an empty path uses DefaultCSVPath.
func NewCSVWriter(path string) *CSVWriter {
	if path == "" {
		path = DefaultCSVPath
	}
	return &CSVWriter{path: path}
}

// Path returns the output file.
func (w *CSVWriter) Path() string { return w.path }

func (w *CSVWriter) Write(_ context.Context, records []models.RatioRecord, mode Mode) error {
	writeHeader := true
	if mode != ModeOverwrite {
		if fi, err := os.Stat(w.path); err == nil && fi.Size() > 0 {
			writeHeader = false
		}
	}

	f, err := openForMode(w.path, mode)
	if err != nil {
		return &WriteError{Sink: KindCSV, Destination: w.path, Err: err}
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if writeHeader {
		if err := cw.Write(models.RatioColumns()); err != nil {
			return &WriteError{Sink: KindCSV, Destination: w.path, Err: err}
		}
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return &WriteError{Sink: KindCSV, Destination: w.path, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &WriteError{Sink: KindCSV, Destination: w.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Sink: KindCSV, Destination: w.path, Err: err}
	}
	return nil
}

// csvRow renders r with empty cells for missing ratios.
func csvRow(r models.RatioRecord) []string {
	row := []string{r.Company}
	for _, f := range r.Fields() {
		row = append(row, utils.FormatRaw(*f))
	}
	return row
}
