package sink

import (
	"context"
	"io"
	"os"

	"github.com/seenimoa/finratios/internal/report"
	"github.com/seenimoa/finratios/pkg/models"
)

// ReportWriter renders records as a report file: HTML when the destination
// ends in .html or .htm, plain text otherwise. An HTML report is always
// rewritten; a text report honours the mode. "-" writes text to stdout.
type ReportWriter struct {
	path   string
	stdout io.Writer
	cfg    report.Config
}

// NewReportWriter creates a report writer; an empty path means DefaultReportPath.
func NewReportWriter(path string, stdout io.Writer) *ReportWriter {
	if path == "" {
		path = DefaultReportPath
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	cfg := report.DefaultConfig()
	cfg.Format = report.FormatForPath(path)
	return &ReportWriter{path: path, stdout: stdout, cfg: cfg}
}

func (w *ReportWriter) Write(_ context.Context, records []models.RatioRecord, mode Mode) error {
	if w.path == "-" {
		if _, err := io.WriteString(w.stdout, report.GenerateText(records, w.cfg)); err != nil {
			return &WriteError{Sink: KindReport, Err: err}
		}
		return nil
	}

	out, err := report.Generate(records, w.cfg)
	if err != nil {
		return &WriteError{Sink: KindReport, Destination: w.path, Err: err}
	}
	if w.cfg.Format == report.FormatHTML {
		mode = ModeOverwrite
	}
	f, err := openForMode(w.path, mode)
	if err != nil {
		return &WriteError{Sink: KindReport, Destination: w.path, Err: err}
	}
	if _, err := io.WriteString(f, out); err != nil {
		f.Close()
		return &WriteError{Sink: KindReport, Destination: w.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Sink: KindReport, Destination: w.path, Err: err}
	}
	return nil
}
