// Package sink writes ratio records to the console, files, reports, SQLite,
// Postgres or BigQuery. Every writer takes the same records and an append/overwrite
// mode; writers that cannot honour a mode document what they do instead.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/pkg/models"
)

// Mode selects how a writer treats existing data at the destination.
type Mode string

const (
	ModeAppend    Mode = "append"
	ModeOverwrite Mode = "overwrite"
)

// ParseMode parses "append" or "overwrite"; empty means append.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAppend:
		return ModeAppend, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("unknown write mode %q (want append or overwrite)", s)
}

// Writer persists ratio records.
type Writer interface {
	Write(ctx context.Context, records []models.RatioRecord, mode Mode) error
}

// Sink kinds accepted by New.
const (
	KindConsole  = "console"
	KindJSON     = "json"
	KindCSV      = "csv"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindBigQuery = "bigquery"
	KindReport   = "report"
)

// Default destinations per kind.
const (
	DefaultCSVPath       = "ratios.csv"
	DefaultSQLitePath    = "finratios.db"
	DefaultTable         = "financial_ratios"
	DefaultPostgresTable = "public." + DefaultTable
	DefaultBigQueryTable = "financial_ratios.ratios"
	DefaultReportPath    = "ratios_report.html"
)

// ErrDestination is wrapped when a destination string cannot be used.
var ErrDestination = errors.New("invalid sink destination")

// WriteError wraps a failure to persist records.
type WriteError struct {
	Sink        string
	Destination string
	Err         error
}

func (e *WriteError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
	}
	return fmt.Sprintf("%s sink %s: %v", e.Sink, e.Destination, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// New builds the writer described by cfg. Console output goes to stdout.
// When cfg.AlsoPrint is set and the kind is not console, records are
// printed to stdout before being persisted.
func New(ctx context.Context, cfg config.SinkConfig, stdout io.Writer) (Writer, error) {
	primary, err := newKind(ctx, cfg, stdout)
	if err != nil {
		return nil, err
	}
	if cfg.Kind != KindConsole && cfg.Kind != "" && cfg.AlsoPrint {
		return Multi(NewTableWriter(stdout), primary), nil
	}
	return primary, nil
}

func newKind(ctx context.Context, cfg config.SinkConfig, stdout io.Writer) (Writer, error) {
	switch cfg.Kind {
	case "", KindConsole:
		return NewTableWriter(stdout), nil
	case KindJSON:
		return NewJSONWriter(cfg.Destination, stdout), nil
	case KindCSV:
		return NewCSVWriter(cfg.Destination), nil
	case KindSQLite:
		return NewSQLiteWriter(cfg.Destination)
	case KindPostgres:
		return NewPostgresWriter(ctx, cfg.PostgresDSN, cfg.Destination)
	case KindBigQuery:
		return NewBigQueryWriter(ctx, cfg.BigQuery.Project, cfg.Destination, cfg.BigQuery.CredentialsFile)
	case KindReport:
		return NewReportWriter(cfg.Destination, stdout), nil
	}
	return nil, fmt.Errorf("unknown sink kind %q", cfg.Kind)
}

// multi fans records out to several writers in order.
type multi []Writer

// Multi returns a writer that writes to every w in order. All writers are
// attempted; their errors are joined.
func Multi(writers ...Writer) Writer {
	return multi(writers)
}

func (m multi) Write(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(ctx, records, mode); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, w := range m {
		errs = append(errs, Close(w))
	}
	return errors.Join(errs...)
}

// Close closes w if it holds resources.
func Close(w Writer) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
