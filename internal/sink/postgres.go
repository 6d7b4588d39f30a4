package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seenimoa/finratios/pkg/models"
)

// PostgresWriter bulk loads records with COPY. Overwrite truncates the
// table in the same transaction.
type PostgresWriter struct {
	pool   *pgxpool.Pool
	schema string
	table  string
}

// NewPostgresWriter connects to dsn. dest is "table" or "schema.table".
func NewPostgresWriter(ctx context.Context, dsn, dest string) (*PostgresWriter, error) {
	schema, table, err := parsePostgresTable(dest)
	if err != nil {
		return nil, &WriteError{Sink: KindPostgres, Destination: dest, Err: err}
	}
	if dsn == "" {
		return nil, &WriteError{Sink: KindPostgres, Destination: dest, Err: fmt.Errorf("%w: empty DSN", ErrDestination)}
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &WriteError{Sink: KindPostgres, Destination: dest, Err: fmt.Errorf("parse database config: %w", err)}
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &WriteError{Sink: KindPostgres, Destination: dest, Err: fmt.Errorf("connect: %w", err)}
	}
	return &PostgresWriter{pool: pool, schema: schema, table: table}, nil
}

// parsePostgresTable splits dest into schema and table, defaulting to
// DefaultPostgresTable.
func parsePostgresTable(dest string) (string, string, error) {
	if dest == "" {
		dest = DefaultPostgresTable
	}
	schema, table, ok := strings.Cut(dest, ".")
	if !ok {
		schema, table = "public", dest
	}
	if !validIdent(schema) || !validIdent(table) {
		return "", "", fmt.Errorf("%w: %q", ErrDestination, dest)
	}
	return schema, table, nil
}

func (w *PostgresWriter) qualified() string {
	return pgx.Identifier{w.schema, w.table}.Sanitize()
}

func (w *PostgresWriter) Write(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	if err := w.write(ctx, records, mode); err != nil {
		return &WriteError{Sink: KindPostgres, Destination: w.schema + "." + w.table, Err: err}
	}
	return nil
}

func (w *PostgresWriter) write(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(w.qualified(), "DOUBLE PRECISION")); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if mode == ModeOverwrite {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+w.qualified()); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{w.schema, w.table}, models.RatioColumns(), pgx.CopyFromRows(copyRows(records)))
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy: wrote %d of %d rows", n, len(records))
	}
	return tx.Commit(ctx)
}

// copyRows converts records to COPY rows aligned with RatioColumns.
func copyRows(records []models.RatioRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

// Close closes the connection pool.
func (w *PostgresWriter) Close() error {
	w.pool.Close()
	return nil
}
