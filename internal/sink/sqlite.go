package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/seenimoa/finratios/pkg/models"
)

// SQLiteWriter stores records in a SQLite table. Overwrite deletes existing
// rows in the same transaction as the insert.
type SQLiteWriter struct {
	path  string
	table string
	db    *sql.DB
}

// NewSQLiteWriter opens the database named by dest, "path" or "path#table".
func NewSQLiteWriter(dest string) (*SQLiteWriter, error) {
	path, table := splitFragment(dest)
	if path == "" {
		path = DefaultSQLitePath
	}
	if table == "" {
		table = DefaultTable
	}
	if !validIdent(table) {
		return nil, &WriteError{Sink: KindSQLite, Destination: dest, Err: fmt.Errorf("%w: table %q", ErrDestination, table)}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, &WriteError{Sink: KindSQLite, Destination: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	return &SQLiteWriter{path: path, table: table, db: db}, nil
}

// Table returns the destination table name.
func (w *SQLiteWriter) Table() string { return w.table }

// DB exposes the underlying handle.
func (w *SQLiteWriter) DB() *sql.DB { return w.db }

func (w *SQLiteWriter) Write(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	if err := w.write(ctx, records, mode); err != nil {
		return &WriteError{Sink: KindSQLite, Destination: w.path + "#" + w.table, Err: err}
	}
	return nil
}

func (w *SQLiteWriter) write(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	if _, err := w.db.ExecContext(ctx, createTableSQL(w.table, "REAL")); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if mode == ModeOverwrite {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+w.table); err != nil {
			return fmt.Errorf("clear table: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(w.table, func(int) string { return "?" }))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Row()...); err != nil {
			return fmt.Errorf("insert %s: %w", r.Company, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
