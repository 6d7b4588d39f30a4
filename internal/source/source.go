// Package source reads raw wide statement tables from local files, Google
// Cloud Storage objects and HTTP endpoints. A statement identifier is a path
// or URL; its extension picks the decoder (csv, xlsx, html) and an optional
// "#fragment" names an xlsx sheet or an HTML table selector.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/seenimoa/finratios/pkg/models"
)

// Reader loads one raw statement by identifier.
type Reader interface {
	Read(ctx context.Context, id string) (*models.RawStatement, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context, id string) (*models.RawStatement, error)

// Read calls f(ctx, id).
func (f ReaderFunc) Read(ctx context.Context, id string) (*models.RawStatement, error) {
	return f(ctx, id)
}

// --- Sentinel errors ---

// ErrNotFound is returned when the identifier does not resolve to a table.
var ErrNotFound = errors.New("statement not found")

// ErrUnsupported is returned for identifiers with an unknown scheme or extension.
var ErrUnsupported = errors.New("unsupported statement format")

// ReadError wraps any failure to load an identifier.
type ReadError struct {
	ID  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read statement %s: %v", e.ID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// HTTPError carries a non-success HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

func readError(id string, err error) error {
	var re *ReadError
	if errors.As(err, &re) {
		return err
	}
	return &ReadError{ID: id, Err: err}
}

// Supported file extensions.
const (
	ExtCSV  = "csv"
	ExtXLSX = "xlsx"
	ExtHTML = "html"
	ExtHTM  = "htm"
)

// splitFragment splits "path#frag" into its parts.
func splitFragment(id string) (string, string) {
	if i := strings.LastIndexByte(id, '#'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return id, ""
}

// extension returns the lowercase extension of p without the dot.
func extension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// decode parses r according to ext. fragment selects a sheet or table.
func decode(id, ext, fragment string, r io.Reader) (*models.RawStatement, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch ext {
	case ExtCSV:
		header, rows, err = decodeCSV(r)
	case ExtXLSX:
		header, rows, err = decodeXLSX(r, fragment)
	case ExtHTML, ExtHTM:
		header, rows, err = decodeHTML(r, fragment)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	return &models.RawStatement{ID: id, Columns: header, Rows: rows}, nil
}

// splitHeader separates the first non-empty row as the header.
func splitHeader(records [][]string) ([]string, [][]string) {
	for i, rec := range records {
		if !blankRow(rec) {
			return rec, records[i+1:]
		}
	}
	return nil, nil
}

func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
