package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/seenimoa/finratios/pkg/models"
)

// JSONWriter writes newline-delimited JSON, one object per record. An empty
// destination or "-" writes to stdout, where the mode is ignored.
type JSONWriter struct {
	path   string
	stdout io.Writer
}

// NewJSONWriter creates a JSON lines writer.
func NewJSONWriter(path string, stdout io.Writer) *JSONWriter {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &JSONWriter{path: path, stdout: stdout}
}

func (w *JSONWriter) Write(_ context.Context, records []models.RatioRecord, mode Mode) error {
	if w.path == "" || w.path == "-" {
		if err := encodeJSONLines(w.stdout, records); err != nil {
			return &WriteError{Sink: KindJSON, Err: err}
		}
		return nil
	}

	f, err := openForMode(w.path, mode)
	if err != nil {
		return &WriteError{Sink: KindJSON, Destination: w.path, Err: err}
	}
	if err := encodeJSONLines(f, records); err != nil {
		f.Close()
		return &WriteError{Sink: KindJSON, Destination: w.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Sink: KindJSON, Destination: w.path, Err: err}
	}
	return nil
}

func encodeJSONLines(out io.Writer, records []models.RatioRecord) error {
	enc := json.NewEncoder(out)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// openForMode opens path for appending or truncating.
func openForMode(path string, mode Mode) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == ModeOverwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	return os.OpenFile(path, flags, 0644)
}
