package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/seenimoa/finratios/pkg/models"
)

// BigQueryWriter loads records into a BigQuery table with a load job.
// Append uses WRITE_APPEND and overwrite WRITE_TRUNCATE; the table is
// created when missing.
type BigQueryWriter struct {
	client *bigquery.Client
	ref    TableRef
}

// TableRef names a BigQuery table.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

func (r TableRef) String() string {
	return r.Project + "." + r.Dataset + "." + r.Table
}

// ParseTableRef parses "dataset.table" or "project.dataset.table". An empty
// dest uses DefaultBigQueryTable.
func ParseTableRef(dest, defaultProject string) (TableRef, error) {
	if dest == "" {
		dest = DefaultBigQueryTable
	}
	parts := strings.Split(dest, ".")
	var ref TableRef
	switch len(parts) {
	case 2:
		ref = TableRef{Project: defaultProject, Dataset: parts[0], Table: parts[1]}
	case 3:
		ref = TableRef{Project: parts[0], Dataset: parts[1], Table: parts[2]}
	default:
		return TableRef{}, fmt.Errorf("%w: %q (want dataset.table or project.dataset.table)", ErrDestination, dest)
	}
	if ref.Project == "" || ref.Dataset == "" || ref.Table == "" {
		return TableRef{}, fmt.Errorf("%w: %q needs a project, dataset and table", ErrDestination, dest)
	}
	return ref, nil
}

// NewBigQueryWriter creates a client for the table's project.
func NewBigQueryWriter(ctx context.Context, project, dest, credentialsFile string) (*BigQueryWriter, error) {
	ref, err := ParseTableRef(dest, project)
	if err != nil {
		return nil, &WriteError{Sink: KindBigQuery, Destination: dest, Err: err}
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, ref.Project, opts...)
	if err != nil {
		return nil, &WriteError{Sink: KindBigQuery, Destination: ref.String(), Err: fmt.Errorf("client: %w", err)}
	}
	return &BigQueryWriter{client: client, ref: ref}, nil
}

// BigQuerySchema returns the table schema: a required company string and a
// nullable float per ratio.
func BigQuerySchema() bigquery.Schema {
	schema := bigquery.Schema{{
		Name:     models.CompanyColumn,
		Type:     bigquery.StringFieldType,
		Required: true,
	}}
	for _, col := range models.RatioFields() {
		schema = append(schema, &bigquery.FieldSchema{
			Name: col,
			Type: bigquery.FloatFieldType,
		})
	}
	return schema
}

func writeDisposition(mode Mode) bigquery.TableWriteDisposition {
	if mode == ModeOverwrite {
		return bigquery.WriteTruncate
	}
	return bigquery.WriteAppend
}

func (w *BigQueryWriter) Write(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	if err := w.load(ctx, records, mode); err != nil {
		return &WriteError{Sink: KindBigQuery, Destination: w.ref.String(), Err: err}
	}
	return nil
}

func (w *BigQueryWriter) load(ctx context.Context, records []models.RatioRecord, mode Mode) error {
	var buf bytes.Buffer
	if err := encodeJSONLines(&buf, records); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	src := bigquery.NewReaderSource(&buf)
	src.SourceFormat = bigquery.JSON
	src.Schema = BigQuerySchema()

	loader := w.client.Dataset(w.ref.Dataset).Table(w.ref.Table).LoaderFrom(src)
	loader.WriteDisposition = writeDisposition(mode)
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("start load job: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job %s: %w", job.ID(), err)
	}
	return nil
}

// Close closes the BigQuery client.
func (w *BigQueryWriter) Close() error {
	return w.client.Close()
}
