// Package pipeline runs a ratio job end to end: read and clean the three
// statements concurrently, pivot them for the target year, compute ratios
// and hand the records to a sink.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finratios/internal/ratio"
	"github.com/seenimoa/finratios/internal/sink"
	"github.com/seenimoa/finratios/internal/source"
	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
)

// Options tunes a Pipeline.
type Options struct {
	LenientSchema bool            // absent ratio inputs read as nil
	Logger        *zerolog.Logger // defaults to the global logger
}

// Pipeline wires a statement reader to a sink.
type Pipeline struct {
	reader source.Reader
	writer sink.Writer
	opts   Options
	log    zerolog.Logger
}

// New creates a pipeline. writer may be nil when every job is a dry run.
func New(reader source.Reader, writer sink.Writer, opts Options) *Pipeline {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Pipeline{
		reader: reader,
		writer: writer,
		opts:   opts,
		log:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Result describes a finished run.
type Result struct {
	RunID    string                                   `json:"run_id"`
	Company  string                                   `json:"company"`
	Year     int                                      `json:"year"`
	Records  []models.RatioRecord                     `json:"records"`
	Stats    map[models.StatementType]statement.Stats `json:"stats"`
	Written  bool                                     `json:"written"`
	Duration time.Duration                            `json:"duration"`
}

// Empty reports that the year was missing from at least one statement, so
// no records were produced.
func (r *Result) Empty() bool { return len(r.Records) == 0 }

// Run executes job. An empty join is not an error: the result is Empty and
// the sink is not called. Any error aborts the run before the sink.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:   uuid.NewString(),
		Company: job.Company,
		Year:    job.Year,
		Stats:   make(map[models.StatementType]statement.Stats, len(models.StatementTypes)),
	}
	logger := p.log.With().Str("run_id", res.RunID).Str("company", job.Company).Int("year", job.Year).Logger()

	if err := job.Validate(); err != nil {
		return nil, &StageError{Stage: StageValidate, Company: job.Company, Err: err}
	}
	if !job.DryRun && p.writer == nil {
		return nil, &StageError{Stage: StageValidate, Company: job.Company, Err: errors.New("no sink configured")}
	}

	long, err := p.readAndClean(ctx, job, res)
	if err != nil {
		return nil, err
	}

	pl, bs, cf, err := pivotYear(job, long)
	if err != nil {
		return nil, err
	}

	var opts []ratio.Option
	if p.opts.LenientSchema {
		opts = append(opts, ratio.WithLenientSchema())
	}
	records, err := ratio.NewEngine(job.Company, opts...).Calculate(pl, bs, cf)
	if err != nil {
		return nil, &StageError{Stage: StageRatio, Company: job.Company, Err: err}
	}
	res.Records = records

	if res.Empty() {
		res.Duration = time.Since(start)
		logger.Warn().Msg("year missing from at least one statement; no output")
		return res, nil
	}

	if !job.DryRun {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: StageWrite, Company: job.Company, Err: err}
		}
		if err := p.writer.Write(ctx, records, job.Mode); err != nil {
			return nil, &StageError{Stage: StageWrite, Company: job.Company, Err: err}
		}
		res.Written = true
	}

	res.Duration = time.Since(start)
	logger.Info().
		Int("records", len(records)).
		Bool("written", res.Written).
		Dur("took", res.Duration).
		Msg("ratio run complete")
	return res, nil
}

// readAndClean loads and cleans the three statements in parallel. The first
// failure cancels the others.
func (p *Pipeline) readAndClean(ctx context.Context, job Job, res *Result) (map[models.StatementType][]models.LongRecord, error) {
	var mu sync.Mutex
	long := make(map[models.StatementType][]models.LongRecord, len(models.StatementTypes))

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range models.StatementTypes {
		id := job.Statements[t]
		g.Go(func() error {
			raw, err := p.reader.Read(gctx, id)
			if err != nil {
				return &StageError{Stage: StageRead, StatementType: t, Company: job.Company, Err: err}
			}

			cleaner := statement.NewCleaner(t)
			if err := cleaner.Clean(raw); err != nil {
				return &StageError{Stage: StageClean, StatementType: t, Company: job.Company, Err: err}
			}
			records, err := cleaner.LongForm()
			if err != nil {
				return &StageError{Stage: StageClean, StatementType: t, Company: job.Company, Err: err}
			}

			mu.Lock()
			long[t] = records
			res.Stats[t] = cleaner.Stats()
			mu.Unlock()

			p.log.Debug().
				Str("statement", string(t)).
				Str("id", id).
				Int("records", len(records)).
				Int("null_values", cleaner.Stats().NullValues).
				Msg("statement cleaned")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return long, nil
}

// pivotYear filters every statement to the job year and pivots it.
func pivotYear(job Job, long map[models.StatementType][]models.LongRecord) (pl, bs, cf *statement.PivotTable, err error) {
	tables := make(map[models.StatementType]*statement.PivotTable, len(models.StatementTypes))
	for _, t := range models.StatementTypes {
		pt, err := statement.Pivot(statement.FilterYear(long[t], job.Year), t.Prefix())
		if err != nil {
			return nil, nil, nil, &StageError{Stage: StagePivot, StatementType: t, Company: job.Company, Err: err}
		}
		tables[t] = pt
	}
	return tables[models.ProfitLoss], tables[models.BalanceSheet], tables[models.CashFlow], nil
}
