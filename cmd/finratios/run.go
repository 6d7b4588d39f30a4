package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finratios/api"
	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/pipeline"
	"github.com/seenimoa/finratios/internal/sink"
	"github.com/seenimoa/finratios/internal/source"
	"github.com/seenimoa/finratios/pkg/models"
)

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute ratios for a company and year and write them to the sink",
	Long: `Reads the profit & loss, balance sheet and cash flow statements, cleans and
pivots them for the requested year, derives the ratio record and writes it to
the configured sink. Statement identifiers may be local paths (csv, xlsx,
html), http(s) URLs or gs://bucket/object paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		job, err := pipeline.JobFromConfig(cfg)
		if err != nil {
			return err
		}
		job.DryRun, _ = cmd.Flags().GetBool("dry-run")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reader := source.New(cfg.Source)
		defer reader.Close()

		var writer sink.Writer
		if !job.DryRun {
			writer, err = sink.New(ctx, cfg.Sink, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				if err := sink.Close(writer); err != nil {
					sinkLog := component("sink")
					sinkLog.Warn().Err(err).Msg("close sink")
				}
			}()
		}

		res, err := pipeline.New(reader, writer, pipeline.Options{
			LenientSchema: !cfg.Ratio.StrictSchema,
		}).Run(ctx, job)
		if err != nil {
			return err
		}

		if res.Empty() {
			cliLog := component("cli")
			cliLog.Warn().Str("company", res.Company).Int("year", res.Year).Msg("no output")
			fmt.Fprintln(cmd.ErrOrStderr(), "no output")
			return nil
		}
		if job.DryRun {
			return sink.NewTableWriter(cmd.OutOrStdout()).Write(ctx, res.Records, job.Mode)
		}
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.String("company", "", "company name (default from config)")
	f.Int("year", 0, "fiscal year (default from config)")
	f.String("pl", "", "profit & loss statement identifier")
	f.String("bs", "", "balance sheet identifier")
	f.String("cf", "", "cash flow statement identifier")
	f.String("sink", "", "sink kind: console, json, csv, report, sqlite, postgres, bigquery")
	f.String("dest", "", "sink destination (file, db#table, schema.table or project.dataset.table)")
	f.String("mode", "", "write mode: append or overwrite")
	f.Bool("lenient", false, "treat missing ratio input columns as null instead of failing")
	f.Bool("dry-run", false, "compute and print ratios without writing to the sink")
}

// applyRunFlags copies the flags the user set onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("company") {
		cfg.Pipeline.Company, _ = f.GetString("company")
	}
	if f.Changed("year") {
		cfg.Pipeline.Year, _ = f.GetInt("year")
	}
	statements := make(map[string]string, len(cfg.Pipeline.Statements)+len(models.StatementTypes))
	for k, v := range cfg.Pipeline.Statements {
		statements[k] = v
	}
	for _, t := range models.StatementTypes {
		if f.Changed(t.Prefix()) {
			statements[t.Prefix()], _ = f.GetString(t.Prefix())
		}
	}
	cfg.Pipeline.Statements = statements

	if f.Changed("sink") {
		cfg.Sink.Kind, _ = f.GetString("sink")
	}
	if f.Changed("dest") {
		cfg.Sink.Destination, _ = f.GetString("dest")
	}
	if f.Changed("mode") {
		cfg.Sink.Mode, _ = f.GetString("mode")
	}
	if lenient, _ := f.GetBool("lenient"); lenient {
		cfg.Ratio.StrictSchema = false
	}
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if f := cmd.Flags(); f.Changed("port") {
			cfg.API.Port, _ = f.GetInt("port")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		reader := source.New(cfg.Source)
		defer reader.Close()

		srv := api.NewServer(cfg, reader,
			api.WithVersion(version),
			api.WithConfigPersistence(true),
		)
		return srv.ListenAndServe(fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}
