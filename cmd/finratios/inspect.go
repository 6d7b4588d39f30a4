package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finratios/internal/ratio"
	"github.com/seenimoa/finratios/internal/source"
	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// --- Clean Command ---

var cleanCmd = &cobra.Command{
	Use:   "clean [statement_type] [id]",
	Short: "Clean one statement and print its long form",
	Long: `Reads a single statement, drops junk rows, normalizes metric names and
period headers, and prints one record per (metric, year). With --year the
statement is filtered to that year; --pivot also reshapes it to one row per
year with prefixed metric columns.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := models.ParseStatementType(args[0])
		if err != nil {
			return err
		}
		year, _ := cmd.Flags().GetInt("year")
		pivot, _ := cmd.Flags().GetBool("pivot")
		asJSON, _ := cmd.Flags().GetBool("json")

		reader := source.New(cfg.Source)
		defer reader.Close()

		raw, err := reader.Read(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		records, stats, err := statement.Clean(t, raw)
		if err != nil {
			return err
		}
		if year != 0 {
			records = statement.FilterYear(records, year)
		}
		cliLog := component("cli")
		cliLog.Debug().
			Str("statement", string(t)).
			Int("rows_in", stats.RowsIn).
			Int("junk_rows", stats.JunkRowsDropped).
			Int("null_values", stats.NullValues).
			Strs("skipped_columns", stats.SkippedColumns).
			Msg("statement cleaned")

		out := cmd.OutOrStdout()
		if !pivot {
			if asJSON {
				return writeJSON(out, records)
			}
			return printLongForm(out, records)
		}

		pt, err := statement.Pivot(records, t.Prefix())
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, pt)
		}
		return printPivot(out, pt)
	},
}

func init() {
	cleanCmd.Flags().Int("year", 0, "keep only this fiscal year")
	cleanCmd.Flags().Bool("pivot", false, "print the pivoted (one row per year) table")
	cleanCmd.Flags().Bool("json", false, "print as JSON")
}

// --- Normalize Command ---

var normalizeCmd = &cobra.Command{
	Use:   "normalize [statement_type] [text]",
	Short: "Print the canonical token for a metric label or period header",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := models.ParseStatementType(args[0])
		if err != nil {
			return err
		}
		header, _ := cmd.Flags().GetBool("header")
		fmt.Fprintln(cmd.OutOrStdout(), statement.NewNormalizer(t).Normalize(args[1], header))
		return nil
	},
}

func init() {
	normalizeCmd.Flags().Bool("header", false, "treat text as a period column header")
}

// --- Schema Command ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the ratio output columns and the statement columns they need",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSchema(cmd.OutOrStdout())
	},
}

func printSchema(out io.Writer) error {
	fmt.Fprintln(out, "Output columns:")
	for i, col := range models.RatioColumns() {
		fmt.Fprintf(out, "  %2d  %s\n", i+1, col)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Required statement columns:")
	required := ratio.RequiredColumns()
	for _, t := range models.StatementTypes {
		fmt.Fprintf(out, "  %s:\n", t.Label())
		for _, col := range required[t] {
			fmt.Fprintf(out, "    %s\n", col)
		}
	}
	return nil
}

// printLongForm prints cleaned records as an aligned table.
func printLongForm(out io.Writer, records []models.LongRecord) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "seq\tmetric\tyear\tvalue")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.Seq, r.Metric, r.Year, utils.FormatRaw(r.Value))
	}
	return tw.Flush()
}

// printPivot prints a pivot table with one row per year.
func printPivot(out io.Writer, pt *statement.PivotTable) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append([]string{statement.YearColumn}, pt.Columns...), "\t"))
	for _, row := range pt.Rows {
		cells := []string{strconv.Itoa(row.Year)}
		for _, col := range pt.Columns {
			cells = append(cells, utils.FormatRaw(row.Values[col]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
