// finratios turns raw company financial statements into a table of ratios.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("finratios failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finratios",
	Short: "finratios: financial statements in, ratios out",
	Long: `finratios cleans profit & loss, balance sheet and cash flow statements,
pivots them to one row per fiscal year and derives profitability, liquidity,
leverage and return ratios. Results go to the console, files, SQLite,
Postgres or BigQuery.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logging.Setup(cfg.Logging, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("finratios %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"config":      config.Masked(cfg),
				"config_file": cfg.File(),
				"credentials": config.CheckCredentials(cfg),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  finratios: Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		file := cfg.File()
		if file == "" {
			file = "(defaults and environment)"
		}
		fmt.Fprintf(out, "  Config file:   %s\n", file)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Pipeline:")
		fmt.Fprintf(out, "    Company:       %s\n", cfg.Pipeline.Company)
		fmt.Fprintf(out, "    Year:          %d\n", cfg.Pipeline.Year)
		fmt.Fprintf(out, "    Base path:     %s (.%s)\n", cfg.Pipeline.BasePath, cfg.Pipeline.Extension)
		fmt.Fprintf(out, "    Strict schema: %t\n", cfg.Ratio.StrictSchema)
		fmt.Fprintf(out, "    Sink:          %s %s (%s)\n", cfg.Sink.Kind, cfg.Sink.Destination, cfg.Sink.Mode)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Credentials:")
		for _, k := range config.CheckCredentials(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-27s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		if err := cfg.Validate(); err != nil {
			log.Warn().Err(err).Msg("configuration is not valid")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("json", false, "print as JSON")
}

// component returns the global logger tagged with a component name.
func component(name string) zerolog.Logger {
	return logging.Component(name)
}
