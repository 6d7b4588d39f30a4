package pipeline

import (
	"testing"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/sink"
	"github.com/seenimoa/finratios/pkg/models"
)

func TestStatementID(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		ext      string
		company  string
		typ      models.StatementType
		want     string
	}{
		{"local default", "./data/companies/{company}", "csv", "google", models.ProfitLoss, "data/companies/google/GOOGLE_PL.csv"},
		{"balance sheet", "data/{company}", "xlsx", "GOOGLE", models.BalanceSheet, "data/google/GOOGLE_BS.xlsx"},
		{"gcs bucket", "gs://fin-bucket/companies/{company}/", "csv", "googl", models.CashFlow, "gs://fin-bucket/companies/google/GOOGLE_CF.csv"},
		{"http base", "https://example.com/fin", ".html", "acme", models.ProfitLoss, "https://example.com/fin/ACME_PL.html"},
		{"no base", "", "csv", "acme", models.CashFlow, "ACME_CF.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatementID(tt.basePath, tt.ext, tt.company, tt.typ); got != tt.want {
				t.Errorf("StatementID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveStatementsPrecedence(t *testing.T) {
	cfg := config.PipelineConfig{
		BasePath:   "data/{company}",
		Extension:  "csv",
		Statements: map[string]string{"bs": "configured_bs.csv", "cf": "configured_cf.csv"},
	}
	got := ResolveStatements(cfg, "GOOGLE", map[string]string{"cf": "explicit_cf.csv"})

	want := map[models.StatementType]string{
		models.ProfitLoss:   "data/google/GOOGLE_PL.csv",
		models.BalanceSheet: "configured_bs.csv",
		models.CashFlow:     "explicit_cf.csv",
	}
	for typ, id := range want {
		if got[typ] != id {
			t.Errorf("%s: got %q, want %q", typ, got[typ], id)
		}
	}
}

func TestJobFromConfig(t *testing.T) {
	cfg := &config.Config{
		Pipeline: config.PipelineConfig{Company: "google", Year: 2024, BasePath: "data/{company}", Extension: "csv"},
		Sink:     config.SinkConfig{Mode: "overwrite"},
	}
	job, err := JobFromConfig(cfg)
	if err != nil {
		t.Fatalf("JobFromConfig() error: %v", err)
	}
	if job.Company != "GOOGLE" || job.Year != 2024 || job.Mode != sink.ModeOverwrite {
		t.Errorf("unexpected job: %+v", job)
	}
	if err := job.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	cfg.Sink.Mode = "merge"
	if _, err := JobFromConfig(cfg); err == nil {
		t.Error("unknown mode should fail")
	}
}
