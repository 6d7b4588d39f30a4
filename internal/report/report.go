// Package report renders ratio records as a human readable report: an HTML
// page with SVG charts, or plain text for terminals and log files.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// FormatForPath picks HTML for .html/.htm files and text otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	}
	return FormatText
}

// Config controls report generation.
type Config struct {
	Format   Format      // output format (default: HTML)
	Title    string      // report title (default: "Financial Ratios")
	Subtitle string      // optional, e.g. the fiscal year
	ChartCfg ChartConfig // chart rendering config
	Now      func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Format:   FormatHTML,
		Title:    "Financial Ratios",
		ChartCfg: DefaultChartConfig(),
		Now:      time.Now,
	}
}

// notAvailable is shown for a ratio that could not be computed.
const notAvailable = "n/a"

// unit tells how a ratio value is displayed.
type unit int

const (
	unitPercent  unit = iota // fraction shown as a percentage
	unitMultiple             // plain ratio shown as "1.25x"
	unitAmount               // currency amount shown compact
)

type metric struct {
	column string
	label  string
	unit   unit
}

type sectionDef struct {
	title   string
	metrics []metric
}

// sections groups every ratio column for display.
var sections = []sectionDef{
	{"Profitability", []metric{
		{"gross_profit_margin", "Gross profit margin", unitPercent},
		{"operating_margin", "Operating margin", unitPercent},
		{"net_profit_margin", "Net profit margin", unitPercent},
		{"ebitda", "EBITDA", unitAmount},
	}},
	{"Cash flow", []metric{
		{"free_cash_flow", "Free cash flow", unitAmount},
		{"free_cash_flow_to_net_income", "FCF / net income", unitMultiple},
		{"cash_return_on_invested_capital", "Cash return on invested capital", unitPercent},
		{"dividend_payout_ratio", "Dividend payout ratio", unitPercent},
	}},
	{"Liquidity & leverage", []metric{
		{"current_ratio", "Current ratio", unitMultiple},
		{"net_debt_ebitda", "Net debt / EBITDA", unitMultiple},
		{"net_debt_ebit", "Net debt / EBIT", unitMultiple},
		{"debt_to_equity", "Debt to equity", unitMultiple},
		{"debt_ratio", "Debt ratio", unitPercent},
		{"total_debt", "Total debt", unitAmount},
	}},
	{"Returns", []metric{
		{"return_on_invested_capital", "Return on invested capital", unitPercent},
		{"return_on_assets", "Return on assets", unitPercent},
		{"return_on_equity", "Return on equity", unitPercent},
	}},
	{"Adjusted", []metric{
		{"net_income_adj", "Net income (adj.)", unitAmount},
		{"net_profit_margin_adj", "Net profit margin (adj.)", unitPercent},
		{"fcf_to_net_income", "FCF / net income (adj.)", unitMultiple},
		{"return_on_equity_adj", "Return on equity (adj.)", unitPercent},
		{"return_on_assets_adj", "Return on assets (adj.)", unitPercent},
		{"return_on_invested_capital_adj", "Return on invested capital (adj.)", unitPercent},
	}},
}

// ════════════════════════════════════════════════════════════════════
// Report data, flattened for template rendering.
// ════════════════════════════════════════════════════════════════════

// Data is the template model passed to the HTML template.
type Data struct {
	Title       string
	Subtitle    string
	GeneratedAt string
	Companies   []CompanyData
}

// CompanyData holds the sections of one ratio record.
type CompanyData struct {
	Company     string
	Sections    []Section
	Missing     int           // ratios that could not be computed
	MarginChart template.HTML // margins and returns, in percent
}

// Section is one group of ratios.
type Section struct {
	Title string
	Rows  []Row
}

// Row is one displayed ratio.
type Row struct {
	Column string
	Label  string
	Value  string
	Null   bool
}

// Build flattens records into the template model.
func Build(records []models.RatioRecord, cfg Config) Data {
	cfg = withDefaults(cfg)
	d := Data{
		Title:       cfg.Title,
		Subtitle:    cfg.Subtitle,
		GeneratedAt: cfg.Now().UTC().Format("2006-01-02 15:04 MST"),
	}
	for _, rec := range records {
		d.Companies = append(d.Companies, buildCompany(rec, cfg))
	}
	return d
}

func buildCompany(rec models.RatioRecord, cfg Config) CompanyData {
	values := rec.Values()
	cd := CompanyData{Company: rec.Company}

	var bars []BarItem
	for _, sec := range sections {
		s := Section{Title: sec.title}
		for _, m := range sec.metrics {
			v := values[m.column]
			s.Rows = append(s.Rows, Row{
				Column: m.column,
				Label:  m.label,
				Value:  formatValue(v, m.unit),
				Null:   v == nil,
			})
			if v == nil {
				cd.Missing++
				continue
			}
			if m.unit == unitPercent && sec.title != "Adjusted" {
				bars = append(bars, BarItem{Label: m.label, Value: *v * 100})
			}
		}
		cd.Sections = append(cd.Sections, s)
	}

	chartCfg := cfg.ChartCfg
	chartCfg.Title = rec.Company + ": margins and returns (%)"
	cd.MarginChart = template.HTML(HorizontalBarChart(bars, chartCfg))
	return cd
}

func formatValue(v *float64, u unit) string {
	if v == nil {
		return notAvailable
	}
	switch u {
	case unitPercent:
		return utils.FormatPct(*v)
	case unitMultiple:
		return fmt.Sprintf("%.2fx", *v)
	default:
		return utils.FormatCompact(*v)
	}
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.ChartCfg.Width == 0 {
		cfg.ChartCfg = def.ChartCfg
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return cfg
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

var reportTemplate = template.Must(template.New("report").Parse(ReportTemplate))

// Generate renders records in cfg.Format.
func Generate(records []models.RatioRecord, cfg Config) (string, error) {
	cfg = withDefaults(cfg)
	if cfg.Format == FormatText {
		return GenerateText(records, cfg), nil
	}
	return GenerateHTML(records, cfg)
}

// GenerateHTML renders an HTML ratio report.
func GenerateHTML(records []models.RatioRecord, cfg Config) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, Build(records, cfg)); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders a plain-text ratio report.
func GenerateText(records []models.RatioRecord, cfg Config) string {
	d := Build(records, cfg)

	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString(line + "\n")
	fmt.Fprintf(&sb, "  %s\n", d.Title)
	if d.Subtitle != "" {
		fmt.Fprintf(&sb, "  %s\n", d.Subtitle)
	}
	fmt.Fprintf(&sb, "  Generated: %s\n", d.GeneratedAt)
	sb.WriteString(line + "\n")

	if len(d.Companies) == 0 {
		sb.WriteString("  (no rows)\n")
	}
	for _, c := range d.Companies {
		fmt.Fprintf(&sb, "\n  %s", c.Company)
		if c.Missing > 0 {
			fmt.Fprintf(&sb, " (%d ratios n/a)", c.Missing)
		}
		sb.WriteString("\n" + thinLine + "\n")
		for _, s := range c.Sections {
			fmt.Fprintf(&sb, "  ■ %s\n", strings.ToUpper(s.Title))
			for _, r := range s.Rows {
				fmt.Fprintf(&sb, "    %-36s %s\n", r.Label, r.Value)
			}
		}
	}
	sb.WriteString(line + "\n")
	return sb.String()
}
