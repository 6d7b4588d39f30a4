package statement

import (
	"testing"

	"github.com/seenimoa/finratios/pkg/models"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		typ      models.StatementType
		input    string
		expected string
	}{
		{"pl strips FY", models.ProfitLoss, "FY 2024", "2024"},
		{"pl strips FY without space", models.ProfitLoss, "FY2023", "2023"},
		{"cf strips FY", models.CashFlow, "  FY 2022 ", "2022"},
		{"bs strips Q4", models.BalanceSheet, "Q4 2024", "2024"},
		{"pl keeps Q4", models.ProfitLoss, "Q4 2024", "q4_2024"},
		{"bs keeps FY", models.BalanceSheet, "FY 2024", "fy_2024"},
		{"strip is case sensitive", models.ProfitLoss, "fy 2024", "fy_2024"},
		{"token anywhere", models.ProfitLoss, "2024 FY", "2024"},
		{"plain year", models.BalanceSheet, "2021", "2021"},
		{"ttm header", models.ProfitLoss, "TTM", "ttm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewNormalizer(tt.typ).NormalizeHeader(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeHeader(%q) [%s] = %q, want %q", tt.input, tt.typ, got, tt.expected)
			}
		})
	}
}

func TestNormalizeMetric(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Cash & Cash Equivalents", "cash_cash_equivalents"},
		{"Gross Profit (Loss)", "gross_profit_loss"},
		{"  Revenue  ", "revenue"},
		{"Operating Income/Loss", "operating_income_loss"},
		{"Depreciation & Amortization", "depreciation_amortization"},
		{"Acquisition of Fixed Assets & Intangibles", "acquisition_of_fixed_assets_intangibles"},
		{"Short-Term Debt", "short_term_debt"},
		{"Total Current Assets, Net", "total_current_assets_net"},
		{"(Other)", "other"},
		{"FY Revenue", "fy_revenue"}, // labels never lose the header token
		{"---", ""},
		{"", ""},
		{"Tab\tSeparated\nLabel", "tab_separated_label"},
	}

	n := NewNormalizer(models.ProfitLoss)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := n.NormalizeMetric(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeMetric(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeDispatch(t *testing.T) {
	n := NewNormalizer(models.BalanceSheet)
	if got := n.Normalize("Q4 2024", true); got != "2024" {
		t.Errorf("header: got %q, want %q", got, "2024")
	}
	if got := n.Normalize("Q4 2024", false); got != "q4_2024" {
		t.Errorf("metric: got %q, want %q", got, "q4_2024")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Cash & Cash Equivalents",
		"Gross Profit (Loss)",
		"FY 2024",
		"Q4 2024",
		" -- weird // label -- ",
		"already_normal",
		"",
	}
	for _, typ := range models.StatementTypes {
		n := NewNormalizer(typ)
		for _, in := range inputs {
			for _, header := range []bool{true, false} {
				once := n.Normalize(in, header)
				twice := n.Normalize(once, header)
				if once != twice {
					t.Errorf("[%s header=%v] normalize(normalize(%q)) = %q, want %q", typ, header, in, twice, once)
				}
			}
		}
	}
}

func TestHeaderStripToken(t *testing.T) {
	tests := []struct {
		typ      models.StatementType
		expected string
	}{
		{models.ProfitLoss, "FY"},
		{models.CashFlow, "FY"},
		{models.BalanceSheet, "Q4"},
		{models.StatementType("xx"), ""},
	}
	for _, tt := range tests {
		if got := HeaderStripToken(tt.typ); got != tt.expected {
			t.Errorf("HeaderStripToken(%q) = %q, want %q", tt.typ, got, tt.expected)
		}
	}
}

func TestZeroNormalizerDoesNotStrip(t *testing.T) {
	if got := (Normalizer{}).NormalizeHeader("FY 2024"); got != "fy_2024" {
		t.Errorf("got %q, want %q", got, "fy_2024")
	}
}
