package ratio

import (
	"errors"
	"testing"

	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
)

// scenario is the reference company used across the ratio tests.
func scenario() (pl, bs, cf map[string]float64) {
	pl = map[string]float64{
		"revenue": 100, "gross_profit": 40, "operating_income_loss": 20,
		"net_income": 10, "depreciation_amortization": 5,
	}
	bs = map[string]float64{
		"total_equity": 50, "long_term_debt": 30, "short_term_debt": 20,
		"total_current_assets": 60, "total_current_liabilities": 30,
		"total_liabilities": 50, "total_assets": 100, "cash_cash_equivalents": 10,
	}
	cf = map[string]float64{
		"cash_from_operating_activities": 25, "acquisition_of_fixed_assets_intangibles": 5,
		"dividends_paid": 2,
	}
	return pl, bs, cf
}

func pivotOf(t *testing.T, typ models.StatementType, year int, values map[string]float64) *statement.PivotTable {
	t.Helper()
	var records []models.LongRecord
	seq := 0
	for metric, v := range values {
		records = append(records, models.LongRecord{
			Seq: seq, Metric: metric, Year: year, Value: models.Float(v), StatementType: typ,
		})
		seq++
	}
	pt, err := statement.Pivot(records, typ.Prefix())
	if err != nil {
		t.Fatalf("Pivot(%s) error: %v", typ, err)
	}
	return pt
}

func calculate(t *testing.T, pl, bs, cf map[string]float64) models.RatioRecord {
	t.Helper()
	records, err := NewEngine("GOOGLE").Calculate(
		pivotOf(t, models.ProfitLoss, 2024, pl),
		pivotOf(t, models.BalanceSheet, 2024, bs),
		pivotOf(t, models.CashFlow, 2024, cf),
	)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	return records[0]
}

func TestCalculateScenario(t *testing.T) {
	pl, bs, cf := scenario()
	r := calculate(t, pl, bs, cf)

	if r.Company != "GOOGLE" {
		t.Errorf("Company: got %q, want %q", r.Company, "GOOGLE")
	}

	f := models.Float
	checks := []struct {
		name string
		got  *float64
		want *float64
	}{
		{"gross_profit_margin", r.GrossProfitMargin, f(0.4)},
		{"operating_margin", r.OperatingMargin, f(0.2)},
		{"ebitda", r.EBITDA, f(25)},
		{"net_profit_margin", r.NetProfitMargin, f(0.1)},
		{"free_cash_flow", r.FreeCashFlow, f(20)},
		{"free_cash_flow_to_net_income", r.FreeCashFlowToNetIncome, f(2)},
		{"cash_return_on_invested_capital", r.CashReturnOnInvestedCap, f(0.2)},
		{"dividend_payout_ratio", r.DividendPayoutRatio, f(0.2)},
		{"current_ratio", r.CurrentRatio, f(2.0)},
		{"net_debt_ebitda", r.NetDebtEBITDA, f(40.0 / 25.0)},
		{"net_debt_ebit", r.NetDebtEBIT, f(2)},
		{"debt_to_equity", r.DebtToEquity, f(1.0)},
		{"debt_ratio", r.DebtRatio, f(0.5)},
		{"total_debt", r.TotalDebt, f(50)},
		{"return_on_invested_capital", r.ReturnOnInvestedCapital, f(0.2)},
		{"return_on_assets", r.ReturnOnAssets, f(0.1)},
		{"return_on_equity", r.ReturnOnEquity, f(0.2)},
		{"net_income_adj", r.NetIncomeAdj, f(10)},
		{"net_profit_margin_adj", r.NetProfitMarginAdj, f(0.1)},
		{"fcf_to_net_income", r.FCFToNetIncome, f(2)},
		{"return_on_equity_adj", r.ReturnOnEquityAdj, f(0.2)},
		{"return_on_assets_adj", r.ReturnOnAssetsAdj, f(0.1)},
		{"return_on_invested_capital_adj", r.ReturnOnInvestedCapitalAdj, f(0.2)},
	}
	if len(checks) != len(models.RatioFields()) {
		t.Fatalf("scenario covers %d fields, schema has %d", len(checks), len(models.RatioFields()))
	}
	for _, c := range checks {
		assertFloat(t, c.name, c.got, c.want)
	}
}

func TestAdjustedFieldsMirrorUnadjusted(t *testing.T) {
	pl, bs, cf := scenario()
	r := calculate(t, pl, bs, cf)
	pairs := []struct {
		name      string
		adj, base *float64
	}{
		{"net_income_adj", r.NetIncomeAdj, models.Float(pl["net_income"])},
		{"net_profit_margin_adj", r.NetProfitMarginAdj, r.NetProfitMargin},
		{"fcf_to_net_income", r.FCFToNetIncome, r.FreeCashFlowToNetIncome},
		{"return_on_equity_adj", r.ReturnOnEquityAdj, r.ReturnOnEquity},
		{"return_on_assets_adj", r.ReturnOnAssetsAdj, r.ReturnOnAssets},
		{"return_on_invested_capital_adj", r.ReturnOnInvestedCapitalAdj, r.ReturnOnInvestedCapital},
	}
	for _, p := range pairs {
		assertFloat(t, p.name, p.adj, p.base)
	}
}

func TestCalculateZeroDenominators(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(pl, bs, cf map[string]float64)
		wantNil  []string
		wantSome []string
	}{
		{
			name:     "zero revenue",
			mutate:   func(pl, _, _ map[string]float64) { pl["revenue"] = 0 },
			wantNil:  []string{"gross_profit_margin", "operating_margin", "net_profit_margin", "net_profit_margin_adj"},
			wantSome: []string{"ebitda", "return_on_assets"},
		},
		{
			name:   "zero net income",
			mutate: func(pl, _, _ map[string]float64) { pl["net_income"] = 0 },
			wantNil: []string{
				"free_cash_flow_to_net_income", "dividend_payout_ratio", "fcf_to_net_income",
			},
			wantSome: []string{"net_income_adj", "return_on_equity", "free_cash_flow"},
		},
		{
			name: "invested capital sums to zero",
			mutate: func(_, bs, _ map[string]float64) {
				bs["long_term_debt"] = -30
				bs["short_term_debt"] = -20
			},
			wantNil: []string{
				"cash_return_on_invested_capital", "return_on_invested_capital", "return_on_invested_capital_adj",
			},
			wantSome: []string{"total_debt", "debt_to_equity"},
		},
		{
			name:     "zero current liabilities",
			mutate:   func(_, bs, _ map[string]float64) { bs["total_current_liabilities"] = 0 },
			wantNil:  []string{"current_ratio"},
			wantSome: []string{"debt_ratio"},
		},
		{
			name:     "ebitda sums to zero",
			mutate:   func(pl, _, _ map[string]float64) { pl["operating_income_loss"] = -5 },
			wantNil:  []string{"net_debt_ebitda"},
			wantSome: []string{"ebitda", "net_debt_ebit"},
		},
		{
			name:     "zero operating income",
			mutate:   func(pl, _, _ map[string]float64) { pl["operating_income_loss"] = 0 },
			wantNil:  []string{"net_debt_ebit"},
			wantSome: []string{"net_debt_ebitda", "operating_margin"},
		},
		{
			name:     "zero equity",
			mutate:   func(_, bs, _ map[string]float64) { bs["total_equity"] = 0 },
			wantNil:  []string{"debt_to_equity", "return_on_equity", "return_on_equity_adj"},
			wantSome: []string{"return_on_invested_capital"},
		},
		{
			name:     "zero total assets",
			mutate:   func(_, bs, _ map[string]float64) { bs["total_assets"] = 0 },
			wantNil:  []string{"debt_ratio", "return_on_assets", "return_on_assets_adj"},
			wantSome: []string{"current_ratio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, bs, cf := scenario()
			tt.mutate(pl, bs, cf)
			values := calculate(t, pl, bs, cf).Values()
			for _, name := range tt.wantNil {
				if v := values[name]; v != nil {
					t.Errorf("%s: got %v, want nil", name, *v)
				}
			}
			for _, name := range tt.wantSome {
				if values[name] == nil {
					t.Errorf("%s: got nil, want a value", name)
				}
			}
		})
	}
}

func TestCalculateNilMetricPropagates(t *testing.T) {
	pl, bs, cf := scenario()
	plTable := pivotOf(t, models.ProfitLoss, 2024, pl)
	row, _ := plTable.Row(2024)
	row.Values[PLRevenue] = nil

	records, err := NewEngine("GOOGLE").Calculate(plTable,
		pivotOf(t, models.BalanceSheet, 2024, bs),
		pivotOf(t, models.CashFlow, 2024, cf))
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	r := records[0]
	if r.GrossProfitMargin != nil || r.OperatingMargin != nil {
		t.Error("margins should be nil when revenue is missing")
	}
	if r.ReturnOnEquity == nil {
		t.Error("unrelated fields should still be computed")
	}
}

func TestCalculateEmptyJoin(t *testing.T) {
	pl, bs, cf := scenario()
	records, err := NewEngine("GOOGLE").Calculate(
		pivotOf(t, models.ProfitLoss, 2024, pl),
		pivotOf(t, models.BalanceSheet, 2023, bs),
		pivotOf(t, models.CashFlow, 2024, cf),
	)
	if err != nil {
		t.Fatalf("empty join should not be an error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestCalculateMissingColumnStrict(t *testing.T) {
	pl, bs, cf := scenario()
	delete(cf, "dividends_paid")
	_, err := NewEngine("GOOGLE").Calculate(
		pivotOf(t, models.ProfitLoss, 2024, pl),
		pivotOf(t, models.BalanceSheet, 2024, bs),
		pivotOf(t, models.CashFlow, 2024, cf),
	)
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T", err)
	}
	if se.Company != "GOOGLE" || len(se.Missing) != 1 || se.Missing[0] != CFDividendsPaid {
		t.Errorf("unexpected error: %+v", se)
	}
}

func TestCalculateMissingColumnLenient(t *testing.T) {
	pl, bs, cf := scenario()
	delete(cf, "dividends_paid")
	records, err := NewEngine("GOOGLE", WithLenientSchema()).Calculate(
		pivotOf(t, models.ProfitLoss, 2024, pl),
		pivotOf(t, models.BalanceSheet, 2024, bs),
		pivotOf(t, models.CashFlow, 2024, cf),
	)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if records[0].DividendPayoutRatio != nil {
		t.Error("dividend_payout_ratio should be nil without dividends_paid")
	}
	if records[0].FreeCashFlow == nil {
		t.Error("free_cash_flow should still be computed")
	}
}

func TestCalculateMultipleJoinedYears(t *testing.T) {
	pl, bs, cf := scenario()
	merge := func(typ models.StatementType, values map[string]float64) *statement.PivotTable {
		var records []models.LongRecord
		seq := 0
		for _, year := range []int{2024, 2023} {
			for metric, v := range values {
				records = append(records, models.LongRecord{Seq: seq, Metric: metric, Year: year, Value: models.Float(v), StatementType: typ})
				seq++
			}
		}
		pt, err := statement.Pivot(records, typ.Prefix())
		if err != nil {
			t.Fatalf("Pivot error: %v", err)
		}
		return pt
	}
	records, err := NewEngine("GOOGLE").Calculate(merge(models.ProfitLoss, pl), merge(models.BalanceSheet, bs), merge(models.CashFlow, cf))
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestRequiredColumnsCopy(t *testing.T) {
	cols := RequiredColumns()
	if len(cols[models.ProfitLoss])+len(cols[models.BalanceSheet])+len(cols[models.CashFlow]) != 16 {
		t.Errorf("expected 16 required columns, got %v", cols)
	}
	cols[models.ProfitLoss][0] = "mutated"
	if RequiredColumns()[models.ProfitLoss][0] != PLRevenue {
		t.Error("RequiredColumns should return a copy")
	}
}
