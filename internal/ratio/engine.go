// Package ratio derives the standardized ratio set from pivoted profit & loss,
// balance sheet and cash flow tables.
//
// Every ratio is computed with the nullable helpers in nullable.go: a missing
// input or a zero denominator yields nil for that field only.
//
// The *_adj fields are currently the same figures as their unadjusted
// counterparts; no one-off/non-recurring adjustment is applied yet.
package ratio

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
)

// Source columns read by the ratio formulas.
const (
	PLRevenue                  = "pl_revenue"
	PLGrossProfit              = "pl_gross_profit"
	PLOperatingIncomeLoss      = "pl_operating_income_loss"
	PLNetIncome                = "pl_net_income"
	PLDepreciationAmortization = "pl_depreciation_amortization"

	BSTotalEquity             = "bs_total_equity"
	BSLongTermDebt            = "bs_long_term_debt"
	BSShortTermDebt           = "bs_short_term_debt"
	BSTotalCurrentAssets      = "bs_total_current_assets"
	BSTotalCurrentLiabilities = "bs_total_current_liabilities"
	BSTotalLiabilities        = "bs_total_liabilities"
	BSTotalAssets             = "bs_total_assets"
	BSCashCashEquivalents     = "bs_cash_cash_equivalents"

	CFCashFromOperatingActivities         = "cf_cash_from_operating_activities"
	CFAcquisitionOfFixedAssetsIntangibles = "cf_acquisition_of_fixed_assets_intangibles"
	CFDividendsPaid                       = "cf_dividends_paid"
)

var requiredColumns = map[models.StatementType][]string{
	models.ProfitLoss: {
		PLRevenue, PLGrossProfit, PLOperatingIncomeLoss, PLNetIncome, PLDepreciationAmortization,
	},
	models.BalanceSheet: {
		BSTotalEquity, BSLongTermDebt, BSShortTermDebt, BSTotalCurrentAssets,
		BSTotalCurrentLiabilities, BSTotalLiabilities, BSTotalAssets, BSCashCashEquivalents,
	},
	models.CashFlow: {
		CFCashFromOperatingActivities, CFAcquisitionOfFixedAssetsIntangibles, CFDividendsPaid,
	},
}

// RequiredColumns returns the pivoted columns the formulas read, per statement.
func RequiredColumns() map[models.StatementType][]string {
	out := make(map[models.StatementType][]string, len(requiredColumns))
	for t, cols := range requiredColumns {
		out[t] = append([]string(nil), cols...)
	}
	return out
}

// ErrSchema is wrapped by SchemaError.
var ErrSchema = errors.New("ratio input schema error")

// SchemaError reports source columns missing from the pivoted tables.
type SchemaError struct {
	Company string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ratios for %s: missing columns %s", e.Company, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// Option configures an Engine.
type Option func(*Engine)

// WithLenientSchema makes absent source columns read as nil instead of
// failing the calculation.
func WithLenientSchema() Option {
	return func(e *Engine) { e.strict = false }
}

// Engine joins the three pivoted statements and computes ratios.
type Engine struct {
	company string
	strict  bool
}

// NewEngine creates an engine for company. By default a required column
// absent from a pivoted schema is a SchemaError.
func NewEngine(company string, opts ...Option) *Engine {
	e := &Engine{company: company, strict: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Company returns the company identifier stamped on every record.
func (e *Engine) Company() string { return e.company }

// Calculate inner-joins pl, bs and cf on year and returns one record per
// joined year, ascending. An empty join is an empty result, not an error.
func (e *Engine) Calculate(pl, bs, cf *statement.PivotTable) ([]models.RatioRecord, error) {
	years := joinYears(pl, bs, cf)
	if len(years) == 0 {
		return nil, nil
	}

	if e.strict {
		if missing := missingColumns(pl, bs, cf); len(missing) > 0 {
			return nil, &SchemaError{Company: e.company, Missing: missing}
		}
	}

	records := make([]models.RatioRecord, 0, len(years))
	for _, year := range years {
		in := inputs{}
		for _, t := range []*statement.PivotTable{pl, bs, cf} {
			row, _ := t.Row(year)
			for k, v := range row.Values {
				in[k] = v
			}
		}
		records = append(records, e.compute(in))
	}
	return records, nil
}

// inputs is one joined row keyed by pivoted column name.
type inputs map[string]*float64

func (in inputs) get(col string) *float64 { return in[col] }

func (e *Engine) compute(in inputs) models.RatioRecord {
	revenue := in.get(PLRevenue)
	grossProfit := in.get(PLGrossProfit)
	operatingIncome := in.get(PLOperatingIncomeLoss)
	netIncome := in.get(PLNetIncome)
	depreciation := in.get(PLDepreciationAmortization)

	equity := in.get(BSTotalEquity)
	longTermDebt := in.get(BSLongTermDebt)
	shortTermDebt := in.get(BSShortTermDebt)
	currentAssets := in.get(BSTotalCurrentAssets)
	currentLiabilities := in.get(BSTotalCurrentLiabilities)
	liabilities := in.get(BSTotalLiabilities)
	assets := in.get(BSTotalAssets)
	cash := in.get(BSCashCashEquivalents)

	operatingCash := in.get(CFCashFromOperatingActivities)
	capex := in.get(CFAcquisitionOfFixedAssetsIntangibles)
	dividends := in.get(CFDividendsPaid)

	ebitda := Sum(operatingIncome, depreciation)
	freeCashFlow := Sub(operatingCash, capex)
	investedCapital := Sum(equity, longTermDebt, shortTermDebt)
	netDebt := Sub(Sum(shortTermDebt, longTermDebt), cash)

	return models.RatioRecord{
		Company: e.company,

		GrossProfitMargin: Div(grossProfit, revenue),
		OperatingMargin:   Div(operatingIncome, revenue),
		EBITDA:            ebitda,
		NetProfitMargin:   Div(netIncome, revenue),

		FreeCashFlow:            freeCashFlow,
		FreeCashFlowToNetIncome: Div(freeCashFlow, netIncome),
		CashReturnOnInvestedCap: Div(operatingIncome, investedCapital),
		DividendPayoutRatio:     Div(dividends, netIncome),

		CurrentRatio:  Div(currentAssets, currentLiabilities),
		NetDebtEBITDA: Div(netDebt, ebitda),
		NetDebtEBIT:   Div(netDebt, operatingIncome),
		DebtToEquity:  Div(liabilities, equity),
		DebtRatio:     Div(liabilities, assets),
		TotalDebt:     Sum(shortTermDebt, longTermDebt),

		ReturnOnInvestedCapital: Div(operatingIncome, investedCapital),
		ReturnOnAssets:          Div(netIncome, assets),
		ReturnOnEquity:          Div(netIncome, equity),

		NetIncomeAdj:               Same(netIncome),
		NetProfitMarginAdj:         Div(netIncome, revenue),
		FCFToNetIncome:             Div(freeCashFlow, netIncome),
		ReturnOnEquityAdj:          Div(netIncome, equity),
		ReturnOnAssetsAdj:          Div(netIncome, assets),
		ReturnOnInvestedCapitalAdj: Div(operatingIncome, investedCapital),
	}
}

// joinYears returns the years present in all three tables, ascending.
func joinYears(pl, bs, cf *statement.PivotTable) []int {
	if pl == nil || bs == nil || cf == nil {
		return nil
	}
	var years []int
	for _, y := range pl.Years() {
		if _, ok := bs.Row(y); !ok {
			continue
		}
		if _, ok := cf.Row(y); !ok {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func missingColumns(pl, bs, cf *statement.PivotTable) []string {
	tables := map[models.StatementType]*statement.PivotTable{
		models.ProfitLoss:   pl,
		models.BalanceSheet: bs,
		models.CashFlow:     cf,
	}
	var missing []string
	for _, t := range models.StatementTypes {
		for _, col := range requiredColumns[t] {
			if !tables[t].HasColumn(col) {
				missing = append(missing, col)
			}
		}
	}
	return missing
}
