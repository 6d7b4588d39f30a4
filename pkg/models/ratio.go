package models

// RatioRecord is the derived ratio row for one company and year. A nil field
// means the ratio could not be computed (missing input or zero denominator).
type RatioRecord struct {
	Company string `json:"company"`

	// Profitability
	GrossProfitMargin *float64 `json:"gross_profit_margin"`
	OperatingMargin   *float64 `json:"operating_margin"`
	EBITDA            *float64 `json:"ebitda"`
	NetProfitMargin   *float64 `json:"net_profit_margin"`

	// Cash flow
	FreeCashFlow            *float64 `json:"free_cash_flow"`
	FreeCashFlowToNetIncome *float64 `json:"free_cash_flow_to_net_income"`
	CashReturnOnInvestedCap *float64 `json:"cash_return_on_invested_capital"`
	DividendPayoutRatio     *float64 `json:"dividend_payout_ratio"`

	// Liquidity & leverage
	CurrentRatio  *float64 `json:"current_ratio"`
	NetDebtEBITDA *float64 `json:"net_debt_ebitda"`
	NetDebtEBIT   *float64 `json:"net_debt_ebit"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	DebtRatio     *float64 `json:"debt_ratio"`
	TotalDebt     *float64 `json:"total_debt"`

	// Returns
	ReturnOnInvestedCapital *float64 `json:"return_on_invested_capital"`
	ReturnOnAssets          *float64 `json:"return_on_assets"`
	ReturnOnEquity          *float64 `json:"return_on_equity"`

	// Adjusted (currently identical to the unadjusted figures)
	NetIncomeAdj               *float64 `json:"net_income_adj"`
	NetProfitMarginAdj         *float64 `json:"net_profit_margin_adj"`
	FCFToNetIncome             *float64 `json:"fcf_to_net_income"`
	ReturnOnEquityAdj          *float64 `json:"return_on_equity_adj"`
	ReturnOnAssetsAdj          *float64 `json:"return_on_assets_adj"`
	ReturnOnInvestedCapitalAdj *float64 `json:"return_on_invested_capital_adj"`
}

// CompanyColumn is the name of the identifier column of the ratio table.
const CompanyColumn = "company"

// ratioFieldNames is the ordered list of ratio columns (without company).
var ratioFieldNames = []string{
	"gross_profit_margin",
	"operating_margin",
	"ebitda",
	"net_profit_margin",
	"free_cash_flow",
	"free_cash_flow_to_net_income",
	"cash_return_on_invested_capital",
	"dividend_payout_ratio",
	"current_ratio",
	"net_debt_ebitda",
	"net_debt_ebit",
	"debt_to_equity",
	"debt_ratio",
	"total_debt",
	"return_on_invested_capital",
	"return_on_assets",
	"return_on_equity",
	"net_income_adj",
	"net_profit_margin_adj",
	"fcf_to_net_income",
	"return_on_equity_adj",
	"return_on_assets_adj",
	"return_on_invested_capital_adj",
}

// RatioFields returns the ratio column names in output order, excluding company.
func RatioFields() []string {
	out := make([]string, len(ratioFieldNames))
	copy(out, ratioFieldNames)
	return out
}

// RatioColumns returns the full output schema: company followed by every ratio field.
func RatioColumns() []string {
	return append([]string{CompanyColumn}, ratioFieldNames...)
}

// Fields returns pointers to the ratio fields in RatioFields order.
func (r *RatioRecord) Fields() []**float64 {
	return []**float64{
		&r.GrossProfitMargin,
		&r.OperatingMargin,
		&r.EBITDA,
		&r.NetProfitMargin,
		&r.FreeCashFlow,
		&r.FreeCashFlowToNetIncome,
		&r.CashReturnOnInvestedCap,
		&r.DividendPayoutRatio,
		&r.CurrentRatio,
		&r.NetDebtEBITDA,
		&r.NetDebtEBIT,
		&r.DebtToEquity,
		&r.DebtRatio,
		&r.TotalDebt,
		&r.ReturnOnInvestedCapital,
		&r.ReturnOnAssets,
		&r.ReturnOnEquity,
		&r.NetIncomeAdj,
		&r.NetProfitMarginAdj,
		&r.FCFToNetIncome,
		&r.ReturnOnEquityAdj,
		&r.ReturnOnAssetsAdj,
		&r.ReturnOnInvestedCapitalAdj,
	}
}

// Values returns the ratio fields keyed by column name.
func (r RatioRecord) Values() map[string]*float64 {
	fields := r.Fields()
	out := make(map[string]*float64, len(fields))
	for i, f := range fields {
		out[ratioFieldNames[i]] = *f
	}
	return out
}

// Row returns the record as a slice aligned with RatioColumns. Nil ratios stay nil.
func (r RatioRecord) Row() []any {
	fields := r.Fields()
	row := make([]any, 0, len(fields)+1)
	row = append(row, r.Company)
	for _, f := range fields {
		if *f == nil {
			row = append(row, nil)
			continue
		}
		row = append(row, **f)
	}
	return row
}
