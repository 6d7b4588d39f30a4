package ratio

import (
	"fmt"

	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
)

// Calculator computes ratios straight from the three long-form statements:
// it filters each one to the target year, pivots it, and runs the Engine.
type Calculator struct {
	engine *Engine
	long   map[models.StatementType][]models.LongRecord
}

// NewCalculator creates a calculator over cleaned long-form records.
func NewCalculator(company string, pl, bs, cf []models.LongRecord, opts ...Option) *Calculator {
	return &Calculator{
		engine: NewEngine(company, opts...),
		long: map[models.StatementType][]models.LongRecord{
			models.ProfitLoss:   pl,
			models.BalanceSheet: bs,
			models.CashFlow:     cf,
		},
	}
}

// Pivots filters every statement to year and pivots it with its prefix.
func (c *Calculator) Pivots(year int) (pl, bs, cf *statement.PivotTable, err error) {
	tables := make(map[models.StatementType]*statement.PivotTable, 3)
	for _, t := range models.StatementTypes {
		pt, err := statement.Pivot(statement.FilterYear(c.long[t], year), t.Prefix())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ratios for %s: %w", c.engine.company, err)
		}
		tables[t] = pt
	}
	return tables[models.ProfitLoss], tables[models.BalanceSheet], tables[models.CashFlow], nil
}

// Calculate returns the ratio records for year. If any statement lacks the
// year the result is empty with a nil error.
func (c *Calculator) Calculate(year int) ([]models.RatioRecord, error) {
	pl, bs, cf, err := c.Pivots(year)
	if err != nil {
		return nil, err
	}
	return c.engine.Calculate(pl, bs, cf)
}
