// Package statement turns raw wide financial statements into normalized
// long-form records and pivots them back into per-year wide tables.
//
// The package is pure: no I/O, no logging, no shared state. Readers and
// writers live in the source and sink packages.
package statement

import (
	"strings"
	"unicode"

	"github.com/seenimoa/finratios/pkg/models"
)

// Header tokens stripped from period column headers before normalization.
const (
	FiscalYearToken = "FY"
	Q4Token         = "Q4"
)

// Normalizer canonicalizes metric labels and period headers into snake_case
// tokens. It is a plain value; the zero value normalizes without stripping
// any header token.
type Normalizer struct {
	StatementType    models.StatementType
	HeaderStripToken string
}

// NewNormalizer returns the normalizer for a statement type. Profit & loss and
// cash flow headers drop "FY"; balance sheet headers drop "Q4".
func NewNormalizer(t models.StatementType) Normalizer {
	return Normalizer{StatementType: t, HeaderStripToken: HeaderStripToken(t)}
}

// HeaderStripToken returns the header token removed for statement type t.
func HeaderStripToken(t models.StatementType) string {
	switch t {
	case models.ProfitLoss, models.CashFlow:
		return FiscalYearToken
	case models.BalanceSheet:
		return Q4Token
	}
	return ""
}

// Normalize normalizes raw as a column header or as a metric label.
func (n Normalizer) Normalize(raw string, isColumnHeader bool) string {
	if isColumnHeader {
		return n.NormalizeHeader(raw)
	}
	return n.NormalizeMetric(raw)
}

// NormalizeHeader normalizes a period column header, e.g. "FY 2024" -> "2024".
func (n Normalizer) NormalizeHeader(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripToken(s, n.HeaderStripToken)
	return canonical(s)
}

// NormalizeMetric normalizes a metric label, e.g. "Cash & Cash Equivalents" ->
// "cash_cash_equivalents". Header tokens are never stripped from labels.
func (n Normalizer) NormalizeMetric(raw string) string {
	return canonical(strings.TrimSpace(raw))
}

// NormalizeMetric normalizes a metric label without a statement context.
func NormalizeMetric(raw string) string {
	return Normalizer{}.NormalizeMetric(raw)
}

// canonical lowercases s, collapses every run of separator characters into a
// single underscore and trims underscores from both ends.
func canonical(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isSeparator(r) {
			if !inRun {
				b.WriteByte('_')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

func isSeparator(r rune) bool {
	switch r {
	case ',', '&', '(', ')', '-', '/':
		return true
	}
	return unicode.IsSpace(r)
}

// stripToken removes every occurrence of tok, together with the whitespace
// that follows it. Matching is case-sensitive.
func stripToken(s, tok string) string {
	if tok == "" {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, tok)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = strings.TrimLeftFunc(s[i+len(tok):], unicode.IsSpace)
	}
}
