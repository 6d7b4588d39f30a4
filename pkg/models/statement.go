// Package models defines the core data structures shared by the statement
// normalization pipeline, the ratio engine, and their sources and sinks.
package models

import (
	"fmt"
	"strings"
)

// StatementType identifies one of the three financial statements.
type StatementType string

const (
	ProfitLoss   StatementType = "pl"
	BalanceSheet StatementType = "bs"
	CashFlow     StatementType = "cf"
)

// StatementTypes lists all statement types in pipeline order.
var StatementTypes = []StatementType{ProfitLoss, BalanceSheet, CashFlow}

// ParseStatementType parses "pl", "bs" or "cf" (any case, surrounding whitespace ignored).
func ParseStatementType(s string) (StatementType, error) {
	switch t := StatementType(strings.ToLower(strings.TrimSpace(s))); t {
	case ProfitLoss, BalanceSheet, CashFlow:
		return t, nil
	default:
		return "", fmt.Errorf("unknown statement type %q (want pl, bs or cf)", s)
	}
}

// Valid reports whether t is one of the known statement types.
func (t StatementType) Valid() bool {
	return t == ProfitLoss || t == BalanceSheet || t == CashFlow
}

// Prefix returns the column prefix used when the statement is pivoted.
func (t StatementType) Prefix() string { return string(t) }

// Label returns a human-readable name.
func (t StatementType) Label() string {
	switch t {
	case ProfitLoss:
		return "profit & loss"
	case BalanceSheet:
		return "balance sheet"
	case CashFlow:
		return "cash flow"
	}
	return string(t)
}

// RawStatement is a wide statement table as read from a source: one header
// row (first column = metric label, remaining columns = period labels) and
// string cells.
type RawStatement struct {
	ID      string     `json:"id"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// LongRecord is one (metric, year) cell of a cleaned statement.
type LongRecord struct {
	Seq           int           `json:"seq"` // ingestion order, used for first-value tie-breaks
	Metric        string        `json:"metric"`
	Year          int           `json:"year"`
	Value         *float64      `json:"value"` // nil when the source cell was blank or unparseable
	StatementType StatementType `json:"statement_type"`
}

// WideRecord is one year of a pivoted statement. Keys are "<prefix>_<metric>".
type WideRecord struct {
	Year   int                 `json:"year"`
	Values map[string]*float64 `json:"values"`
}

// Float returns a pointer to v. Handy for building nullable values.
func Float(v float64) *float64 { return &v }
