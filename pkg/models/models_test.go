package models

import (
	"testing"
)

func TestParseStatementType(t *testing.T) {
	tests := []struct {
		input   string
		want    StatementType
		wantErr bool
	}{
		{"pl", ProfitLoss, false},
		{" BS ", BalanceSheet, false},
		{"Cf", CashFlow, false},
		{"is", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatementType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatementType(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatementType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatementTypeHelpers(t *testing.T) {
	for _, st := range StatementTypes {
		if !st.Valid() {
			t.Errorf("%q should be valid", st)
		}
		if st.Prefix() != string(st) {
			t.Errorf("Prefix(%q) = %q", st, st.Prefix())
		}
		if st.Label() == string(st) {
			t.Errorf("Label(%q) should be descriptive", st)
		}
	}
	if StatementType("xx").Valid() {
		t.Error("unknown statement type reported valid")
	}
}

func TestRatioColumns(t *testing.T) {
	cols := RatioColumns()
	if len(cols) != 24 {
		t.Fatalf("RatioColumns() has %d columns, want 24", len(cols))
	}
	if cols[0] != CompanyColumn {
		t.Errorf("first column = %q, want %q", cols[0], CompanyColumn)
	}
	seen := make(map[string]bool)
	for _, c := range cols {
		if seen[c] {
			t.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}

	fields := RatioFields()
	fields[0] = "mutated"
	if RatioFields()[0] != "gross_profit_margin" {
		t.Error("RatioFields should return a copy")
	}
}

func TestRatioRecordFieldsAlignWithColumns(t *testing.T) {
	var r RatioRecord
	fields := r.Fields()
	if len(fields) != len(RatioFields()) {
		t.Fatalf("Fields() = %d, RatioFields() = %d", len(fields), len(RatioFields()))
	}
	for i, f := range fields {
		*f = Float(float64(i))
	}

	values := r.Values()
	for i, name := range RatioFields() {
		v := values[name]
		if v == nil || *v != float64(i) {
			t.Errorf("Values()[%q] = %v, want %d", name, v, i)
		}
	}
	if r.ReturnOnInvestedCapitalAdj == nil || *r.ReturnOnInvestedCapitalAdj != 22 {
		t.Error("last field should map to return_on_invested_capital_adj")
	}
}

func TestRatioRecordRow(t *testing.T) {
	r := RatioRecord{Company: "GOOGLE", CurrentRatio: Float(2)}
	row := r.Row()
	if len(row) != len(RatioColumns()) {
		t.Fatalf("Row() has %d cells, want %d", len(row), len(RatioColumns()))
	}
	if row[0] != "GOOGLE" {
		t.Errorf("row[0] = %v", row[0])
	}
	for i, col := range RatioColumns() {
		switch col {
		case CompanyColumn:
		case "current_ratio":
			if row[i] != 2.0 {
				t.Errorf("current_ratio cell = %v, want 2", row[i])
			}
		default:
			if row[i] != nil {
				t.Errorf("%s cell = %v, want nil", col, row[i])
			}
		}
	}
}
