package sink

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seenimoa/finratios/pkg/models"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent reports whether s is safe to splice into SQL as an identifier.
func validIdent(s string) bool {
	return identPattern.MatchString(s)
}

// createTableSQL returns the DDL for the ratio table. floatType is the
// dialect's double precision type.
func createTableSQL(table, floatType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	fmt.Fprintf(&b, "\t%s TEXT NOT NULL", models.CompanyColumn)
	for _, col := range models.RatioFields() {
		fmt.Fprintf(&b, ",\n\t%s %s", col, floatType)
	}
	b.WriteString("\n)")
	return b.String()
}

// insertSQL returns a parameterized INSERT with positional placeholders
// produced by placeholder(i) for the 1-based column i.
func insertSQL(table string, placeholder func(i int) string) string {
	cols := models.RatioColumns()
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// splitFragment splits "path#frag" into its parts.
func splitFragment(s string) (string, string) {
	if i := strings.LastIndexByte(s, '#'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
