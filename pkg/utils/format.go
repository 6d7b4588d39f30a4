// Package utils provides common formatting and identifier helpers for finratios.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NullText is printed for a missing value.
const NullText = "null"

// FormatNullable formats v with the given decimals, or NullText when nil.
func FormatNullable(v *float64, decimals int) string {
	if v == nil {
		return NullText
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// FormatRaw formats v with the shortest exact representation, or "" when nil.
// Used for CSV cells.
func FormatRaw(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// FormatAmount formats a number with thousands separators and two decimals.
// e.g., 1234567.891 -> "1,234,567.89"
func FormatAmount(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(s, ".")

	formatted := groupThousands(intPart) + "." + decPart
	if negative {
		return "-" + formatted
	}
	return formatted
}

// FormatCompact formats a number in compact notation.
// e.g., 1500000 -> "1.5M", 282836000000 -> "282.84B"
func FormatCompact(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := ""
	if negative {
		prefix = "-"
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%sT", prefix, formatWithDecimals(amount/1e12))
	case amount >= 1e9:
		return fmt.Sprintf("%s%sB", prefix, formatWithDecimals(amount/1e9))
	case amount >= 1e6:
		return fmt.Sprintf("%s%sM", prefix, formatWithDecimals(amount/1e6))
	case amount >= 1e3:
		return fmt.Sprintf("%s%sK", prefix, formatWithDecimals(amount/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPct formats a fraction as a percentage with sign and suffix.
// e.g., 0.0245 -> "+2.45%", -0.0123 -> "-1.23%"
func FormatPct(fraction float64) string {
	pct := fraction * 100
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatWithDecimals drops trailing zeros: 1.50 -> "1.5", 2.00 -> "2".
func formatWithDecimals(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
