package utils

import (
	"strings"
	"unicode"
)

// Common company aliases and normalizations.
var companyAliases = map[string]string{
	"GOOG":      "GOOGLE",
	"GOOGL":     "GOOGLE",
	"ALPHABET":  "GOOGLE",
	"MSFT":      "MICROSOFT",
	"AAPL":      "APPLE",
	"AMZN":      "AMAZON",
	"META":      "META",
	"FB":        "META",
	"FACEBOOK":  "META",
	"NVDA":      "NVIDIA",
	"TSLA":      "TESLA",
	"BRK.B":     "BERKSHIRE",
	"BRK-B":     "BERKSHIRE",
	"BERKSHIRE": "BERKSHIRE",
}

// NormalizeCompany normalizes a user-input company identifier to the
// uppercase form used in statement file names. It handles aliases,
// surrounding whitespace and a leading "$".
func NormalizeCompany(company string) string {
	company = strings.TrimSpace(strings.ToUpper(company))
	company = strings.TrimPrefix(company, "$")

	if canonical, ok := companyAliases[company]; ok {
		return canonical
	}
	return company
}

// CompanySlug returns the lowercase, path-safe directory name for company.
// e.g., "Berkshire Hathaway" -> "berkshire_hathaway"
func CompanySlug(company string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(NormalizeCompany(company)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// IsValidCompany reports whether company normalizes to a usable identifier.
// Companies are spliced into statement file names, so path separators and
// ".." are rejected.
func IsValidCompany(company string) bool {
	if strings.ContainsAny(company, `/\`) || strings.Contains(company, "..") {
		return false
	}
	return CompanySlug(company) != ""
}
