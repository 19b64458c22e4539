package correct

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// fold maps full-width and compatibility forms (common in camera OCR of
// printed labels) onto plain ASCII before filtering.
func fold(s string) string {
	return strings.ToUpper(norm.NFKC.String(width.Fold.String(strings.TrimSpace(s))))
}

// CleanJIS upper-cases s and drops everything except A-Z, 0-9 and parentheses.
func CleanJIS(s string) string {
	var b strings.Builder
	for _, r := range fold(s) {
		if isUpper(r) || isDigit(r) || r == '(' || r == ')' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanDIN upper-cases s, drops everything except A-Z, 0-9 and whitespace,
// and collapses runs of whitespace to a single space.
func CleanDIN(s string) string {
	var b strings.Builder
	for _, r := range fold(s) {
		switch {
		case isUpper(r) || isDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
