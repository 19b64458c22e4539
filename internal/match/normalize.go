package match

import (
	"regexp"
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

var (
	dinNormReversed = regexp.MustCompile(`^\d+[A-Z]?LN\d$`)
	dinNormLBN      = regexp.MustCompile(`^LBN(\d)$`)
	dinNormLN       = regexp.MustCompile(`^LN\d$`)
	dinNormISS      = regexp.MustCompile(`^(LN\d)(\d+)([A-Z])ISS$`)
	dinNormUnit     = regexp.MustCompile(`^(LN\d)(\d+)([A-Z])$`)
	dinNormDigits   = regexp.MustCompile(`^(LN\d)(\d+)$`)
	spaceRun        = regexp.MustCompile(`\s+`)
	issGlued        = regexp.MustCompile(`([A-Z0-9])ISS$`)
)

// NormalizeDIN returns code in canonical DIN spacing ("LN4 776A ISS",
// "LBN 1", "650LN4").
func NormalizeDIN(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	key := vocab.Key(upper)
	switch {
	case dinNormReversed.MatchString(key), dinNormLN.MatchString(key):
		return key
	}
	if m := dinNormLBN.FindStringSubmatch(key); m != nil {
		return "LBN " + m[1]
	}
	if m := dinNormISS.FindStringSubmatch(key); m != nil {
		return m[1] + " " + m[2] + m[3] + " ISS"
	}
	if m := dinNormUnit.FindStringSubmatch(key); m != nil {
		return m[1] + " " + m[2] + m[3]
	}
	if m := dinNormDigits.FindStringSubmatch(key); m != nil {
		return m[1] + " " + m[2]
	}
	s := spaceRun.ReplaceAllString(upper, " ")
	return issGlued.ReplaceAllString(s, "$1 ISS")
}

// NormalizeJIS removes whitespace and upper-cases code.
func NormalizeJIS(code string) string {
	return vocab.Key(code)
}

// Normalize applies the family's normalization.
func Normalize(f vocab.Family, code string) string {
	if f == vocab.FamilyDIN {
		return NormalizeDIN(code)
	}
	return NormalizeJIS(code)
}

// SameCode reports whether two codes are the same label for family f. DIN
// comparison is case-insensitive on the normalized form; JIS compares the
// normalized forms exactly.
func SameCode(f vocab.Family, a, b string) bool {
	if f == vocab.FamilyDIN {
		return strings.EqualFold(NormalizeDIN(a), NormalizeDIN(b))
	}
	return NormalizeJIS(a) == NormalizeJIS(b)
}
