package correct

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

const dinSuffix = "ISS"

var (
	dinSplitL   = regexp.MustCompile(`\bL\s+N\s*([0-6])\b`)
	dinSplitLN  = regexp.MustCompile(`\bLN\s+([0-6])\b`)
	dinSplitLBN = regexp.MustCompile(`\bL\s*B\s*N\b`)

	dinReversed   = regexp.MustCompile(`^([0-9A-Z]{2,5})\s*(?:LN|1N|IN|LH|LM)\s*([0-6])\s*$`)
	dinForwardISS = regexp.MustCompile(`^(LN[0-6])\s+([0-9A-Z]{2,5})([A-Z4])\s+(ISS|I55|IS5|I5S|155|1SS)\s*$`)
	dinForward    = regexp.MustCompile(`^(LN[0-6])\s+([0-9A-Z]{2,5})([A-Z4])\s*$`)

	dinGlueLBN = regexp.MustCompile(`^(LBN)(\d)`)
	dinGlueLN  = regexp.MustCompile(`^(LN[0-6])(\d)`)
	dinGlueISS = regexp.MustCompile(`([A-Z0-9])\s*(ISS)$`)
)

// issMisreads are the spellings of the ISS marker seen in practice.
var issMisreads = map[string]bool{
	"ISS": true, "I55": true, "IS5": true, "I5S": true, "155": true, "1SS": true,
}

// DIN returns the corrector for LBN n, LNx, LNx CCCu, LNx CCCu ISS and
// reversed CCCLNx codes.
func DIN() *Corrector {
	return &Corrector{
		family: vocab.FamilyDIN,
		clean:  CleanDIN,
		pre:    []func(string) string{fixLNDigit, collapseDINPrefix},
		rules: []Rule{
			{Name: "reversed", Apply: dinReversedRule},
			{Name: "forward-iss", Apply: dinForwardISSRule},
			{Name: "forward", Apply: dinForwardRule},
			{Name: "tokens", Apply: dinTokens},
		},
	}
}

// fixLNDigit rewrites "LN" followed by a confusable letter into LN + digit,
// but only when the letter ends the token or is followed by a digit.
func fixLNDigit(s string) string {
	b := []byte(s)
	for i := 0; i+2 < len(b); i++ {
		if b[i] != 'L' || b[i+1] != 'N' {
			continue
		}
		c := rune(b[i+2])
		d, ok := dinLetterToDigit[c]
		if !ok {
			continue
		}
		if next := i + 3; next == len(b) || b[next] == ' ' || isDigit(rune(b[next])) {
			b[i+2] = byte(d)
		}
	}
	return string(b)
}

// collapseDINPrefix removes stray spaces inside the LN/LBN prefix.
func collapseDINPrefix(s string) string {
	s = dinSplitL.ReplaceAllString(s, "LN$1")
	s = dinSplitLN.ReplaceAllString(s, "LN$1")
	return dinSplitLBN.ReplaceAllString(s, "LBN")
}

// dinCapacity digit-corrects a capacity span and strips leftover letters,
// falling back to the corrected span when fewer than two digits survive.
func dinCapacity(span string) string {
	corrected := digitsOf(vocab.FamilyDIN, span)
	var digits strings.Builder
	for _, r := range corrected {
		if isDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() >= 2 {
		return digits.String()
	}
	return corrected
}

func dinUnit(r string) string {
	if r == "4" {
		return "A"
	}
	return r
}

func dinReversedRule(s string) (string, bool) {
	m := dinReversed.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return dinCapacity(m[1]) + "LN" + m[2], true
}

func dinForwardISSRule(s string) (string, bool) {
	m := dinForwardISS.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + " " + digitsOf(vocab.FamilyDIN, m[2]) + dinUnit(m[3]) + " " + dinSuffix, true
}

func dinForwardRule(s string) (string, bool) {
	m := dinForward.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + " " + digitsOf(vocab.FamilyDIN, m[2]) + dinUnit(m[3]), true
}

// dinTokens is the catch-all: it corrects the prefix, capacity and marker
// tokens independently. It always succeeds.
func dinTokens(s string) (string, bool) {
	s = dinGlueLBN.ReplaceAllString(s, "$1 $2")
	s = dinGlueLN.ReplaceAllString(s, "$1 $2")
	s = dinGlueISS.ReplaceAllString(s, "$1 $2")

	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return "", true
	}
	out := make([]string, 0, len(tokens)+1)
	prefix, extra := dinPrefixToken(tokens[0])
	out = append(out, prefix)
	if extra != "" {
		out = append(out, extra)
	}
	for i, tok := range tokens[1:] {
		switch {
		case i == 0 && prefix == "LBN":
			out = append(out, digitsOf(vocab.FamilyDIN, tok))
		case i == 0:
			out = append(out, dinCapacityToken(tok))
		case i == 1:
			out = append(out, dinMarkerToken(tok))
		default:
			out = append(out, tok)
		}
	}
	return strings.Join(out, " "), true
}

// dinPrefixToken corrects LN/LBN prefixes position by position. "LBNx"
// with a glued size digit is split into "LBN" and the digit.
func dinPrefixToken(tok string) (string, string) {
	b := []rune(tok)
	for i, r := range b {
		switch i {
		case 0:
			if r == '1' || r == 'I' {
				b[i] = 'L'
			}
		case 1:
			switch r {
			case '8':
				b[i] = 'B'
			case 'H', 'M':
				b[i] = 'N'
			}
		case 2:
			if string(b[:2]) == "LB" {
				if r == 'H' || r == 'M' {
					b[i] = 'N'
				}
			} else {
				b[i] = LetterToDigit(vocab.FamilyDIN, r)
			}
		}
	}
	prefix := string(b)
	if len(b) == 4 && strings.HasPrefix(prefix, "LBN") {
		return "LBN", string(LetterToDigit(vocab.FamilyDIN, b[3]))
	}
	return prefix, ""
}

// dinCapacityToken digit-corrects every rune except a trailing unit letter.
func dinCapacityToken(tok string) string {
	b := []rune(tok)
	last := len(b) - 1
	for i, r := range b {
		switch {
		case isDigit(r):
			if i == last && r == '4' && len(b) >= 4 {
				b[i] = 'A'
			}
		case i == last && isUpper(r):
		default:
			b[i] = LetterToDigit(vocab.FamilyDIN, r)
		}
	}
	return string(b)
}

// dinMarkerToken normalizes anything that reads like ISS.
func dinMarkerToken(tok string) string {
	if issMisreads[tok] {
		return dinSuffix
	}
	norm := strings.NewReplacer("5", "S", "1", "I", "0", "O").Replace(tok)
	if norm == dinSuffix {
		return dinSuffix
	}
	m := difflib.NewMatcher(strings.Split(norm, ""), strings.Split(dinSuffix, ""))
	if m.Ratio() >= 0.8 {
		return dinSuffix
	}
	return tok
}
