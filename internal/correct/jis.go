package correct

import (
	"regexp"
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

const jisOption = "(S)"

var jisShape = regexp.MustCompile(`^([0-9A-Z]{2,3}?)([0-9A-Z])([0-9A-Z]{2,3})([LR])?(\(S\))?$`)

// JIS returns the corrector for capacity + letter + size + terminal + option
// codes such as 55D23L or 26A17R(S).
func JIS() *Corrector {
	return &Corrector{
		family: vocab.FamilyJIS,
		clean:  CleanJIS,
		pre:    []func(string) string{normalizeJISOption},
		rules: []Rule{
			{Name: "positional-split", Apply: jisPositionalSplit},
			{Name: "shape-regex", Apply: jisShapeRegex},
		},
	}
}

// normalizeJISOption turns the usual misreads of "(S)" into "(S)".
func normalizeJISOption(s string) string {
	s = strings.ReplaceAll(s, "(5)", jisOption)
	s = strings.ReplaceAll(s, "5)", jisOption)
	switch {
	case strings.HasSuffix(s, "(S"), strings.HasSuffix(s, "(5"):
		s = s[:len(s)-2] + jisOption
	case strings.HasSuffix(s, "S)") && !strings.HasSuffix(s, jisOption):
		s = s[:len(s)-2] + jisOption
	}
	return s
}

type jisParts struct {
	capacity string
	letter   rune
	size     string
	terminal rune
	option   string
	// digitTerminal is set when a trailing size digit was read as the
	// terminal.
	digitTerminal bool
}

func (p jisParts) String() string {
	var b strings.Builder
	b.WriteString(p.capacity)
	b.WriteRune(p.letter)
	b.WriteString(p.size)
	if p.terminal != 0 {
		b.WriteRune(p.terminal)
	}
	b.WriteString(p.option)
	return b.String()
}

func isFamilyLetter(r rune) bool { return r >= 'A' && r <= 'H' }

// familyLetter resolves the rune at the family-letter slot. Without coerce
// only genuine A-H letters qualify; with coerce digits (and letters that
// read as digits) are mapped through DigitToLetter.
func familyLetter(r rune, coerce bool) (rune, bool) {
	if !coerce {
		return r, isFamilyLetter(r)
	}
	if isFamilyLetter(r) {
		return 0, false
	}
	d := r
	if !isDigit(d) {
		d = LetterToDigit(vocab.FamilyJIS, r)
		if !isDigit(d) {
			return 0, false
		}
	}
	l := DigitToLetter(d)
	return l, isFamilyLetter(l)
}

// terminalMisreads are runes that, trailing a three-character size span,
// stand for a terminal rather than a size digit. 1 and 9 are the digits L
// and R are read as.
var terminalMisreads = map[rune]rune{
	'L': 'L', 'I': 'L', 'J': 'L', '1': 'L',
	'R': 'R', 'Q': 'R', 'D': 'R', 'O': 'R', '9': 'R',
}

// jisSize digit-corrects a size span. A terminal glued onto the end of the
// span is moved to the terminal slot when that slot is still empty.
func jisSize(span string, terminal rune) (string, rune, bool) {
	if terminal == 0 && len(span) == 3 {
		if t, ok := terminalMisreads[rune(span[2])]; ok {
			span = span[:2]
			terminal = t
		}
	}
	size := digitsOf(vocab.FamilyJIS, span)
	if len(size) < 2 || len(size) > 3 || !allDigits(size) {
		return "", terminal, false
	}
	return size, terminal, true
}

func jisCapacity(span string) (string, bool) {
	c := digitsOf(vocab.FamilyJIS, span)
	return c, len(c) >= 2 && len(c) <= 3 && allDigits(c)
}

// splitJISOption peels "(S)" and then an L/R terminal off the end of s.
func splitJISOption(s string) (middle string, terminal rune, option string) {
	middle = s
	if strings.HasSuffix(middle, jisOption) {
		option = jisOption
		middle = strings.TrimSuffix(middle, jisOption)
	}
	middle = strings.NewReplacer("(", "", ")", "").Replace(middle)
	if n := len(middle); n >= 6 && (middle[n-1] == 'L' || middle[n-1] == 'R') {
		terminal = rune(middle[n-1])
		middle = middle[:n-1]
	}
	return middle, terminal, option
}

// jisPositionalSplit looks for the family letter at index 2 or 3 of the
// middle span. Genuine letters are tried before coerced digits. Within a
// pass a two-digit size wins over a three-digit one, and a split that kept
// its size digits wins over one that moved a digit into the terminal slot.
func jisPositionalSplit(s string) (string, bool) {
	middle, terminal, option := splitJISOption(s)
	for _, coerce := range []bool{false, true} {
		var found []jisParts
		for _, idx := range []int{2, 3} {
			if idx >= len(middle) {
				continue
			}
			letter, ok := familyLetter(rune(middle[idx]), coerce)
			if !ok {
				continue
			}
			capacity, ok := jisCapacity(middle[:idx])
			if !ok {
				continue
			}
			span := middle[idx+1:]
			size, term, ok := jisSize(span, terminal)
			if !ok {
				continue
			}
			found = append(found, jisParts{
				capacity: capacity, letter: letter, size: size, terminal: term, option: option,
				digitTerminal: terminal == 0 && term != 0 && isDigit(rune(span[len(span)-1])),
			})
		}
		for _, p := range found {
			if len(p.size) == 2 && !p.digitTerminal {
				return p.String(), true
			}
		}
		for _, p := range found {
			if len(p.size) == 2 {
				return p.String(), true
			}
		}
		if len(found) > 0 {
			return found[0].String(), true
		}
	}
	return "", false
}

// jisShapeRegex matches the canonical shape directly on the unsplit text.
func jisShapeRegex(s string) (string, bool) {
	m := jisShape.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	capacity, ok := jisCapacity(m[1])
	if !ok {
		return "", false
	}
	r := rune(m[2][0])
	letter, ok := familyLetter(r, false)
	if !ok {
		if letter, ok = familyLetter(r, true); !ok {
			return "", false
		}
	}
	var terminal rune
	if m[4] != "" {
		terminal = rune(m[4][0])
	}
	size, terminal, ok := jisSize(m[3], terminal)
	if !ok {
		return "", false
	}
	return jisParts{capacity: capacity, letter: letter, size: size, terminal: terminal, option: m[5]}.String(), true
}
