package correct

import "github.com/Sigitfad/ocr-reader/internal/vocab"

// dinLetterToDigit covers the confusions seen on DIN capacity digits.
var dinLetterToDigit = map[rune]rune{
	'O': '0', 'Q': '0',
	'I': '1', 'L': '1',
	'Z': '2',
	'S': '5',
	'G': '6',
	'B': '8',
}

// jisLetterToDigit is broader: JIS capacity and size spans never hold letters.
var jisLetterToDigit = map[rune]rune{
	'O': '0', 'Q': '0', 'D': '0', 'U': '0', 'C': '0',
	'I': '1', 'L': '1', 'J': '1',
	'Z': '2',
	'E': '3',
	'A': '4', 'H': '4',
	'S': '5',
	'G': '7', 'T': '7', 'Y': '7',
	'B': '8',
	'P': '9', 'R': '9',
}

// digitToLetter is only applied where a letter is structurally required.
var digitToLetter = map[rune]rune{
	'0': 'D',
	'1': 'L',
	'2': 'Z',
	'3': 'B',
	'4': 'A',
	'5': 'S',
	'6': 'G',
	'7': 'T',
	'8': 'B',
	'9': 'R',
}

// LetterToDigit maps a visually confusable letter to the digit it was
// probably meant to be. Unknown runes are returned unchanged.
func LetterToDigit(f vocab.Family, r rune) rune {
	m := dinLetterToDigit
	if f == vocab.FamilyJIS {
		m = jisLetterToDigit
	}
	if d, ok := m[r]; ok {
		return d
	}
	return r
}

// DigitToLetter maps a digit to the letter it is most often mistaken for.
// Unknown runes are returned unchanged.
func DigitToLetter(r rune) rune {
	if l, ok := digitToLetter[r]; ok {
		return l
	}
	return r
}

// digitsOf applies LetterToDigit to every rune of s.
func digitsOf(f vocab.Family, s string) string {
	out := []rune(s)
	for i, r := range out {
		out[i] = LetterToDigit(f, r)
	}
	return string(out)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}
