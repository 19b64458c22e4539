package correct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

func TestConfusionMaps(t *testing.T) {
	assert.Equal(t, '0', LetterToDigit(vocab.FamilyDIN, 'O'))
	assert.Equal(t, '8', LetterToDigit(vocab.FamilyDIN, 'B'))
	assert.Equal(t, 'D', LetterToDigit(vocab.FamilyDIN, 'D'), "DIN map is narrow")
	assert.Equal(t, '0', LetterToDigit(vocab.FamilyJIS, 'D'))
	assert.Equal(t, '9', LetterToDigit(vocab.FamilyJIS, 'R'))
	assert.Equal(t, '7', LetterToDigit(vocab.FamilyJIS, 'Y'))
	assert.Equal(t, '7', LetterToDigit(vocab.FamilyJIS, 'G'), "JIS reads G as 7")
	assert.Equal(t, '6', LetterToDigit(vocab.FamilyDIN, 'G'), "DIN reads G as 6")
	assert.Equal(t, 'X', LetterToDigit(vocab.FamilyJIS, 'X'))

	assert.Equal(t, 'D', DigitToLetter('0'))
	assert.Equal(t, 'A', DigitToLetter('4'))
	assert.Equal(t, 'B', DigitToLetter('8'))
	assert.Equal(t, 'Q', DigitToLetter('Q'))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "55D23L(S)", CleanJIS(" 55d23-l (s) "))
	assert.Equal(t, "55D23L", CleanJIS("５５Ｄ２３Ｌ"), "full-width digits fold to ASCII")
	assert.Equal(t, "LN4 776A ISS", CleanDIN("  ln4\t776a--  iss "))
	assert.Equal(t, "", CleanDIN("...."))
}

func TestJISCorrector(t *testing.T) {
	c := JIS()
	tests := []struct {
		name string
		in   string
		want string
		rule string
	}{
		{"digit at letter slot", "55023L", "55D23L", "positional-split"},
		{"canonical", "26A17R(S)", "26A17R(S)", "positional-split"},
		{"three digit capacity", "105D31R", "105D31R", "positional-split"},
		{"capacity misreads", "S5D23", "55D23", "positional-split"},
		{"size misreads", "55D2E", "55D23", "positional-split"},
		{"option (5)", "55D23L(5)", "55D23L(S)", "positional-split"},
		{"option 5)", "55D23L5)", "55D23L(S)", "positional-split"},
		{"unclosed option", "55D23L(S", "55D23L(S)", "positional-split"},
		{"coerced letter at index 3", "105031", "105D31", "positional-split"},
		{"two digit size preferred", "13DE41", "130E41", "positional-split"},
		{"terminal misread after size", "55D23I", "55D23L", "positional-split"},
		{"terminal L read as 1", "26A171", "26A17L", "positional-split"},
		{"terminal R read as 9 before option", "26A179(S)", "26A17R(S)", "positional-split"},
		{"lowercase and punctuation", "55-d-23 r", "55D23R", "positional-split"},
		{"garbage", "XYZ123", "XYZ123", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Explain(tt.in)
			assert.Equal(t, tt.want, res.Output)
			assert.Equal(t, tt.rule, res.Rule)
		})
	}
}

func TestJISShapeRegexFallback(t *testing.T) {
	out, ok := jisShapeRegex("55D23L(S)")
	require.True(t, ok)
	assert.Equal(t, "55D23L(S)", out)

	out, ok = jisShapeRegex("55023R")
	require.True(t, ok)
	assert.Equal(t, "55D23R", out)

	_, ok = jisShapeRegex("5")
	assert.False(t, ok)
}

func TestJISTerminalGluedToSize(t *testing.T) {
	size, term, ok := jisSize("23L", 0)
	require.True(t, ok)
	assert.Equal(t, "23", size)
	assert.Equal(t, 'L', term)

	size, term, ok = jisSize("23L", 'R')
	require.True(t, ok)
	assert.Equal(t, "231", size, "terminal already captured, L reads as 1")
	assert.Equal(t, 'R', term)

	size, term, ok = jisSize("179", 0)
	require.True(t, ok)
	assert.Equal(t, "17", size)
	assert.Equal(t, 'R', term)

	size, term, ok = jisSize("171", 'L')
	require.True(t, ok)
	assert.Equal(t, "171", size, "terminal already captured, digits stay in the size")
	assert.Equal(t, 'L', term)
}

func TestDINCorrector(t *testing.T) {
	c := DIN()
	tests := []struct {
		name string
		in   string
		want string
		rule string
	}{
		{"token prefix H to N", "LH3 6OOA", "LN3 600A", "tokens"},
		{"reversed", "650LN4", "650LN4", "reversed"},
		{"reversed noisy capacity", "6S0LN4", "650LN4", "reversed"},
		{"reversed IN prefix", "650IN4", "650LN4", "reversed"},
		{"reversed LH prefix", "1000 LH6", "1000LN6", "reversed"},
		{"iss misread", "LN4 776A I55", "LN4 776A ISS", "forward-iss"},
		{"iss other misread", "LN4 776A 1SS", "LN4 776A ISS", "forward-iss"},
		{"forward", "LN0 25OA", "LN0 250A", "forward"},
		{"forward unit 4", "LN4 6504", "LN4 650A", "forward"},
		{"LN digit pre-pass", "LNO 250A", "LN0 250A", "forward"},
		{"LN digit pre-pass at end", "LNS", "LN5", "tokens"},
		{"split prefix", "L N4 650A", "LN4 650A", "forward"},
		{"split prefix digit", "LN 4 650A", "LN4 650A", "forward"},
		{"LBN canonical", "LBN 1", "LBN 1", "tokens"},
		{"LBN glued", "LBN2", "LBN 2", "tokens"},
		{"LBN glued misread", "LBNZ", "LBN 2", "tokens"},
		{"L B N spaced", "L B N 3", "LBN 3", "tokens"},
		{"prefix 1 to L", "1N3", "LN3", "tokens"},
		{"glued capacity", "LN3600A", "LN3 600A", "tokens"},
		{"iss fuzzy", "LN4 776A IS", "LN4 776A ISS", "tokens"},
		{"empty", "", "", "tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Explain(tt.in)
			assert.Equal(t, tt.want, res.Output)
			assert.Equal(t, tt.rule, res.Rule)
		})
	}
}

func TestDINCapacityFloor(t *testing.T) {
	assert.Equal(t, "650", dinCapacity("65O"))
	assert.Equal(t, "650", dinCapacity("6X5O"), "letters stripped")
	assert.Equal(t, "XA5", dinCapacity("XA5"), "fewer than two digits keeps the corrected span")
}

func TestDINMarkerToken(t *testing.T) {
	for _, tok := range []string{"ISS", "I55", "IS5", "I5S", "155", "1SS", "ISSS", "IS"} {
		assert.Equal(t, "ISS", dinMarkerToken(tok), tok)
	}
	assert.Equal(t, "XYZ", dinMarkerToken("XYZ"))
}

func TestForFamily(t *testing.T) {
	assert.Equal(t, vocab.FamilyJIS, For(vocab.FamilyJIS).Family())
	assert.Equal(t, vocab.FamilyDIN, For(vocab.FamilyDIN).Family())
	assert.Nil(t, For(vocab.FamilyNone))
	assert.Equal(t, []string{"reversed", "forward-iss", "forward", "tokens"}, DIN().Rules())
}
