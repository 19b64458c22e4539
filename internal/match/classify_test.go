package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

func TestClassifierClosure(t *testing.T) {
	set := vocab.Builtin()
	c := NewClassifier(set.DIN)
	for _, code := range set.JIS.Codes() {
		assert.Equal(t, vocab.FamilyJIS, c.Classify(code), code)
	}
	for _, code := range set.DIN.Codes() {
		assert.Equal(t, vocab.FamilyDIN, c.Classify(code), code)
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(vocab.DIN())
	tests := []struct {
		code string
		want vocab.Family
	}{
		{"55D23L", vocab.FamilyJIS},
		{"145G51R(S)", vocab.FamilyJIS},
		{"55I23L", vocab.FamilyNone},
		{"LBN 7", vocab.FamilyDIN},
		{"LN7", vocab.FamilyNone},
		{"LN3 999B", vocab.FamilyDIN},
		{"LN3 999B ISS", vocab.FamilyDIN},
		{"12345LN0", vocab.FamilyDIN},
		{"XY2123", vocab.FamilyNone},
		{"", vocab.FamilyNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.code), tt.code)
	}

	bare := NewClassifier(nil)
	assert.Equal(t, vocab.FamilyDIN, bare.Classify("LN4 776A ISS"))
}

func TestNormalizeDIN(t *testing.T) {
	tests := map[string]string{
		"ln4 776a iss": "LN4 776A ISS",
		"LN4776AISS":   "LN4 776A ISS",
		"LBN1":         "LBN 1",
		"650 LN4":      "650LN4",
		"LN3600A":      "LN3 600A",
		"LN2 360":      "LN2 360",
		"LN5":          "LN5",
		"FOO   BAR":    "FOO BAR",
		"XISS":         "X ISS",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDIN(in), in)
	}
}

func TestSameCode(t *testing.T) {
	assert.True(t, SameCode(vocab.FamilyDIN, "LN4 776A ISS", "ln4776aiss"))
	assert.True(t, SameCode(vocab.FamilyDIN, "LBN1", "LBN 1"))
	assert.False(t, SameCode(vocab.FamilyDIN, "LN4", "LN5"))
	assert.True(t, SameCode(vocab.FamilyJIS, "55D23L", "55D23L"))
	assert.True(t, SameCode(vocab.FamilyJIS, "55D23L", " 55D23L"))
	assert.False(t, SameCode(vocab.FamilyJIS, "55D23L", "55D23R"))
	assert.Equal(t, "26A17L(S)", Normalize(vocab.FamilyJIS, "26A17L (S)"))
}
