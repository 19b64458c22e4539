package match

import (
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/correct"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// Minimum candidate lengths; shorter reads are too ambiguous to match.
const (
	minDINLength = 3
	minJISLength = 5
)

// Candidate is one corrected OCR read and its match.
type Candidate struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Rule      string `json:"rule,omitempty"`
	Result
}

// Resolver chains a family's structural corrector and matcher.
type Resolver struct {
	family    vocab.Family
	corrector *correct.Corrector
	matcher   *Matcher
}

// NewResolver returns the resolver for the family of v.
func NewResolver(v *vocab.Vocabulary, p Params) *Resolver {
	return &Resolver{
		family:    v.Family(),
		corrector: correct.For(v.Family()),
		matcher:   NewFor(v, p),
	}
}

// Family returns the resolver's family.
func (r *Resolver) Family() vocab.Family { return r.family }

// Eligible reports whether a corrected candidate is long enough to match.
func (r *Resolver) Eligible(corrected string) bool {
	key := vocab.Key(corrected)
	if r.family == vocab.FamilyJIS {
		return len(strings.ReplaceAll(key, "(S)", "")) >= minJISLength
	}
	return len(key) >= minDINLength
}

// Resolve corrects raw and matches it. ok is false when the corrected text
// is too short to be considered.
func (r *Resolver) Resolve(raw string) (c Candidate, ok bool) {
	res := r.corrector.Explain(raw)
	c = Candidate{Original: raw, Corrected: res.Output, Rule: res.Rule}
	if !r.Eligible(res.Output) {
		return c, false
	}
	c.Result = r.matcher.Match(res.Output)
	return c, true
}
