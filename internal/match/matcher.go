// Package match finds the vocabulary entry closest to a corrected OCR
// candidate and classifies codes by family.
package match

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// Result is the outcome of matching one candidate. An empty Code means no
// entry cleared its threshold.
type Result struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// Found reports whether a vocabulary entry was matched.
func (r Result) Found() bool { return r.Code != "" }

// Ratio is the similarity of a and b in [0,1]: twice the number of matched
// characters over the combined length, using the same matching-block
// algorithm as difflib's SequenceMatcher.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Thresholds holds the acceptance cut-offs of a matcher.
type Thresholds struct {
	// Fuzzy returns the minimum score for a fuzzy match of the normalized
	// candidate.
	Fuzzy func(candidate string) float64
	// SuffixRetryBelow triggers the suffix-stripped pass when the best score
	// so far is lower.
	SuffixRetryBelow float64
	// Suffix is the minimum score of a suffix-stripped comparison.
	Suffix float64
}

// Matcher compares candidates against one vocabulary. It is safe for
// concurrent use.
type Matcher struct {
	vocab      *vocab.Vocabulary
	keys       []string
	suffix     string // optional suffix token, in key form
	suffixJoin string // separator used when re-appending the suffix to an entry
	thresholds Thresholds
	reversed   *regexp.Regexp // last-resort exact sweep shape, nil to disable
}

// Option customises a Matcher.
type Option func(*Matcher)

// WithThresholds replaces the matcher thresholds.
func WithThresholds(t Thresholds) Option {
	return func(m *Matcher) { m.thresholds = t }
}

// New builds a matcher over v with the given optional suffix. joiner is
// placed between an entry and the suffix when probing for a suffixed entry.
func New(v *vocab.Vocabulary, suffix, joiner string, t Thresholds, opts ...Option) *Matcher {
	m := &Matcher{
		vocab:      v,
		suffix:     vocab.Key(suffix),
		suffixJoin: joiner,
		thresholds: t,
	}
	m.keys = make([]string, len(v.Entries()))
	for i, e := range v.Entries() {
		m.keys[i] = vocab.Key(e)
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Matcher) stripSuffix(key string) (string, bool) {
	if m.suffix == "" || !strings.HasSuffix(key, m.suffix) || len(key) == len(m.suffix) {
		return key, false
	}
	return strings.TrimSuffix(key, m.suffix), true
}

// Match returns the best vocabulary entry for candidate. Entry 0 (the
// sentinel) is never considered. Equal scores keep the earliest entry.
func (m *Matcher) Match(candidate string) Result {
	cand := vocab.Key(candidate)
	if cand == "" {
		return Result{}
	}
	entries := m.vocab.Entries()
	threshold := m.thresholds.Fuzzy(cand)

	var best Result
	for i := 1; i < len(entries); i++ {
		if m.keys[i] == cand {
			return Result{Code: entries[i], Score: 1.0}
		}
		if r := Ratio(cand, m.keys[i]); r >= threshold && r > best.Score {
			best = Result{Code: entries[i], Score: r}
		}
	}

	if best.Score < m.thresholds.SuffixRetryBelow {
		best = m.matchStripped(cand, best)
	}

	if !best.Found() && m.reversed != nil && m.reversed.MatchString(cand) {
		for i := 1; i < len(entries); i++ {
			if m.keys[i] == cand {
				return Result{Code: entries[i], Score: 1.0}
			}
		}
	}
	return best
}

// matchStripped compares candidate and entries with the optional suffix
// removed from both. A suffix is never invented: a candidate without it
// cannot match a suffixed entry here, and a suffixed candidate only matches
// an unsuffixed entry when entry+suffix itself exists.
func (m *Matcher) matchStripped(cand string, best Result) Result {
	candBase, candHas := m.stripSuffix(cand)
	if !candHas {
		return best
	}
	entries := m.vocab.Entries()
	for i := 1; i < len(entries); i++ {
		entryBase, entryHas := m.stripSuffix(m.keys[i])
		r := Ratio(candBase, entryBase)
		if r < m.thresholds.Suffix || r <= best.Score {
			continue
		}
		if entryHas {
			best = Result{Code: entries[i], Score: r}
			continue
		}
		withSuffix := entries[i] + m.suffixJoin + m.suffix
		if code, ok := m.lookup(withSuffix); ok {
			best = Result{Code: code, Score: r}
		}
	}
	return best
}

// lookup returns the canonical spelling of code if it is in the vocabulary.
func (m *Matcher) lookup(code string) (string, bool) {
	key := vocab.Key(code)
	entries := m.vocab.Entries()
	for i := 1; i < len(entries); i++ {
		if m.keys[i] == key {
			return entries[i], true
		}
	}
	return "", false
}
