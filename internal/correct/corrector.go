// Package correct rewrites noisy OCR text into the canonical shape of a
// battery-code family. Correctors never fail: when no rule applies the
// cleaned input is returned.
package correct

import "github.com/Sigitfad/ocr-reader/internal/vocab"

// Rule is one named structural rewrite. Apply reports whether the rule
// recognised its shape; the first rule that does wins.
type Rule struct {
	Name  string
	Apply func(s string) (string, bool)
}

// Corrector runs a cleaning step, a list of pre-pass rewrites and then an
// ordered rule list.
type Corrector struct {
	family vocab.Family
	clean  func(string) string
	pre    []func(string) string
	rules  []Rule
}

// Result describes how a correction was produced.
type Result struct {
	Input   string
	Cleaned string
	Output  string
	Rule    string // empty when no rule matched
}

// Family returns the code family this corrector targets.
func (c *Corrector) Family() vocab.Family { return c.family }

// Rules returns the rule names in priority order.
func (c *Corrector) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Correct returns the best-effort canonical form of raw.
func (c *Corrector) Correct(raw string) string {
	return c.Explain(raw).Output
}

// Explain is Correct plus the name of the rule that fired.
func (c *Corrector) Explain(raw string) Result {
	res := Result{Input: raw}
	res.Cleaned = c.clean(raw)
	s := res.Cleaned
	for _, p := range c.pre {
		s = p(s)
	}
	for _, r := range c.rules {
		if out, ok := r.Apply(s); ok {
			res.Output = out
			res.Rule = r.Name
			return res
		}
	}
	res.Output = res.Cleaned
	return res
}

// For returns the corrector for family f, or nil for an unknown family.
func For(f vocab.Family) *Corrector {
	switch f {
	case vocab.FamilyJIS:
		return JIS()
	case vocab.FamilyDIN:
		return DIN()
	default:
		return nil
	}
}
