package match

import (
	"regexp"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// Params are the tunable score thresholds of both family matchers.
type Params struct {
	JIS              float64 `mapstructure:"jis_threshold" yaml:"jis_threshold" json:"jis_threshold"`
	DIN              float64 `mapstructure:"din_threshold" yaml:"din_threshold" json:"din_threshold"`
	Short            float64 `mapstructure:"short_threshold" yaml:"short_threshold" json:"short_threshold"`
	LN               float64 `mapstructure:"ln_threshold" yaml:"ln_threshold" json:"ln_threshold"`
	SuffixRetryBelow float64 `mapstructure:"suffix_retry_below" yaml:"suffix_retry_below" json:"suffix_retry_below"`
	DINSuffix        float64 `mapstructure:"din_suffix_threshold" yaml:"din_suffix_threshold" json:"din_suffix_threshold"`
	JISSuffix        float64 `mapstructure:"jis_suffix_threshold" yaml:"jis_suffix_threshold" json:"jis_suffix_threshold"`
}

// DefaultParams returns the thresholds tuned on production label images.
func DefaultParams() Params {
	return Params{
		JIS:              0.85,
		DIN:              0.82,
		Short:            0.75,
		LN:               0.70,
		SuffixRetryBelow: 0.90,
		DINSuffix:        0.88,
		JISSuffix:        0.90,
	}
}

const shortCandidate = 4

var (
	lnPrefixed     = regexp.MustCompile(`^LN[0-6]`)
	lnSuffixed     = regexp.MustCompile(`LN[0-6]$`)
	reversedDINKey = regexp.MustCompile(`^\d+LN[0-6]$`)
)

// DINThreshold returns the adaptive fuzzy threshold for a normalized DIN
// candidate.
func (p Params) DINThreshold(cand string) float64 {
	switch {
	case len(cand) <= shortCandidate:
		return p.Short
	case lnPrefixed.MatchString(cand) || lnSuffixed.MatchString(cand):
		return p.LN
	default:
		return p.DIN
	}
}

// JISThreshold returns the fixed JIS fuzzy threshold.
func (p Params) JISThreshold(string) float64 { return p.JIS }

// NewJIS returns the matcher for JIS codes; its optional suffix is "(S)".
func NewJIS(v *vocab.Vocabulary, p Params) *Matcher {
	return New(v, "(S)", "", Thresholds{
		Fuzzy:            p.JISThreshold,
		SuffixRetryBelow: p.SuffixRetryBelow,
		Suffix:           p.JISSuffix,
	})
}

// NewDIN returns the matcher for DIN codes; its optional suffix is "ISS".
// Reversed candidates get a final exact sweep.
func NewDIN(v *vocab.Vocabulary, p Params) *Matcher {
	m := New(v, "ISS", " ", Thresholds{
		Fuzzy:            p.DINThreshold,
		SuffixRetryBelow: p.SuffixRetryBelow,
		Suffix:           p.DINSuffix,
	})
	m.reversed = reversedDINKey
	return m
}

// NewFor returns the matcher for the family of v.
func NewFor(v *vocab.Vocabulary, p Params) *Matcher {
	if v.Family() == vocab.FamilyDIN {
		return NewDIN(v, p)
	}
	return NewJIS(v, p)
}
