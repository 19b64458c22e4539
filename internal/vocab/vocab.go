// Package vocab holds the closed lists of valid battery codes for the JIS and
// DIN families.
package vocab

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Family identifies a battery-code standard.
type Family string

const (
	FamilyNone Family = ""
	FamilyJIS  Family = "JIS"
	FamilyDIN  Family = "DIN"
)

// ErrEmptyVocabulary is returned when a vocabulary has no entries besides the sentinel.
var ErrEmptyVocabulary = errors.New("vocabulary has no codes")

// ParseFamily parses a family name case-insensitively.
func ParseFamily(s string) (Family, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(FamilyJIS):
		return FamilyJIS, nil
	case string(FamilyDIN):
		return FamilyDIN, nil
	default:
		return FamilyNone, fmt.Errorf("unknown code family %q (want JIS or DIN)", s)
	}
}

func (f Family) String() string {
	if f == FamilyNone {
		return "none"
	}
	return string(f)
}

// Vocabulary is an ordered, read-only list of canonical codes. Index 0 is
// always the Sentinel.
type Vocabulary struct {
	family  Family
	entries []string
	keys    map[string]struct{}
}

// New builds a vocabulary from codes. The sentinel is prepended when the
// first element is not already the sentinel.
func New(family Family, codes []string) (*Vocabulary, error) {
	entries := make([]string, 0, len(codes)+1)
	entries = append(entries, Sentinel)
	for i, c := range codes {
		if i == 0 && c == Sentinel {
			continue
		}
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		entries = append(entries, c)
	}
	if len(entries) < 2 {
		return nil, fmt.Errorf("%s: %w", family, ErrEmptyVocabulary)
	}
	v := &Vocabulary{family: family, entries: entries, keys: make(map[string]struct{}, len(entries))}
	for _, e := range entries[1:] {
		v.keys[Key(e)] = struct{}{}
	}
	return v, nil
}

// Key is the comparison key of a code: spaces removed, upper-cased.
func Key(code string) string {
	return strings.ToUpper(strings.ReplaceAll(code, " ", ""))
}

// Family returns the family this vocabulary belongs to.
func (v *Vocabulary) Family() Family { return v.family }

// Codes returns the match targets in order, excluding the sentinel.
func (v *Vocabulary) Codes() []string { return v.entries[1:] }

// Entries returns every entry including the sentinel at index 0.
func (v *Vocabulary) Entries() []string { return v.entries }

// Len returns the number of match targets.
func (v *Vocabulary) Len() int { return len(v.entries) - 1 }

// Contains reports whether code equals an entry, ignoring spaces and case.
func (v *Vocabulary) Contains(code string) bool {
	_, ok := v.keys[Key(code)]
	return ok
}

// JIS returns the built-in JIS vocabulary.
func JIS() *Vocabulary { return mustNew(FamilyJIS, jisCodes) }

// DIN returns the built-in DIN vocabulary.
func DIN() *Vocabulary { return mustNew(FamilyDIN, dinCodes) }

func mustNew(f Family, codes []string) *Vocabulary {
	v, err := New(f, codes)
	if err != nil {
		panic(err)
	}
	return v
}

// Set pairs the vocabularies of both families.
type Set struct {
	JIS *Vocabulary
	DIN *Vocabulary
}

// Builtin returns the compiled-in vocabularies.
func Builtin() Set {
	return Set{JIS: JIS(), DIN: DIN()}
}

// For returns the vocabulary of family f, or nil.
func (s Set) For(f Family) *Vocabulary {
	switch f {
	case FamilyJIS:
		return s.JIS
	case FamilyDIN:
		return s.DIN
	default:
		return nil
	}
}

type fileFormat struct {
	JIS []string `yaml:"jis"`
	DIN []string `yaml:"din"`
}

// LoadFile reads a YAML file with "jis" and "din" lists. A family missing
// from the file keeps its built-in list.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read vocabulary file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML vocabulary data. See LoadFile.
func Parse(data []byte) (Set, error) {
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return Set{}, fmt.Errorf("parse vocabulary file: %w", err)
	}
	set := Builtin()
	if ff.JIS != nil {
		v, err := New(FamilyJIS, ff.JIS)
		if err != nil {
			return Set{}, err
		}
		set.JIS = v
	}
	if ff.DIN != nil {
		v, err := New(FamilyDIN, ff.DIN)
		if err != nil {
			return Set{}, err
		}
		set.DIN = v
	}
	return set, nil
}
