package match

import (
	"regexp"

	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

var (
	jisCode = regexp.MustCompile(`^\d{2,3}[A-H]\d{2,3}[LR]?(\(S\))?$`)

	dinShapes = []*regexp.Regexp{
		regexp.MustCompile(`^LBN\d$`),
		regexp.MustCompile(`^LN[0-6]$`),
		regexp.MustCompile(`^LN[0-6]\d{2,5}[A-Z]?$`),
		regexp.MustCompile(`^LN[0-6]\d{2,5}[A-Z]?ISS$`),
		regexp.MustCompile(`^\d{2,5}LN[0-6]$`),
	}
)

// Classifier decides which family a code belongs to.
type Classifier struct {
	din *vocab.Vocabulary
}

// NewClassifier returns a classifier that also accepts any entry of din.
func NewClassifier(din *vocab.Vocabulary) *Classifier {
	return &Classifier{din: din}
}

// Classify returns the family of code, or vocab.FamilyNone. Spaces and
// case are ignored.
func (c *Classifier) Classify(code string) vocab.Family {
	key := vocab.Key(code)
	if key == "" {
		return vocab.FamilyNone
	}
	if jisCode.MatchString(key) {
		return vocab.FamilyJIS
	}
	if c.din != nil && c.din.Contains(key) {
		return vocab.FamilyDIN
	}
	for _, re := range dinShapes {
		if re.MatchString(key) {
			return vocab.FamilyDIN
		}
	}
	return vocab.FamilyNone
}
