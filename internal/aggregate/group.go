package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/recognizer"
)

// MergedGroup is a run of fragments that sit next to each other on one line.
type MergedGroup struct {
	Fragment recognizer.Fragment
	// Size is the number of source fragments; 1 for an unmerged fragment.
	Size int
}

// Group sorts fragments left to right and merges each unused fragment with
// the following ones whose vertical centre lies within maxVertical of the
// group's right-most member and whose left edge starts 0..maxGap pixels
// after it. Merged text is joined with single spaces, confidences are
// averaged and boxes are united.
func Group(frags []recognizer.Fragment, maxGap, maxVertical float64) []MergedGroup {
	items := make([]recognizer.Fragment, len(frags))
	copy(items, frags)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Box.Bounds().MinX < items[j].Box.Bounds().MinX
	})

	used := make([]bool, len(items))
	var out []MergedGroup
	for i := range items {
		if used[i] {
			continue
		}
		used[i] = true
		ref := items[i].Box.Bounds()
		union := ref
		texts := []string{items[i].Text}
		conf := items[i].Confidence

		for j := range items {
			if used[j] {
				continue
			}
			b := items[j].Box.Bounds()
			if math.Abs(ref.CenterY()-b.CenterY()) > maxVertical {
				continue
			}
			if gap := b.MinX - ref.MaxX; gap < 0 || gap > maxGap {
				continue
			}
			used[j] = true
			texts = append(texts, items[j].Text)
			conf += items[j].Confidence
			union = union.Union(b)
			ref = b
		}

		if len(texts) == 1 {
			out = append(out, MergedGroup{Fragment: items[i], Size: 1})
			continue
		}
		out = append(out, MergedGroup{
			Fragment: recognizer.Fragment{
				Text:       strings.Join(texts, " "),
				Box:        union.Quad(),
				Confidence: conf / float64(len(texts)),
			},
			Size: len(texts),
		})
	}
	return out
}
