package recognizer

import (
	"math"
	"sort"
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/utils"
)

type wordGroup struct {
	words []Fragment
	box   utils.Box
	last  utils.Box
}

// MergeWords post-processes word-level engine output: characters outside
// the allow-list are dropped, boxes shorter than MinGlyphSize are
// discarded and neighbouring words on one line are joined with a single
// space when their gap is at most WordSeparation times the text height.
// The result is in reading order.
func MergeWords(words []Fragment, opts Options) []Fragment {
	kept := make([]Fragment, 0, len(words))
	for _, w := range words {
		w.Text = strings.TrimSpace(filterAllowed(w.Text, opts.AllowList))
		if w.Text == "" {
			continue
		}
		if opts.MinGlyphSize > 0 && w.Box.Bounds().Height() < float64(opts.MinGlyphSize) {
			continue
		}
		kept = append(kept, w)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Box.Bounds().MinX < kept[j].Box.Bounds().MinX
	})

	var groups []*wordGroup
	for _, w := range kept {
		b := w.Box.Bounds()
		var target *wordGroup
		for _, g := range groups {
			if joins(g.last, b, opts.WordSeparation) {
				target = g
				break
			}
		}
		if target == nil {
			groups = append(groups, &wordGroup{words: []Fragment{w}, box: b, last: b})
			continue
		}
		target.words = append(target.words, w)
		target.box = target.box.Union(b)
		target.last = b
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].box, groups[j].box
		if math.Abs(a.CenterY()-b.CenterY()) > math.Min(a.Height(), b.Height())/2 {
			return a.MinY < b.MinY
		}
		return a.MinX < b.MinX
	})

	out := make([]Fragment, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.fragment())
	}
	return out
}

func joins(prev, next utils.Box, sep float64) bool {
	if sep <= 0 {
		return false
	}
	h := math.Max(prev.Height(), next.Height())
	if math.Abs(prev.CenterY()-next.CenterY()) > h/2 {
		return false
	}
	gap := next.MinX - prev.MaxX
	return gap >= -h/2 && gap <= sep*h
}

func (g *wordGroup) fragment() Fragment {
	if len(g.words) == 1 {
		return g.words[0]
	}
	texts := make([]string, len(g.words))
	var conf float64
	for i, w := range g.words {
		texts[i] = w.Text
		conf += w.Confidence
	}
	return Fragment{
		Text:       strings.Join(texts, " "),
		Box:        g.box.Quad(),
		Confidence: conf / float64(len(g.words)),
	}
}
