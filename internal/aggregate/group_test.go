package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sigitfad/ocr-reader/internal/recognizer"
	"github.com/Sigitfad/ocr-reader/internal/testutil"
)

func TestGroupChainsAlongTheLine(t *testing.T) {
	frags := []recognizer.Fragment{
		testutil.Frag("ISS", 200, 30, 240, 50, 0.9),
		testutil.Frag("LN4", 0, 0, 40, 20, 0.9),
		testutil.Frag("776A", 90, 15, 150, 35, 0.6),
	}
	// each step is within 20px vertically of its left neighbour, even though
	// ISS is 30px below LN4
	groups := Group(frags, 60, 20)
	require.Len(t, groups, 1)
	assert.Equal(t, "LN4 776A ISS", groups[0].Fragment.Text)
	assert.Equal(t, 3, groups[0].Size)
	assert.InDelta(t, 0.8, groups[0].Fragment.Confidence, 1e-9)

	b := groups[0].Fragment.Box.Bounds()
	assert.InDelta(t, 0, b.MinX, 1e-9)
	assert.InDelta(t, 0, b.MinY, 1e-9)
	assert.InDelta(t, 240, b.MaxX, 1e-9)
	assert.InDelta(t, 50, b.MaxY, 1e-9)
}

func TestGroupTolerances(t *testing.T) {
	tests := []struct {
		name  string
		next  recognizer.Fragment
		group bool
	}{
		{"gap at limit", testutil.Frag("776A", 100, 0, 150, 20, 0.5), true},
		{"gap too wide", testutil.Frag("776A", 101, 0, 150, 20, 0.5), false},
		{"touching", testutil.Frag("776A", 40, 0, 90, 20, 0.5), true},
		{"overlapping", testutil.Frag("776A", 39, 0, 90, 20, 0.5), false},
		{"vertical at limit", testutil.Frag("776A", 50, 20, 90, 40, 0.5), true},
		{"vertical too far", testutil.Frag("776A", 50, 21, 90, 41, 0.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := []recognizer.Fragment{testutil.Frag("LN4", 0, 0, 40, 20, 0.5), tt.next}
			groups := Group(frags, 60, 20)
			if tt.group {
				require.Len(t, groups, 1)
				assert.Equal(t, "LN4 776A", groups[0].Fragment.Text)
			} else {
				require.Len(t, groups, 2)
				assert.Equal(t, 1, groups[0].Size)
				assert.Equal(t, 1, groups[1].Size)
			}
		})
	}
}

func TestGroupEmpty(t *testing.T) {
	assert.Empty(t, Group(nil, 60, 20))
}
