package testutil

import (
	"context"
	"image"
	"sync"

	"github.com/Sigitfad/ocr-reader/internal/recognizer"
	"github.com/Sigitfad/ocr-reader/internal/utils"
)

// Frag builds a fragment with an axis-aligned box.
func Frag(text string, x1, y1, x2, y2, conf float64) recognizer.Fragment {
	return recognizer.Fragment{
		Text:       text,
		Box:        utils.NewBox(x1, y1, x2, y2).Quad(),
		Confidence: conf,
	}
}

// Step is the scripted answer to one ReadText call.
type Step struct {
	Fragments []recognizer.Fragment
	Err       error
}

// FakeRecognizer replays scripted steps, one per call. Once the script is
// exhausted the last step repeats; an empty script returns no fragments.
type FakeRecognizer struct {
	mu      sync.Mutex
	steps   []Step
	calls   int
	options []recognizer.Options
	sizes   []image.Rectangle
	closed  bool
	// Block, when set, is received from before every call returns.
	Block chan struct{}
}

// NewFakeRecognizer returns a recognizer replaying steps.
func NewFakeRecognizer(steps ...Step) *FakeRecognizer {
	return &FakeRecognizer{steps: steps}
}

// Returning is shorthand for a recognizer that always yields frags.
func Returning(frags ...recognizer.Fragment) *FakeRecognizer {
	return NewFakeRecognizer(Step{Fragments: frags})
}

// Script replaces the remaining steps and resets the call counter.
func (f *FakeRecognizer) Script(steps ...Step) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = steps
	f.calls = 0
	f.options = nil
	f.sizes = nil
}

// ReadText implements recognizer.Recognizer.
func (f *FakeRecognizer) ReadText(ctx context.Context, img image.Image, opts recognizer.Options) ([]recognizer.Fragment, error) {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	f.options = append(f.options, opts)
	if img != nil {
		f.sizes = append(f.sizes, img.Bounds())
	}
	if len(f.steps) == 0 {
		return nil, nil
	}
	step := f.steps[min(idx, len(f.steps)-1)]
	out := make([]recognizer.Fragment, len(step.Fragments))
	copy(out, step.Fragments)
	return out, step.Err
}

// Close implements recognizer.Recognizer.
func (f *FakeRecognizer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Calls returns the number of ReadText calls so far.
func (f *FakeRecognizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Options returns the options of every call so far.
func (f *FakeRecognizer) Options() []recognizer.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recognizer.Options(nil), f.options...)
}

// Sizes returns the bounds of every image passed so far.
func (f *FakeRecognizer) Sizes() []image.Rectangle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]image.Rectangle(nil), f.sizes...)
}

// Closed reports whether Close was called.
func (f *FakeRecognizer) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
