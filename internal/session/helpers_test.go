package session_test

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sigitfad/ocr-reader/internal/aggregate"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/testutil"
	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

var errStoreDown = errors.New("store unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory session.Store.
type memStore struct {
	mu        sync.Mutex
	records   []store.Record
	nextID    uint
	appendErr error
	loads     int
}

func (m *memStore) Append(_ context.Context, rec store.Record) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memStore) LoadDay(_ context.Context, day time.Time) ([]store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	var out []store.Record
	y, mo, d := day.Date()
	for _, r := range m.records {
		ry, rmo, rd := r.Timestamp.Date()
		if ry == y && rmo == mo && rd == d {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, ids []uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.records)
	m.records = slices.DeleteFunc(m.records, func(r store.Record) bool { return slices.Contains(ids, r.ID) })
	n := int64(before - len(m.records))
	if n == 0 {
		return 0, store.ErrNotFound
	}
	return n, nil
}

func (m *memStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type fakeEvidence struct {
	mu     sync.Mutex
	err    error
	labels []string
}

func (e *fakeEvidence) Write(_ image.Image, _ utils.Quad, label string, _ time.Time) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	e.labels = append(e.labels, label)
	return "images/" + label + ".jpg", nil
}

// recorder collects observer events.
type recorder struct {
	mu       sync.Mutex
	texts    [][]string
	accepted []session.Detection
	rejected []string
	noMatch  int
	resets   []time.Time
}

func (r *recorder) OnCandidateTexts(texts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, texts)
}

func (r *recorder) OnAccepted(d session.Detection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted = append(r.accepted, d)
}

func (r *recorder) OnRejected(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, msg)
}

func (r *recorder) OnNoMatch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noMatch++
}

func (r *recorder) OnDailyReset(day time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, day)
}

type fixture struct {
	rec      *testutil.FakeRecognizer
	clock    *fakeClock
	store    *memStore
	evidence *fakeEvidence
	events   *recorder
	sess     *session.Session
	frame    image.Image
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t testing.TB, cfg session.Config) *fixture {
	t.Helper()
	return newFixtureWith(t, cfg, vocab.Builtin())
}

// newFixtureWith builds a session over vocabs instead of the built-in lists.
func newFixtureWith(t testing.TB, cfg session.Config, vocabs vocab.Set) *fixture {
	t.Helper()
	f := &fixture{
		rec:      testutil.NewFakeRecognizer(),
		clock:    newFakeClock(),
		store:    &memStore{},
		evidence: &fakeEvidence{},
		events:   &recorder{},
		frame:    testutil.LabelImage("55D23L", 320, 120),
	}
	agg, err := aggregate.New(f.rec, aggregate.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	f.sess, err = session.New(agg, vocabs, cfg,
		session.WithStore(f.store),
		session.WithEvidence(f.evidence),
		session.WithClock(f.clock),
		session.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	f.sess.Subscribe(f.events)
	return f
}

// reads makes the recognizer return texts with high confidence.
func (f *fixture) reads(texts ...string) {
	var step testutil.Step
	for i, text := range texts {
		x := float64(10 + i*100)
		step.Fragments = append(step.Fragments, testutil.Frag(text, x, 40, x+70, 70, 0.95))
	}
	f.rec.Script(step)
}
