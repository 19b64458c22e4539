package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sigitfad/ocr-reader/internal/aggregate"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/testutil"
	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

func TestNewValidates(t *testing.T) {
	agg, err := aggregate.New(testutil.NewFakeRecognizer(), aggregate.DefaultConfig(), discardLogger())
	require.NoError(t, err)

	_, err = session.New(nil, vocab.Builtin(), session.DefaultConfig())
	assert.Error(t, err)
	_, err = session.New(agg, vocab.Set{JIS: vocab.JIS()}, session.DefaultConfig())
	assert.Error(t, err)

	cfg := session.DefaultConfig()
	cfg.Family = "ISO"
	_, err = session.New(agg, vocab.Builtin(), cfg)
	assert.Error(t, err)

	cfg.Family = "din"
	cfg.TargetLabel = "  LN4 776A ISS "
	s, err := session.New(agg, vocab.Builtin(), cfg)
	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{Family: vocab.FamilyDIN, TargetLabel: "LN4 776A ISS"}, s.Snapshot())
	assert.Equal(t, session.StateIdle, s.State())
}

func TestSetters(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	assert.Error(t, f.sess.SetActiveFamily(vocab.FamilyNone))
	require.NoError(t, f.sess.SetActiveFamily(vocab.FamilyDIN))
	f.sess.SetTargetLabel(" LBN 1 ")
	assert.Equal(t, session.Snapshot{Family: vocab.FamilyDIN, TargetLabel: "LBN 1"}, f.sess.Snapshot())
}

func TestScanAcceptsStatic(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("55023L")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAccepted, res.Outcome)
	require.NotNil(t, res.Detection)

	d := res.Detection
	assert.Equal(t, "55D23L", d.Code)
	assert.Equal(t, vocab.FamilyJIS, d.Family)
	assert.Equal(t, 1.0, d.Score)
	assert.True(t, d.Persisted)
	assert.Equal(t, uint(1), d.Record.ID)
	assert.Equal(t, store.StatusNotOK, d.Status)
	assert.Equal(t, "55D23L", d.Record.TargetSession, "empty target falls back to the detected code")
	assert.Equal(t, "JIS", d.Record.Preset)
	assert.Equal(t, "images/55D23L.jpg", d.Record.ImagePath)
	assert.Equal(t, f.clock.Now(), d.Record.Timestamp)

	assert.Equal(t, []string{"55023L"}, res.Texts)
	assert.Equal(t, [][]string{{"55023L"}}, f.events.texts)
	require.Len(t, f.events.accepted, 1)
	assert.Equal(t, "55D23L", f.events.accepted[0].Code)
	assert.Equal(t, 1, f.store.Len())
	assert.Len(t, f.sess.Records(), 1)
	assert.Equal(t, 1, f.rec.Calls(), "a confident read stops after the first variant")
}

func TestScanStatusAgainstTarget(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Family = "DIN"
	cfg.TargetLabel = "ln4776aiss"
	f := newFixture(t, cfg)
	f.reads("LN4 776A I55")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAccepted, res.Outcome)
	assert.Equal(t, "LN4 776A ISS", res.Detection.Code)
	assert.Equal(t, store.StatusOK, res.Detection.Status)
	assert.Equal(t, "ln4776aiss", res.Detection.Record.TargetSession)

	f.sess.SetTargetLabel("LN5")
	res, err = f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	assert.Equal(t, store.StatusNotOK, res.Detection.Status)

	st := f.sess.Stats()
	assert.Equal(t, store.Stats{Total: 2, OK: 1, NotOK: 1}, st)
}

func TestScanRejectsOtherFamily(t *testing.T) {
	tests := []struct {
		name   string
		family vocab.Family
		text   string
		msg    string
	}{
		{"DIN reversed under JIS", vocab.FamilyJIS, "650LN4", "ensure your photo is Type JIS"},
		{"DIN forward under JIS", vocab.FamilyJIS, "LN4 650A", "ensure your photo is Type JIS"},
		{"DIN ISS under JIS", vocab.FamilyJIS, "LN4 776A ISS", "ensure your photo is Type JIS"},
		{"DIN LBN under JIS", vocab.FamilyJIS, "LBN 1", "ensure your photo is Type JIS"},
		{"JIS under DIN", vocab.FamilyDIN, "55D23L", "ensure your photo is Type DIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, session.DefaultConfig())
			require.NoError(t, f.sess.SetActiveFamily(tt.family))
			f.reads(tt.text)

			res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
			require.NoError(t, err)
			assert.Equal(t, session.OutcomeRejected, res.Outcome)
			assert.Equal(t, tt.msg, res.Message)
			assert.Equal(t, []string{tt.msg}, f.events.rejected)
			assert.Zero(t, f.events.noMatch)
			assert.Empty(t, f.events.accepted)
			assert.Zero(t, f.store.Len())
		})
	}
}

func TestScanActiveFamilyWinsOverOtherFamily(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("LN4 650A", "55D23L")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAccepted, res.Outcome)
	assert.Equal(t, "55D23L", res.Detection.Code)
	assert.Empty(t, f.events.rejected)
}

func TestScanRejectsShapelessVocabularyEntry(t *testing.T) {
	set := vocab.Builtin()
	jis, err := vocab.New(vocab.FamilyJIS, append(slices.Clone(set.JIS.Codes()), "XYZ99"))
	require.NoError(t, err)
	set.JIS = jis
	f := newFixtureWith(t, session.DefaultConfig(), set)

	f.reads("XYZ99")
	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeRejected, res.Outcome)
	assert.Equal(t, session.MsgInvalidFormat, res.Message)
	assert.Equal(t, []string{session.MsgInvalidFormat}, f.events.rejected)
	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.sess.Records())
}

func TestScanGarbageIsNoMatchInBothFamilies(t *testing.T) {
	for _, family := range []vocab.Family{vocab.FamilyJIS, vocab.FamilyDIN} {
		t.Run(family.String(), func(t *testing.T) {
			f := newFixture(t, session.DefaultConfig())
			require.NoError(t, f.sess.SetActiveFamily(family))
			f.reads("XYZ123")

			res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
			require.NoError(t, err)
			assert.Equal(t, session.OutcomeNoMatch, res.Outcome)
			assert.Empty(t, f.events.rejected)
			assert.Equal(t, 1, f.events.noMatch)
		})
	}
}

func TestScanNoMatchOnlyNotifiedForStatic(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("QQQQQQ")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeNoMatch, res.Outcome)
	assert.Zero(t, f.events.noMatch)

	res, err = f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeNoMatch, res.Outcome)
	assert.Equal(t, 1, f.events.noMatch)
	assert.Len(t, f.events.texts, 2, "candidate texts are reported for every scan")
}

func TestScanRecognizerFailureIsNoMatch(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.rec.Script(testutil.Step{Err: errors.New("engine crashed")})

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeNoMatch, res.Outcome)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, f.events.noMatch)
}

func TestScanPicksHighestScoringFragment(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("QQQQQQ", "55D23L", "XXXXXX")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAccepted, res.Outcome)
	assert.Equal(t, "55D23L", res.Detection.Code)
	assert.Equal(t, 1.0, res.Best.Score)
}

func TestLiveDeduplication(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("55D23L")
	ctx := context.Background()

	res, err := f.sess.Scan(ctx, f.frame, session.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeAccepted, res.Outcome)

	f.clock.Advance(4 * time.Second)
	res, err = f.sess.Scan(ctx, f.frame, session.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeDuplicate, res.Outcome)

	f.clock.Advance(time.Second)
	res, err = f.sess.Scan(ctx, f.frame, session.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeAccepted, res.Outcome, "the window is exclusive")

	res, err = f.sess.Scan(ctx, f.frame, session.ModeStatic)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeAccepted, res.Outcome, "static scans are never de-duplicated")

	assert.Len(t, f.events.accepted, 3)
	assert.Equal(t, 3, f.store.Len())
}

func TestPersistenceFailureStillAccepts(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.store.appendErr = errStoreDown
	f.reads("55D23L")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAccepted, res.Outcome)
	assert.False(t, res.Detection.Persisted)
	assert.Zero(t, res.Detection.Record.ID)

	recs := f.sess.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "55D23L", recs[0].Code)
	assert.Len(t, f.events.accepted, 1)
}

func TestEvidenceFailureStillPersists(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.evidence.err = errors.New("disk full")
	f.reads("55D23L")

	res, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeAccepted, res.Outcome)
	assert.Empty(t, res.Detection.Record.ImagePath)
	assert.True(t, res.Detection.Persisted)
}

func TestScanFile(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("55D23L")
	dir := t.TempDir()
	good := testutil.WritePNG(t, dir, "label.png", testutil.LabelImage("55D23L", 200, 80))
	empty := testutil.WriteEmptyFile(t, dir, "empty.png")

	res, err := f.sess.ScanFile(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeAccepted, res.Outcome)

	_, err = f.sess.ScanFile(context.Background(), empty)
	var ipe *utils.ImageProcessingError
	require.ErrorAs(t, err, &ipe)
	assert.ErrorIs(t, err, utils.ErrEmptyImage)

	_, err = f.sess.ScanFile(context.Background(), filepath.Join(dir, "missing.png"))
	require.ErrorAs(t, err, &ipe)

	require.True(t, f.sess.StartLive())
	assert.False(t, f.sess.StartLive())
	_, err = f.sess.ScanFile(context.Background(), good)
	assert.ErrorIs(t, err, session.ErrLiveActive)
	_, err = f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	assert.ErrorIs(t, err, session.ErrLiveActive)
	f.sess.StopLive()
	assert.False(t, f.sess.IsLive())
}

func TestStartScanDropsWhileInFlight(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("55D23L")
	f.rec.Block = make(chan struct{})
	accepted := make(chan session.Detection, 1)
	f.sess.Subscribe(session.ObserverFuncs{Accepted: func(d session.Detection) { accepted <- d }})

	ctx := context.Background()
	require.NoError(t, f.sess.StartScan(ctx, f.frame, session.ModeLive))
	assert.ErrorIs(t, f.sess.StartScan(ctx, f.frame, session.ModeLive), session.ErrBusy)
	_, err := f.sess.Scan(ctx, f.frame, session.ModeLive)
	assert.ErrorIs(t, err, session.ErrBusy)

	close(f.rec.Block)
	select {
	case d := <-accepted:
		assert.Equal(t, "55D23L", d.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not finish")
	}
	assert.Eventually(t, func() bool {
		return f.sess.StartScan(ctx, f.frame, session.ModeLive) == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStartScanStaticRunsOnceDispatched(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("55D23L")
	f.rec.Block = make(chan struct{})
	accepted := make(chan session.Detection, 1)
	f.sess.Subscribe(session.ObserverFuncs{Accepted: func(d session.Detection) { accepted <- d }})

	ctx := context.Background()
	require.NoError(t, f.sess.StartScan(ctx, f.frame, session.ModeStatic))
	require.True(t, f.sess.StartLive())
	assert.ErrorIs(t, f.sess.StartScan(ctx, f.frame, session.ModeStatic), session.ErrLiveActive)

	close(f.rec.Block)
	select {
	case d := <-accepted:
		assert.Equal(t, "55D23L", d.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatched static scan did not run")
	}
}

func TestDailyReset(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("55D23L")
	ctx := context.Background()

	_, err := f.sess.Scan(ctx, f.frame, session.ModeStatic)
	require.NoError(t, err)
	require.Len(t, f.sess.Records(), 1)
	assert.False(t, f.sess.CheckDailyReset(ctx))

	f.clock.Advance(24 * time.Hour)
	f.reads("QQQQQQ")
	_, err = f.sess.Scan(ctx, f.frame, session.ModeStatic)
	require.NoError(t, err)

	assert.Empty(t, f.sess.Records())
	require.Len(t, f.events.resets, 1)
	assert.Equal(t, 19, f.events.resets[0].Day())
	assert.Equal(t, 1, f.store.Len(), "yesterday's rows stay in the store")
	assert.False(t, f.sess.CheckDailyReset(ctx))
}

func TestLoadTodayAndDelete(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	ctx := context.Background()
	now := f.clock.Now()
	for _, code := range []string{"55D23L", "80D26R", "LN2"} {
		_, err := f.store.Append(ctx, store.Record{Timestamp: now, Code: code, Status: store.StatusNotOK})
		require.NoError(t, err)
	}
	_, err := f.store.Append(ctx, store.Record{Timestamp: now.Add(-48 * time.Hour), Code: "old"})
	require.NoError(t, err)

	require.NoError(t, f.sess.LoadToday(ctx))
	require.Len(t, f.sess.Records(), 3)

	n, err := f.sess.DeleteRecords(ctx, []uint{1, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	recs := f.sess.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "80D26R", recs[0].Code)

	_, err = f.sess.DeleteRecords(ctx, []uint{99})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, f.sess.Records(), 1)
}

func TestSubscribeCancel(t *testing.T) {
	f := newFixture(t, session.DefaultConfig())
	f.reads("QQQQQQ")
	calls := 0
	cancel := f.sess.Subscribe(session.ObserverFuncs{NoMatch: func() { calls++ }})

	_, err := f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	cancel()
	_, err = f.sess.Scan(context.Background(), f.frame, session.ModeStatic)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
