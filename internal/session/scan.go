package session

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/match"
	"github.com/Sigitfad/ocr-reader/internal/recognizer"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// Mode distinguishes live capture scans from one-off file scans.
type Mode int

const (
	ModeLive Mode = iota
	ModeStatic
)

func (m Mode) String() string {
	if m == ModeStatic {
		return "static"
	}
	return "live"
}

// Outcome is the terminal state of a scan.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeDuplicate Outcome = "duplicate"
)

// Detection is an accepted code.
type Detection struct {
	Code      string          `json:"code"`
	Family    vocab.Family    `json:"family"`
	Status    string          `json:"status"`
	Score     float64         `json:"score"`
	Box       utils.Quad      `json:"box"`
	Candidate match.Candidate `json:"candidate"`
	Record    store.Record    `json:"record"`
	// Persisted is false when the store rejected the record.
	Persisted bool `json:"persisted"`
}

// Result describes one finished scan.
type Result struct {
	Mode      Mode       `json:"-"`
	Outcome   Outcome    `json:"outcome"`
	Snapshot  Snapshot   `json:"snapshot"`
	Texts     []string   `json:"texts"`
	Detection *Detection `json:"detection,omitempty"`
	// Best is the highest scoring candidate, even when it was not accepted.
	Best    *match.Candidate `json:"best,omitempty"`
	Message string           `json:"message,omitempty"`
	// Err is the recognizer failure that led to NoMatch, if any.
	Err error `json:"-"`
}

// StartScan dispatches a scan in a new goroutine; results are delivered to
// observers only. Live scans are dropped with ErrBusy while another live
// scan is in flight. Static scans fail with ErrLiveActive in live mode; the
// check happens at dispatch, so a dispatched static scan always runs.
func (s *Session) StartScan(ctx context.Context, frame image.Image, mode Mode) error {
	if mode == ModeStatic {
		if s.IsLive() {
			return ErrLiveActive
		}
		go s.run(ctx, frame, ModeStatic)
		return nil
	}
	if !s.inflight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	go func() {
		defer s.inflight.Store(false)
		s.run(ctx, frame, ModeLive)
	}()
	return nil
}

// Scan runs a scan to completion and returns its result. It applies the
// same in-flight and live-mode guards as StartScan.
func (s *Session) Scan(ctx context.Context, frame image.Image, mode Mode) (Result, error) {
	if mode == ModeStatic {
		if s.IsLive() {
			return Result{}, ErrLiveActive
		}
		return s.run(ctx, frame, ModeStatic), nil
	}
	if !s.inflight.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer s.inflight.Store(false)
	return s.run(ctx, frame, ModeLive), nil
}

// ScanFile loads an image and scans it statically. Unreadable or empty
// files yield a *utils.ImageProcessingError without entering the scan.
func (s *Session) ScanFile(ctx context.Context, path string) (Result, error) {
	if s.IsLive() {
		return Result{}, ErrLiveActive
	}
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return Result{}, err
	}
	return s.Scan(ctx, img, ModeStatic)
}

type best struct {
	cand match.Candidate
	box  utils.Quad
	ok   bool
}

func (s *Session) run(ctx context.Context, frame image.Image, mode Mode) Result {
	s.scanning.Add(1)
	defer s.scanning.Add(-1)

	snap := s.Snapshot()
	s.checkDailyReset(ctx)
	res := Result{Mode: mode, Snapshot: snap}
	log := s.logger.With("family", snap.Family.String(), "mode", mode.String())

	agg, err := s.agg.Run(ctx, frame, snap.Family)
	if err != nil {
		log.Error("recognition failed", "error", err)
		res.Err = err
	}
	res.Texts = agg.Texts
	s.notify(func(o Observer) { o.OnCandidateTexts(agg.Texts) })

	resolver := s.resolvers[snap.Family]
	var top best
	for _, f := range agg.Fragments {
		c, ok := resolver.Resolve(f.Text)
		if !ok || !c.Found() {
			continue
		}
		if !top.ok || c.Score > top.cand.Score {
			top = best{cand: c, box: f.Box, ok: true}
		}
	}
	if top.ok {
		res.Best = &top.cand
	}

	accepted := top.ok && top.cand.Score > s.cfg.AcceptThreshold
	if c, ok := s.foreign(snap.Family, agg.Fragments); ok && (!accepted || c.Score > top.cand.Score) {
		res.Best = &c
		res.Outcome, res.Message = OutcomeRejected, RejectMessage(snap.Family)
		log.Info("detection rejected", "code", c.Code, "score", c.Score, "message", res.Message)
		s.notify(func(o Observer) { o.OnRejected(res.Message) })
		return res
	}

	if !accepted {
		res.Outcome = OutcomeNoMatch
		if top.ok {
			log.Debug("best candidate below acceptance", "code", top.cand.Code, "score", top.cand.Score)
		}
		if mode == ModeStatic {
			s.notify(func(o Observer) { o.OnNoMatch() })
		}
		return res
	}

	code := match.Normalize(snap.Family, strings.TrimSpace(top.cand.Code))
	switch detected := s.classifier.Classify(code); {
	case detected == vocab.FamilyNone:
		res.Outcome, res.Message = OutcomeRejected, MsgInvalidFormat
	case detected != snap.Family:
		res.Outcome, res.Message = OutcomeRejected, RejectMessage(snap.Family)
	}
	if res.Outcome == OutcomeRejected {
		log.Info("detection rejected", "code", code, "score", top.cand.Score, "message", res.Message)
		s.notify(func(o Observer) { o.OnRejected(res.Message) })
		return res
	}

	d, dup := s.accept(ctx, frame, snap, mode, code, top)
	if dup {
		res.Outcome = OutcomeDuplicate
		log.Debug("duplicate detection suppressed", "code", code)
		return res
	}
	res.Outcome = OutcomeAccepted
	res.Detection = &d
	log.Info("detection accepted", "code", d.Code, "status", d.Status, "score", d.Score, "persisted", d.Persisted)
	s.notify(func(o Observer) { o.OnAccepted(d) })
	return res
}

// foreign returns the strongest read that resolves as a code of the family
// other than active. Such a read rejects the scan rather than going
// unmatched.
func (s *Session) foreign(active vocab.Family, frags []recognizer.Fragment) (match.Candidate, bool) {
	other := vocab.FamilyDIN
	if active == vocab.FamilyDIN {
		other = vocab.FamilyJIS
	}
	resolver := s.resolvers[other]
	var (
		top   match.Candidate
		found bool
	)
	for _, f := range frags {
		c, ok := resolver.Resolve(f.Text)
		if !ok || !c.Found() || c.Score <= s.cfg.AcceptThreshold {
			continue
		}
		if s.classifier.Classify(match.Normalize(other, c.Code)) != other {
			continue
		}
		if !found || c.Score > top.Score {
			top, found = c, true
		}
	}
	return top, found
}

// status compares a detected code with the target label.
func status(f vocab.Family, code, target string) string {
	if target != "" && match.SameCode(f, code, target) {
		return store.StatusOK
	}
	return store.StatusNotOK
}

// accept records a detection. It reports dup=true, without side effects,
// when the same code was accepted within the de-duplication window of a
// live scan.
func (s *Session) accept(ctx context.Context, frame image.Image, snap Snapshot, mode Mode, code string, top best) (Detection, bool) {
	now := s.clock.Now()
	target := snap.TargetLabel
	if target == "" {
		target = code
	}
	rec := store.Record{
		Timestamp:     now,
		Code:          code,
		Preset:        string(snap.Family),
		Status:        status(snap.Family, code, snap.TargetLabel),
		TargetSession: target,
	}

	s.mu.Lock()
	if mode == ModeLive && s.recentlyAccepted(code, now) {
		s.mu.Unlock()
		return Detection{}, true
	}
	// reserve the slot so a concurrent static scan sees it
	idx := len(s.records)
	s.records = append(s.records, rec)
	s.mu.Unlock()

	if s.evidence != nil {
		path, err := s.evidence.Write(frame, top.box, code, now)
		if err != nil {
			s.logger.Warn("failed to write evidence image", "code", code, "error", err)
		}
		rec.ImagePath = path
	}

	persisted := false
	if s.store != nil {
		id, err := s.store.Append(ctx, rec)
		if err != nil {
			s.logger.Error("failed to persist detection", "code", code, "error", err)
		} else {
			rec.ID = id
			persisted = true
		}
	}

	s.mu.Lock()
	if idx < len(s.records) && s.records[idx].Timestamp.Equal(now) && s.records[idx].Code == code {
		s.records[idx] = rec
	}
	s.mu.Unlock()

	return Detection{
		Code:      code,
		Family:    snap.Family,
		Status:    rec.Status,
		Score:     top.cand.Score,
		Box:       top.box,
		Candidate: top.cand,
		Record:    rec,
		Persisted: persisted,
	}, false
}

// recentlyAccepted must be called with s.mu held.
func (s *Session) recentlyAccepted(code string, now time.Time) bool {
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.Code == code && now.Sub(r.Timestamp) < s.cfg.DedupWindow {
			return true
		}
	}
	return false
}
