// Package session runs detection scans for one operator station: it keeps
// the active family and target label, turns OCR fragments into accepted or
// rejected detections and reports them to observers.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/aggregate"
	"github.com/Sigitfad/ocr-reader/internal/match"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

var (
	// ErrLiveActive is returned by static scans while live mode runs.
	ErrLiveActive = errors.New("session: stop live mode before scanning a file")
	// ErrBusy is returned when a live scan is dropped because another one
	// is still in flight.
	ErrBusy = errors.New("session: scan already in flight")
)

// MsgInvalidFormat is the rejection message for a code of neither family.
const MsgInvalidFormat = "invalid code format"

// RejectMessage is the rejection message for a code of the wrong family.
func RejectMessage(active vocab.Family) string {
	return "ensure your photo is Type " + active.String()
}

// Aggregator produces the fragments of one frame.
type Aggregator interface {
	Run(ctx context.Context, frame image.Image, family vocab.Family) (aggregate.Result, error)
}

// Store persists accepted detections.
type Store interface {
	Append(ctx context.Context, rec store.Record) (uint, error)
	LoadDay(ctx context.Context, day time.Time) ([]store.Record, error)
	Delete(ctx context.Context, ids []uint) (int64, error)
}

// EvidenceWriter stores the annotated frame of a detection.
type EvidenceWriter interface {
	Write(frame image.Image, box utils.Quad, label string, at time.Time) (string, error)
}

// Config holds the session settings.
type Config struct {
	Family          string        `mapstructure:"family" yaml:"family" json:"family"`
	TargetLabel     string        `mapstructure:"target_label" yaml:"target_label" json:"target_label"`
	DedupWindow     time.Duration `mapstructure:"dedup_window" yaml:"dedup_window" json:"dedup_window"`
	AcceptThreshold float64       `mapstructure:"accept_threshold" yaml:"accept_threshold" json:"accept_threshold"`
}

// DefaultConfig returns a JIS session with a 5s de-duplication window.
func DefaultConfig() Config {
	return Config{
		Family:          string(vocab.FamilyJIS),
		DedupWindow:     5 * time.Second,
		AcceptThreshold: 0.85,
	}
}

// Snapshot is the immutable view of the mutable session settings a scan
// works with.
type Snapshot struct {
	Family      vocab.Family `json:"family"`
	TargetLabel string       `json:"target_label"`
}

// State is the coarse scanning state.
type State string

const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
)

// Option customises a Session.
type Option func(*Session)

// WithStore persists accepted detections into st.
func WithStore(st Store) Option { return func(s *Session) { s.store = st } }

// WithEvidence saves an annotated frame for every accepted detection.
func WithEvidence(w EvidenceWriter) Option { return func(s *Session) { s.evidence = w } }

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithMatchParams replaces the matcher thresholds.
func WithMatchParams(p match.Params) Option { return func(s *Session) { s.params = p } }

// Session is safe for concurrent use. Settings changes take effect on the
// next scan; a running scan keeps the snapshot it started with.
type Session struct {
	cfg        Config
	agg        Aggregator
	vocabs     vocab.Set
	params     match.Params
	resolvers  map[vocab.Family]*match.Resolver
	classifier *match.Classifier
	store      Store
	evidence   EvidenceWriter
	clock      Clock
	logger     *slog.Logger

	mu           sync.Mutex
	family       vocab.Family
	target       string
	day          time.Time
	records      []store.Record
	observers    map[int]Observer
	nextObserver int

	inflight atomic.Bool
	live     atomic.Bool
	scanning atomic.Int32
}

// New returns a session over the given vocabularies.
func New(agg Aggregator, vocabs vocab.Set, cfg Config, opts ...Option) (*Session, error) {
	if agg == nil {
		return nil, errors.New("session: aggregator is nil")
	}
	if vocabs.JIS == nil || vocabs.DIN == nil {
		return nil, errors.New("session: both vocabularies are required")
	}
	family, err := vocab.ParseFamily(cfg.Family)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s := &Session{
		cfg:       cfg,
		agg:       agg,
		vocabs:    vocabs,
		params:    match.DefaultParams(),
		clock:     SystemClock{},
		logger:    slog.Default(),
		family:    family,
		target:    strings.TrimSpace(cfg.TargetLabel),
		observers: make(map[int]Observer),
	}
	for _, o := range opts {
		o(s)
	}
	s.resolvers = map[vocab.Family]*match.Resolver{
		vocab.FamilyJIS: match.NewResolver(vocabs.JIS, s.params),
		vocab.FamilyDIN: match.NewResolver(vocabs.DIN, s.params),
	}
	s.classifier = match.NewClassifier(vocabs.DIN)
	s.day = s.clock.Now()
	return s, nil
}

// Vocabularies returns the vocabularies the session matches against.
func (s *Session) Vocabularies() vocab.Set { return s.vocabs }

// Snapshot returns the current family and target label.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Family: s.family, TargetLabel: s.target}
}

// SetActiveFamily changes the family used by subsequent scans.
func (s *Session) SetActiveFamily(f vocab.Family) error {
	if f != vocab.FamilyJIS && f != vocab.FamilyDIN {
		return fmt.Errorf("session: unsupported family %q", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.family = f
	return nil
}

// SetTargetLabel changes the label subsequent detections are compared to.
func (s *Session) SetTargetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = strings.TrimSpace(label)
}

// State reports whether a scan is running.
func (s *Session) State() State {
	if s.scanning.Load() > 0 {
		return StateScanning
	}
	return StateIdle
}

// StartLive marks the session as driven by a live capture loop.
func (s *Session) StartLive() bool { return s.live.CompareAndSwap(false, true) }

// StopLive leaves live mode.
func (s *Session) StopLive() { s.live.Store(false) }

// IsLive reports whether live mode is active.
func (s *Session) IsLive() bool { return s.live.Load() }
