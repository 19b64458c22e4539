// Package aggregate runs the recognizer over every enhancement variant of a
// frame and folds the fragments into one candidate list.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/enhance"
	"github.com/Sigitfad/ocr-reader/internal/recognizer"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// Config holds the aggregation parameters.
type Config struct {
	EarlyExitConfidence float64  `mapstructure:"early_exit_confidence" yaml:"early_exit_confidence" json:"early_exit_confidence"`
	MaxWidth            int      `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	GroupMaxGap         float64  `mapstructure:"group_max_gap" yaml:"group_max_gap" json:"group_max_gap"`
	GroupMaxVertical    float64  `mapstructure:"group_max_vertical" yaml:"group_max_vertical" json:"group_max_vertical"`
	Variants            []string `mapstructure:"variants" yaml:"variants" json:"variants"`
	MinGlyphSize        int      `mapstructure:"min_glyph_size" yaml:"min_glyph_size" json:"min_glyph_size"`
	JISWordSeparation   float64  `mapstructure:"jis_word_separation" yaml:"jis_word_separation" json:"jis_word_separation"`
	DINWordSeparation   float64  `mapstructure:"din_word_separation" yaml:"din_word_separation" json:"din_word_separation"`
}

// DefaultConfig returns the production parameters.
func DefaultConfig() Config {
	return Config{
		EarlyExitConfidence: 0.90,
		MaxWidth:            640,
		GroupMaxGap:         60,
		GroupMaxVertical:    20,
		Variants: []string{
			enhance.NameGrayscale, enhance.NameSharpen, enhance.NameOtsu, enhance.NameCLAHE,
		},
		MinGlyphSize:      8,
		JISWordSeparation: 0.7,
		DINWordSeparation: 0.5,
	}
}

// Options returns the recognizer options for family f.
func (c Config) Options(f vocab.Family) recognizer.Options {
	sep := c.JISWordSeparation
	if f == vocab.FamilyDIN {
		sep = c.DINWordSeparation
	}
	return recognizer.Options{
		AllowList:      recognizer.AllowList(f),
		MinGlyphSize:   c.MinGlyphSize,
		WordSeparation: sep,
	}
}

// Result is the output of one aggregation run.
type Result struct {
	// Texts holds every distinct fragment text in first-seen order.
	Texts []string `json:"texts"`
	// Fragments holds every fragment in source-frame coordinates, followed
	// by the merged DIN groups.
	Fragments []recognizer.Fragment `json:"fragments"`
	// Variants lists the variants that were run, in order.
	Variants   []string `json:"variants"`
	EarlyExit  bool     `json:"early_exit"`
	Processing struct {
		RecognitionNs int64 `json:"recognition_ns"`
		TotalNs       int64 `json:"total_ns"`
	} `json:"processing"`
}

// Aggregator owns the recognizer and the ordered variant list. Run must not
// be called concurrently when the recognizer is not safe for it.
type Aggregator struct {
	cfg      Config
	rec      recognizer.Recognizer
	variants []enhance.Variant
	logger   *slog.Logger
}

// New validates cfg and returns an Aggregator. A nil logger uses
// slog.Default().
func New(rec recognizer.Recognizer, cfg Config, logger *slog.Logger) (*Aggregator, error) {
	if rec == nil {
		return nil, errors.New("aggregate: recognizer is nil")
	}
	variants, err := enhance.Select(cfg.Variants)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, rec: rec, variants: variants, logger: logger}, nil
}

// Run recognizes frame once per variant in order, stopping early once any
// fragment is more confident than EarlyExitConfidence. For DIN, adjacent
// fragments on one line are additionally merged into new candidates.
// A failing variant is logged and skipped; an error is returned only when
// every variant that ran failed.
func (a *Aggregator) Run(ctx context.Context, frame image.Image, family vocab.Family) (Result, error) {
	start := time.Now()
	var res Result
	scaled, scale := enhance.FitWidth(frame, a.cfg.MaxWidth)
	opts := a.cfg.Options(family)

	var errs []error
	var best float64
	for _, v := range a.variants {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Variants = append(res.Variants, v.Name)
		img := v.Apply(scaled)

		recStart := time.Now()
		frags, err := a.rec.ReadText(ctx, img, opts)
		res.Processing.RecognitionNs += time.Since(recStart).Nanoseconds()
		if err != nil {
			a.logger.Warn("recognizer failed", "variant", v.Name, "family", family.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", v.Name, err))
			continue
		}
		for _, f := range frags {
			if scale != 1 {
				f.Box = f.Box.Scale(1 / scale)
			}
			res.add(f)
			best = max(best, f.Confidence)
		}
		a.logger.Debug("variant recognized", "variant", v.Name, "fragments", len(frags), "best_confidence", best)
		if best > a.cfg.EarlyExitConfidence {
			res.EarlyExit = len(res.Variants) < len(a.variants)
			break
		}
	}

	if family == vocab.FamilyDIN && len(res.Fragments) > 0 {
		for _, g := range Group(res.Fragments, a.cfg.GroupMaxGap, a.cfg.GroupMaxVertical) {
			if g.Size > 1 && !res.hasText(g.Fragment.Text) {
				res.add(g.Fragment)
			}
		}
	}

	res.Processing.TotalNs = time.Since(start).Nanoseconds()
	if len(errs) == len(res.Variants) && len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

func (r *Result) add(f recognizer.Fragment) {
	if !r.hasText(f.Text) {
		r.Texts = append(r.Texts, f.Text)
	}
	r.Fragments = append(r.Fragments, f)
}

func (r *Result) hasText(text string) bool {
	for _, t := range r.Texts {
		if t == text {
			return true
		}
	}
	return false
}
