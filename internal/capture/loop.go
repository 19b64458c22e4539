package capture

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/session"
)

// ErrAlreadyLive is returned when the session is already in live mode.
var ErrAlreadyLive = errors.New("capture: live mode already running")

// Scanner is the part of the session the loop drives.
type Scanner interface {
	StartLive() bool
	StopLive()
	StartScan(ctx context.Context, frame image.Image, mode session.Mode) error
}

// Loop dispatches live scans at a fixed interval.
type Loop struct {
	src     Source
	scanner Scanner
	opts    Options
	logger  *slog.Logger
}

// NewLoop returns a loop reading from src.
func NewLoop(src Source, scanner Scanner, opts Options, logger *slog.Logger) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultOptions().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{src: src, scanner: scanner, opts: opts, logger: logger}
}

// Run holds the session in live mode until ctx is done. Every tick the
// newest unseen frame is prepared and dispatched; frames arriving while a
// scan is in flight are dropped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.scanner.StartLive() {
		return ErrAlreadyLive
	}
	defer l.scanner.StopLive()
	l.logger.Info("live capture started", "interval", l.opts.Interval.String())

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()
	var last uint64
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("live capture stopped")
			return nil
		case <-ticker.C:
			last = l.tick(ctx, last)
		}
	}
}

func (l *Loop) tick(ctx context.Context, last uint64) uint64 {
	f, ok := l.src.Latest()
	if !ok || f.Seq == last {
		return last
	}
	err := l.scanner.StartScan(ctx, l.opts.Prepare(f.Image), session.ModeLive)
	switch {
	case errors.Is(err, session.ErrBusy):
		l.logger.Debug("frame dropped, scan in flight", "frame", f.Name)
		return last
	case err != nil:
		l.logger.Warn("failed to dispatch scan", "frame", f.Name, "error", err)
	}
	return f.Seq
}
