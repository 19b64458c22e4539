package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/capture"
	"github.com/Sigitfad/ocr-reader/internal/session"
)

// dailyResetInterval is how often an idle session checks for a new day.
const dailyResetInterval = time.Minute

// startLive watches dir and drives live scans until ctx is done. The
// returned channel yields the first error of either goroutine, or nil.
func startLive(ctx context.Context, a *app, dir string, settle time.Duration) (<-chan error, error) {
	src, err := capture.NewDirSource(dir, settle, a.logger)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	loop := capture.NewLoop(src, a.sess, a.cfg.Capture, a.logger)

	errc := make(chan error, 2)
	go func() { errc <- src.Run(ctx) }()
	go func() { errc <- loop.Run(ctx) }()

	done := make(chan error, 1)
	go func() {
		first := <-errc
		second := <-errc
		if first == nil {
			first = second
		}
		done <- first
	}()
	return done, nil
}

// runDailyReset clears the session at midnight even when no scan runs.
func runDailyReset(ctx context.Context, sess *session.Session) {
	ticker := time.NewTicker(dailyResetInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess.CheckDailyReset(ctx)
		}
	}
}

// printer writes session events as text lines.
func printer(out io.Writer, logger *slog.Logger) session.Observer {
	return session.ObserverFuncs{
		Accepted: func(d session.Detection) {
			_, _ = fmt.Fprintf(out, "%s DETECTED %s [%s] status=%s score=%.2f\n",
				d.Record.Timestamp.Format(time.TimeOnly), d.Code, d.Family, d.Status, d.Score)
		},
		Rejected: func(message string) {
			_, _ = fmt.Fprintf(out, "%s REJECTED %s\n", time.Now().Format(time.TimeOnly), message)
		},
		CandidateTexts: func(texts []string) {
			logger.Debug("candidate texts", "texts", texts)
		},
		DailyReset: func(day time.Time) {
			_, _ = fmt.Fprintf(out, "new day %s, records cleared\n", day.Format(time.DateOnly))
		},
	}
}
