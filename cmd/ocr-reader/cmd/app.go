package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/aggregate"
	"github.com/Sigitfad/ocr-reader/internal/config"
	"github.com/Sigitfad/ocr-reader/internal/evidence"
	"github.com/Sigitfad/ocr-reader/internal/recognizer"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
)

// app is the wired runtime shared by the scanning commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	rec    recognizer.Recognizer
	store  *store.Store
	sess   *session.Session
}

type appOptions struct {
	// persist opens the record store and writes evidence images.
	persist bool
}

// newApp wires recognizer, store and session from cfg.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (a *app, err error) {
	a = &app{cfg: cfg, logger: slog.Default()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	vocabs, err := cfg.Vocabularies()
	if err != nil {
		return nil, err
	}
	a.rec, err = recognizer.New(cfg.Recognizer)
	if err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	agg, err := aggregate.New(a.rec, cfg.Aggregate, a.logger)
	if err != nil {
		return nil, err
	}

	sessOpts := []session.Option{
		session.WithLogger(a.logger),
		session.WithMatchParams(cfg.Matcher),
	}
	if opts.persist {
		a.store, err = store.Open(cfg.Store, a.logger)
		if err != nil {
			return nil, err
		}
		ev, err := evidence.NewWriter(cfg.Storage.Evidence)
		if err != nil {
			return nil, err
		}
		sessOpts = append(sessOpts, session.WithStore(a.store), session.WithEvidence(ev))
	}

	a.sess, err = session.New(agg, vocabs, cfg.Session, sessOpts...)
	if err != nil {
		return nil, err
	}
	if a.store != nil {
		if err := a.sess.LoadToday(ctx); err != nil {
			return nil, fmt.Errorf("load today's records: %w", err)
		}
	}
	return a, nil
}

// Close releases the recognizer and the database.
func (a *app) Close() error {
	var errs []error
	if a.rec != nil {
		errs = append(errs, a.rec.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// openStore opens only the record database.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Store, slog.Default())
}

// describe renders a scan result as one line of text.
func describe(res session.Result) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(res.Outcome)))
	switch res.Outcome {
	case session.OutcomeAccepted:
		d := res.Detection
		fmt.Fprintf(&b, " %s [%s] status=%s score=%.2f", d.Code, d.Family, d.Status, d.Score)
		if d.Record.ImagePath != "" {
			fmt.Fprintf(&b, " image=%s", d.Record.ImagePath)
		}
	case session.OutcomeRejected:
		fmt.Fprintf(&b, " %s", res.Message)
		if res.Best != nil {
			fmt.Fprintf(&b, " (read %s)", res.Best.Code)
		}
	default:
		if res.Best != nil {
			fmt.Fprintf(&b, " best=%s score=%.2f", res.Best.Code, res.Best.Score)
		}
	}
	if len(res.Texts) > 0 {
		fmt.Fprintf(&b, " texts=%q", res.Texts)
	}
	if res.Err != nil {
		fmt.Fprintf(&b, " error=%v", res.Err)
	}
	return b.String()
}
