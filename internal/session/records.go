package session

import (
	"context"
	"slices"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/store"
)

// LoadToday replaces the in-memory list with today's persisted records.
func (s *Session) LoadToday(ctx context.Context) error {
	now := s.clock.Now()
	if s.store == nil {
		s.mu.Lock()
		s.day = now
		s.mu.Unlock()
		return nil
	}
	recs, err := s.store.LoadDay(ctx, now)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records = recs
	s.day = now
	s.mu.Unlock()
	return nil
}

// Records returns a copy of today's detections in acceptance order.
func (s *Session) Records() []store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Stats summarises today's in-memory detections.
func (s *Session) Stats() store.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := store.Stats{Total: int64(len(s.records))}
	for _, r := range s.records {
		if r.Status == store.StatusOK {
			st.OK++
		} else {
			st.NotOK++
		}
	}
	return st
}

// DeleteRecords removes records from the store and from the in-memory list.
func (s *Session) DeleteRecords(ctx context.Context, ids []uint) (int64, error) {
	var n int64
	if s.store != nil {
		var err error
		if n, err = s.store.Delete(ctx, ids); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	before := len(s.records)
	s.records = slices.DeleteFunc(s.records, func(r store.Record) bool {
		return r.ID != 0 && slices.Contains(ids, r.ID)
	})
	removed := int64(before - len(s.records))
	s.mu.Unlock()
	if s.store == nil {
		n = removed
	}
	s.logger.Info("records deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// CheckDailyReset clears the in-memory list when the calendar day changed
// since the last check, reloads the new day and notifies observers. It
// reports whether a reset happened.
func (s *Session) CheckDailyReset(ctx context.Context) bool {
	return s.checkDailyReset(ctx)
}

func (s *Session) checkDailyReset(ctx context.Context) bool {
	now := s.clock.Now()
	s.mu.Lock()
	if sameDay(s.day, now) {
		s.mu.Unlock()
		return false
	}
	s.day = now
	s.records = nil
	s.mu.Unlock()

	if s.store != nil {
		recs, err := s.store.LoadDay(ctx, now)
		if err != nil {
			s.logger.Warn("failed to reload records after daily reset", "error", err)
		} else {
			s.mu.Lock()
			if sameDay(s.day, now) {
				s.records = recs
			}
			s.mu.Unlock()
		}
	}
	s.logger.Info("daily reset", "day", now.Format(time.DateOnly))
	s.notify(func(o Observer) { o.OnDailyReset(now) })
	return true
}
