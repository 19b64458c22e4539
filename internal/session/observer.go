package session

import (
	"maps"
	"slices"
	"time"
)

// Observer receives session events. Calls are made synchronously from the
// scanning goroutine; implementations must not block for long.
type Observer interface {
	// OnCandidateTexts receives every distinct fragment text of a scan.
	OnCandidateTexts(texts []string)
	OnAccepted(d Detection)
	// OnRejected receives the guidance message of a rejected match.
	OnRejected(message string)
	// OnNoMatch is only called for static scans.
	OnNoMatch()
	OnDailyReset(day time.Time)
}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are
// ignored.
type ObserverFuncs struct {
	CandidateTexts func(texts []string)
	Accepted       func(d Detection)
	Rejected       func(message string)
	NoMatch        func()
	DailyReset     func(day time.Time)
}

func (o ObserverFuncs) OnCandidateTexts(texts []string) {
	if o.CandidateTexts != nil {
		o.CandidateTexts(texts)
	}
}

func (o ObserverFuncs) OnAccepted(d Detection) {
	if o.Accepted != nil {
		o.Accepted(d)
	}
}

func (o ObserverFuncs) OnRejected(message string) {
	if o.Rejected != nil {
		o.Rejected(message)
	}
}

func (o ObserverFuncs) OnNoMatch() {
	if o.NoMatch != nil {
		o.NoMatch()
	}
}

func (o ObserverFuncs) OnDailyReset(day time.Time) {
	if o.DailyReset != nil {
		o.DailyReset(day)
	}
}

// Subscribe registers o and returns a function that removes it.
func (s *Session) Subscribe(o Observer) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// notify calls fn for every observer outside the session lock, in
// subscription order.
func (s *Session) notify(fn func(Observer)) {
	s.mu.Lock()
	ids := slices.Sorted(maps.Keys(s.observers))
	obs := make([]Observer, 0, len(ids))
	for _, id := range ids {
		obs = append(obs, s.observers[id])
	}
	s.mu.Unlock()
	for _, o := range obs {
		fn(o)
	}
}
