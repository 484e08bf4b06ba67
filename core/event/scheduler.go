package event

import (
	"sync"
	"time"
)

// Scheduler arms at most one cancellable timer per event. Rescheduling an
// event cancels its pending timer first, so an edited event can never fire a
// stale reminder; deleting or completing an event cancels outright.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	maxDelay time.Duration
	fire     func(Firing)

	nowFunc func() time.Time // mockable
}

// NewScheduler returns a Scheduler that invokes fire when a timer elapses.
// Timers further out than maxDelay are not armed; a later Schedule call (the
// next session, or the next poll) picks them up once they are close enough.
func NewScheduler(maxDelay time.Duration, fire func(Firing)) *Scheduler {
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		maxDelay: maxDelay,
		fire:     fire,
		nowFunc:  time.Now,
	}
}

// Schedule arms (or re-arms) the reminder timer for evt and reports whether a
// timer is now pending.
func (s *Scheduler) Schedule(evt Event) bool {
	s.Cancel(evt.ID)

	if evt.Completed || evt.RemindBefore <= 0 || evt.StartTime.IsZero() {
		return false
	}

	now := s.nowFunc()
	occ := evt.NextOccurrence(now)
	if !occ.After(now) {
		return false
	}
	delay := reminderAt(evt, occ).Sub(now)
	if delay < 0 {
		delay = 0 // due already; fire on the next tick of the runtime
	}
	if delay > s.maxDelay {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[evt.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, evt.ID)
		s.mu.Unlock()
		s.fire(newFiring(evt, occ, s.nowFunc()))
	})
	return true
}

// Cancel drops the pending timer for the event, if any.
func (s *Scheduler) Cancel(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[eventID]; ok {
		t.Stop()
		delete(s.timers, eventID)
	}
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
