package gamify

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrChallengeClosed = errors.New("challenge is not open")
)

// Stats is a user's gamification state. Points only ever go up; the daily
// counters reset on day rollover.
type Stats struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Points         int       `json:"points"`
	Streak         int       `json:"streak"`
	CompletedToday int       `json:"completed_today"`
	LastCheck      time.Time `json:"last_check"` // UTC; day of the last streak touch
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Touch advances the streak for `now` and resets the daily counter when the
// day has rolled over. Same day is a no-op; yesterday extends the streak; any
// longer gap (or a first touch) restarts it at 1.
func (s *Stats) Touch(now time.Time) {
	today := day(now)
	switch {
	case !s.LastCheck.IsZero() && day(s.LastCheck).Equal(today):
		return
	case !s.LastCheck.IsZero() && day(s.LastCheck).Equal(today.AddDate(0, 0, -1)):
		s.Streak++
	default:
		s.Streak = 1
	}
	// new day: the counter must restart at 0 so the goal equality check
	// below can trigger
	s.CompletedToday = 0
	s.LastCheck = today
}

// Award adds points. Amounts are always positive; points never decrease.
func (s *Stats) Award(points int) {
	if points > 0 {
		s.Points += points
	}
}

// RecordCompletion counts one completed action and reports whether the daily
// goal bonus fires. The bonus fires exactly when the counter becomes equal to
// the goal: skipping past it cannot double-fire, and a counter already above
// the goal never fires.
func (s *Stats) RecordCompletion(now time.Time, dailyGoal int) (bonus bool) {
	s.Touch(now)
	s.CompletedToday++
	s.UpdatedAt = now.UTC()
	return dailyGoal > 0 && s.CompletedToday == dailyGoal
}

// Challenge is a time-boxed goal with a bonus for reaching the target count.
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Target      int       `json:"target"`
	BonusPoints int       `json:"bonus_points"`
	StartsAt    time.Time `json:"starts_at"` // UTC
	EndsAt      time.Time `json:"ends_at"`   // UTC
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

func (c Challenge) Open(now time.Time) bool {
	now = now.UTC()
	return c.Active && !now.Before(c.StartsAt) && now.Before(c.EndsAt)
}

// Progress tracks one user's counter against a challenge.
type Progress struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	Count       int       `json:"count"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at,omitempty"` // UTC; zero until completed
	UpdatedAt   time.Time `json:"updated_at"`             // UTC
}

// Record increments the counter within the challenge window. Completion is
// set exactly once, when the counter reaches the target; further records on a
// completed challenge are no-ops.
func (p *Progress) Record(ch Challenge, now time.Time) (completedNow bool, err error) {
	if !ch.Open(now) {
		return false, ErrChallengeClosed
	}
	if p.Completed {
		return false, nil
	}
	p.Count++
	p.UpdatedAt = now.UTC()
	if p.Count >= ch.Target {
		p.Completed = true
		p.CompletedAt = now.UTC()
		return true, nil
	}
	return false, nil
}
