package gamify

import (
	"testing"
	"time"
)

var (
	today     = time.Date(2021, time.March, 2, 10, 0, 0, 0, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
)

func TestStatsTouch(t *testing.T) {
	tests := []struct {
		name       string
		stats      Stats
		wantStreak int
		wantToday  int
	}{
		{
			name:       "first touch starts streak",
			stats:      Stats{},
			wantStreak: 1,
			wantToday:  0,
		},
		{
			name:       "consecutive day increments",
			stats:      Stats{Streak: 4, CompletedToday: 3, LastCheck: yesterday},
			wantStreak: 5,
			wantToday:  0,
		},
		{
			name:       "same day is a no-op",
			stats:      Stats{Streak: 4, CompletedToday: 2, LastCheck: today.Add(-2 * time.Hour)},
			wantStreak: 4,
			wantToday:  2,
		},
		{
			name:       "gap resets to 1",
			stats:      Stats{Streak: 9, CompletedToday: 3, LastCheck: today.AddDate(0, 0, -3)},
			wantStreak: 1,
			wantToday:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.stats.Touch(today)
			if tt.stats.Streak != tt.wantStreak {
				t.Errorf("Streak = %d, want %d", tt.stats.Streak, tt.wantStreak)
			}
			if tt.stats.CompletedToday != tt.wantToday {
				t.Errorf("CompletedToday = %d, want %d", tt.stats.CompletedToday, tt.wantToday)
			}
		})
	}
}

func TestStatsRecordCompletionDailyBonus(t *testing.T) {
	const goal = 3
	stats := Stats{}

	// day 1: bonus fires exactly on the transition (goal-1) -> goal
	for i := 1; i <= goal+2; i++ {
		bonus := stats.RecordCompletion(today, goal)
		if want := i == goal; bonus != want {
			t.Errorf("completion %d: bonus = %v, want %v", i, bonus, want)
		}
	}

	// next day: counter resets, bonus can fire again
	tomorrow := today.AddDate(0, 0, 1)
	for i := 1; i <= goal; i++ {
		bonus := stats.RecordCompletion(tomorrow, goal)
		if want := i == goal; bonus != want {
			t.Errorf("day 2 completion %d: bonus = %v, want %v", i, bonus, want)
		}
	}
	if stats.Streak != 2 {
		t.Errorf("Streak = %d, want 2", stats.Streak)
	}
}

// A same-day counter already above the goal (e.g. state restored mid-day)
// must never fire the bonus: the check is by equality, not >=.
func TestStatsRecordCompletionAboveGoalNeverFires(t *testing.T) {
	stats := Stats{CompletedToday: 5, Streak: 1, LastCheck: today}
	if bonus := stats.RecordCompletion(today.Add(time.Hour), 3); bonus {
		t.Error("bonus fired with counter already above goal")
	}
}

func TestStatsAwardMonotonic(t *testing.T) {
	stats := Stats{Points: 100}
	stats.Award(10)
	stats.Award(0)
	stats.Award(-50) // ignored
	if stats.Points != 110 {
		t.Errorf("Points = %d, want 110", stats.Points)
	}
}

func TestProgressRecord(t *testing.T) {
	ch := Challenge{
		ID: "c1", Target: 2, BonusPoints: 25, Active: true,
		StartsAt: today.AddDate(0, 0, -1), EndsAt: today.AddDate(0, 0, 6),
	}

	var prog Progress

	done, err := prog.Record(ch, today)
	if err != nil || done {
		t.Fatalf("first record: done=%v err=%v", done, err)
	}
	done, err = prog.Record(ch, today)
	if err != nil || !done {
		t.Fatalf("target reached: done=%v err=%v", done, err)
	}
	if !prog.Completed || prog.CompletedAt.IsZero() {
		t.Fatalf("completion not recorded: %+v", prog)
	}

	// completed challenges are a no-op, not an error
	done, err = prog.Record(ch, today)
	if err != nil || done {
		t.Fatalf("post-completion record: done=%v err=%v", done, err)
	}
	if prog.Count != 2 {
		t.Errorf("Count = %d, want 2", prog.Count)
	}
}

func TestProgressRecordOutsideWindow(t *testing.T) {
	ch := Challenge{
		ID: "c1", Target: 2, Active: true,
		StartsAt: today.AddDate(0, 0, -8), EndsAt: today.AddDate(0, 0, -1),
	}
	var prog Progress
	if _, err := prog.Record(ch, today); err != ErrChallengeClosed {
		t.Fatalf("Record() error = %v, want ErrChallengeClosed", err)
	}

	inactive := Challenge{ID: "c2", Target: 2, StartsAt: today.AddDate(0, 0, -1), EndsAt: today.AddDate(0, 0, 6)}
	if _, err := prog.Record(inactive, today); err != ErrChallengeClosed {
		t.Fatalf("Record() on inactive challenge error = %v, want ErrChallengeClosed", err)
	}
}
