package event

import (
	"testing"
	"time"
)

var lookBack = 30 * time.Minute

func testEvent(start time.Time, remindBefore int) Event {
	return Event{
		ID:           "e1",
		OwnerID:      "u1",
		Title:        "Dentist",
		Category:     CategoryAppointment,
		StartTime:    start,
		RemindBefore: remindBefore,
	}
}

func TestEvaluate(t *testing.T) {
	start := time.Date(2021, time.March, 2, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		evt      Event
		now      time.Time
		wantFire bool
	}{
		{
			name:     "inside window fires",
			evt:      testEvent(start, 30),
			now:      start.Add(-25 * time.Minute), // 13:35
			wantFire: true,
		},
		{
			name:     "not due yet",
			evt:      testEvent(start, 30),
			now:      start.Add(-40 * time.Minute), // 13:20
			wantFire: false,
		},
		{
			name:     "event in the past",
			evt:      testEvent(start, 30),
			now:      start.Add(5 * time.Minute), // 14:05
			wantFire: false,
		},
		{
			name:     "event starting right now",
			evt:      testEvent(start, 30),
			now:      start,
			wantFire: false,
		},
		{
			name:     "reminder exactly due",
			evt:      testEvent(start, 30),
			now:      start.Add(-30 * time.Minute),
			wantFire: true,
		},
		{
			name:     "stale reminder outside look-back",
			evt:      testEvent(start, 90),
			now:      start.Add(-15 * time.Minute), // reminder was due 75 min ago
			wantFire: false,
		},
		{
			name:     "completed never fires",
			evt:      Event{ID: "e1", Title: "x", StartTime: start, RemindBefore: 30, Completed: true},
			now:      start.Add(-25 * time.Minute),
			wantFire: false,
		},
		{
			name:     "no reminder configured",
			evt:      testEvent(start, 0),
			now:      start.Add(-25 * time.Minute),
			wantFire: false,
		},
		{
			name:     "malformed start time skipped",
			evt:      testEvent(time.Time{}, 30),
			now:      start,
			wantFire: false,
		},
		{
			name: "daily recurrence rolls to next occurrence",
			evt: Event{
				ID: "e1", Title: "Meds", Category: CategoryMedication,
				StartTime: start.AddDate(0, 0, -3), RemindBefore: 10, Recurrence: RecurrenceDaily,
			},
			now:      start.Add(-5 * time.Minute),
			wantFire: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			firings := Evaluate([]Event{tt.evt}, tt.now, lookBack)
			if fired := len(firings) > 0; fired != tt.wantFire {
				t.Fatalf("Evaluate() fired = %v, want %v", fired, tt.wantFire)
			}
		})
	}
}

func TestEvaluateMalformedEventDoesNotAbortBatch(t *testing.T) {
	start := time.Date(2021, time.March, 2, 14, 0, 0, 0, time.UTC)
	now := start.Add(-25 * time.Minute)

	events := []Event{
		testEvent(time.Time{}, 30), // malformed
		testEvent(start, 30),
	}
	firings := Evaluate(events, now, lookBack)
	if len(firings) != 1 {
		t.Fatalf("Evaluate() = %d firings, want 1", len(firings))
	}
	if firings[0].MinutesUntil != 25 {
		t.Errorf("MinutesUntil = %d, want 25", firings[0].MinutesUntil)
	}
	if firings[0].Body != "Appointment in 25 min" {
		t.Errorf("Body = %q", firings[0].Body)
	}
}

func TestFiringTagStablePerOccurrence(t *testing.T) {
	start := time.Date(2021, time.March, 2, 14, 0, 0, 0, time.UTC)
	evt := testEvent(start, 30)

	// two overlapping ticks inside the same window produce the same tag
	f1 := Evaluate([]Event{evt}, start.Add(-25*time.Minute), lookBack)
	f2 := Evaluate([]Event{evt}, start.Add(-20*time.Minute), lookBack)
	if f1[0].Tag != f2[0].Tag {
		t.Errorf("tags differ across ticks: %q vs %q", f1[0].Tag, f2[0].Tag)
	}

	// the next daily occurrence produces a new tag
	evt.Recurrence = RecurrenceDaily
	f3 := Evaluate([]Event{evt}, start.AddDate(0, 0, 1).Add(-25*time.Minute), lookBack)
	if f3[0].Tag == f1[0].Tag {
		t.Error("next occurrence reused the previous occurrence's tag")
	}
}

func TestCheckDue(t *testing.T) {
	start := time.Date(2021, time.March, 2, 14, 0, 0, 0, time.UTC)
	window := 30 * time.Minute

	tests := []struct {
		name     string
		evt      Event
		now      time.Time
		wantFire bool
	}{
		{name: "starting within window", evt: testEvent(start, 0), now: start.Add(-20 * time.Minute), wantFire: true},
		{name: "too far out", evt: testEvent(start, 0), now: start.Add(-45 * time.Minute), wantFire: false},
		{name: "already started", evt: testEvent(start, 0), now: start.Add(time.Minute), wantFire: false},
		{name: "completed", evt: Event{Title: "x", StartTime: start, Completed: true}, now: start.Add(-20 * time.Minute), wantFire: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			firings := CheckDue([]Event{tt.evt}, tt.now, window)
			if fired := len(firings) > 0; fired != tt.wantFire {
				t.Fatalf("CheckDue() fired = %v, want %v", fired, tt.wantFire)
			}
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	start := time.Date(2021, time.March, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		evt   Event
		after time.Time
		want  time.Time
	}{
		{name: "non-recurring in future", evt: testEvent(start, 0), after: start.AddDate(0, 0, -1), want: start},
		{name: "non-recurring in past stays put", evt: testEvent(start, 0), after: start.AddDate(0, 0, 2), want: start},
		{
			name:  "daily",
			evt:   Event{StartTime: start, Recurrence: RecurrenceDaily},
			after: start.AddDate(0, 0, 2).Add(time.Hour),
			want:  start.AddDate(0, 0, 3),
		},
		{
			name:  "weekly",
			evt:   Event{StartTime: start, Recurrence: RecurrenceWeekly},
			after: start.Add(time.Minute),
			want:  start.AddDate(0, 0, 7),
		},
		{
			name:  "monthly",
			evt:   Event{StartTime: start, Recurrence: RecurrenceMonthly},
			after: start.Add(time.Minute),
			want:  start.AddDate(0, 1, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.evt.NextOccurrence(tt.after); !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}
