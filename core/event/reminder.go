package event

import (
	"fmt"
	"time"
)

// Firing is a derived decision: "a notification should be shown right now for
// this event". It is not persisted; Tag identifies the event occurrence so a
// delivery layer can deduplicate across overlapping poll ticks.
type Firing struct {
	EventID      string    `json:"id"`
	Tag          string    `json:"tag"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Category     Category  `json:"eventType"`
	StartTime    time.Time `json:"startTime"`
	MinutesUntil int       `json:"minutesUntil"`
}

// FiringTag derives the dedup key for one reminder occurrence of an event.
func FiringTag(eventID string, occurrence time.Time) string {
	return fmt.Sprintf("event-reminder:%s:%s", eventID, occurrence.UTC().Format("20060102T1504"))
}

// reminderAt is the instant at which the reminder for an occurrence becomes
// eligible to fire.
func reminderAt(evt Event, occurrence time.Time) time.Time {
	return occurrence.Add(-time.Duration(evt.RemindBefore) * time.Minute)
}

func newFiring(evt Event, occ, now time.Time) Firing {
	mins := int(occ.Sub(now) / time.Minute)
	return Firing{
		EventID:      evt.ID,
		Tag:          FiringTag(evt.ID, occ),
		Title:        evt.Title,
		Body:         fmt.Sprintf("%s in %d min", evt.Category.Label(), mins),
		Category:     evt.Category,
		StartTime:    occ,
		MinutesUntil: mins,
	}
}

// Evaluate decides which of the given events require a notification right now.
//
// An event fires iff its next occurrence is still in the future, its reminder
// time has been reached, and the reminder time is no older than lookBack.
// Reminders that went stale while the caller was away never fire
// retroactively; malformed events are skipped without aborting the batch.
func Evaluate(events []Event, now time.Time, lookBack time.Duration) []Firing {
	var firings []Firing
	for _, evt := range events {
		if evt.Completed || evt.RemindBefore <= 0 || evt.StartTime.IsZero() {
			continue
		}
		occ := evt.NextOccurrence(now)
		if !occ.After(now) {
			continue // already started or past; never fire late
		}
		rem := reminderAt(evt, occ)
		if rem.After(now) {
			continue // not due yet
		}
		if now.Sub(rem) > lookBack {
			continue // stale; window closed
		}
		firings = append(firings, newFiring(evt, occ, now))
	}
	return firings
}

// CheckDue reports events starting within the given window, regardless of
// their configured remind-before. This backs the server-side reminder check
// used for push delivery.
func CheckDue(events []Event, now time.Time, window time.Duration) []Firing {
	var firings []Firing
	for _, evt := range events {
		if evt.Completed || evt.StartTime.IsZero() {
			continue
		}
		occ := evt.NextOccurrence(now)
		if !occ.After(now) || occ.Sub(now) > window {
			continue
		}
		firings = append(firings, newFiring(evt, occ, now))
	}
	return firings
}
