package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

var (
	// errors
	ErrNotFound = errors.New("event not found")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// FilterEvents applies AND operation on available QueryFilter fields,
		// scoped to the owner.
		FilterEvents(ctx context.Context, ownerID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) error
		// PendingReminderEvents returns all non-completed events with a
		// reminder configured, across all users.
		PendingReminderEvents(ctx context.Context) ([]Event, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) Create(ctx context.Context, ownerID string, ne NewEvent) (Event, error) {
	now := time.Now().UTC()
	evt := Event{
		OwnerID:      ownerID,
		Title:        ne.Title,
		Description:  ne.Description,
		Location:     ne.Location,
		Category:     ne.Category,
		StartTime:    ne.StartTime.UTC(),
		RemindBefore: ne.RemindBefore,
		Recurrence:   ne.Recurrence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !ne.EndTime.IsZero() {
		evt.EndTime = ne.EndTime.UTC()
	}
	return svc.repo.CreateEvent(ctx, evt)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, ownerID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	return svc.repo.FilterEvents(ctx, ownerID, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, orig Event, ue UpdateEvent) (Event, error) {
	evt := orig
	evt.Title = ue.Title
	evt.Category = ue.Category
	evt.StartTime = ue.StartTime.UTC()
	if ue.Description != nil {
		evt.Description = *ue.Description
	}
	if ue.Location != nil {
		evt.Location = *ue.Location
	}
	if ue.EndTime != nil {
		evt.EndTime = ue.EndTime.UTC()
	}
	if ue.RemindBefore != nil {
		evt.RemindBefore = *ue.RemindBefore
	}
	if ue.Recurrence != nil {
		evt.Recurrence = *ue.Recurrence
	}
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

// Complete marks the event done; its reminder is no longer eligible to fire.
func (svc *Service) Complete(ctx context.Context, id string) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt.Completed = true
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}

// DailyAgenda returns today's non-completed events for the user, reminder and
// location included.
func (svc *Service) DailyAgenda(ctx context.Context, ownerID string, now time.Time) ([]Event, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	completed := false
	filter := &QueryFilter{
		Completed: &completed,
		From:      dayStart,
		To:        dayStart.AddDate(0, 0, 1),
	}
	ordering := []core.DBOrdering{{Field: "start_time", Ascending: true}}
	return svc.repo.FilterEvents(ctx, ownerID, filter, ordering)
}

// CheckReminders returns firings for the user's events starting within the
// configured check window (30 minutes by default).
func (svc *Service) CheckReminders(ctx context.Context, ownerID string, now time.Time) ([]Firing, error) {
	completed := false
	events, err := svc.repo.FilterEvents(ctx, ownerID, &QueryFilter{Completed: &completed}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "filtering events")
	}
	return CheckDue(events, now.UTC(), svc.conf.Reminder.CheckWindow), nil
}

// PendingReminders returns all events eligible for reminder evaluation,
// across all users.
func (svc *Service) PendingReminders(ctx context.Context) ([]Event, error) {
	return svc.repo.PendingReminderEvents(ctx)
}
