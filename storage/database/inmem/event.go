package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/event"
)

type eventRepository struct {
	db *DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(_ context.Context, evt event.Event) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	evt.ID = newID()
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.events[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) FilterEvents(_ context.Context, ownerID string, filter *event.QueryFilter, ordering []core.DBOrdering) ([]event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(evt event.Event) bool {
		if evt.OwnerID != ownerID {
			return false
		}
		if filter == nil || filter.IsEmpty() {
			return true
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(evt.Title), s) &&
				!strings.Contains(strings.ToLower(evt.Description), s) &&
				!strings.Contains(strings.ToLower(evt.Location), s) {
				return false
			}
		}
		if filter.Category != "" && evt.Category != filter.Category {
			return false
		}
		if filter.Completed != nil && evt.Completed != *filter.Completed {
			return false
		}
		if !filter.From.IsZero() && evt.StartTime.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && !evt.StartTime.Before(filter.To) {
			return false
		}
		return true
	}

	var events []event.Event
	for _, evt := range repo.db.events {
		if match(*evt) {
			events = append(events, *evt)
		}
	}

	asc := true
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.Slice(events, func(i, j int) bool {
		if asc {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[j].StartTime.Before(events[i].StartTime)
	})
	return events, nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, evt event.Event) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.events[evt.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.events, id)
	}
	return nil
}

func (repo *eventRepository) PendingReminderEvents(_ context.Context) ([]event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var events []event.Event
	for _, evt := range repo.db.events {
		if !evt.Completed && evt.RemindBefore > 0 {
			events = append(events, *evt)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events, nil
}
