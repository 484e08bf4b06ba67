package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateLog(_ context.Context, log activity.Log) (activity.Log, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	log.ID = newID()
	repo.db.logs[log.ID] = &log
	return log, nil
}

func (repo *activityRepository) GetLogByID(_ context.Context, id string) (activity.Log, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if log, ok := repo.db.logs[id]; ok {
		return *log, nil
	}
	return activity.Log{}, activity.ErrLogNotFound
}

func (repo *activityRepository) FilterLogs(_ context.Context, ownerID string, filter activity.QueryFilter, _ []core.DBOrdering) ([]activity.Log, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var logs []activity.Log
	for _, log := range repo.db.logs {
		if log.OwnerID != ownerID {
			continue
		}
		if filter.Category != "" && log.Category != filter.Category {
			continue
		}
		if !filter.Since.IsZero() && log.OccurredAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && !log.OccurredAt.Before(filter.Until) {
			continue
		}
		logs = append(logs, *log)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[j].OccurredAt.Before(logs[i].OccurredAt) })
	return logs, nil
}

func (repo *activityRepository) DeleteLogsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.logs, id)
	}
	return nil
}

func (repo *activityRepository) CreateRoutine(_ context.Context, routine activity.Routine) (activity.Routine, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	routine.ID = newID()
	repo.db.routines[routine.ID] = &routine
	return routine, nil
}

func (repo *activityRepository) GetRoutineByID(_ context.Context, id string) (activity.Routine, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if routine, ok := repo.db.routines[id]; ok {
		return *routine, nil
	}
	return activity.Routine{}, activity.ErrRoutineNotFound
}

func (repo *activityRepository) FilterRoutines(_ context.Context, ownerID string) ([]activity.Routine, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var routines []activity.Routine
	for _, routine := range repo.db.routines {
		if routine.OwnerID == ownerID {
			routines = append(routines, *routine)
		}
	}
	sort.Slice(routines, func(i, j int) bool { return routines[i].CreatedAt.Before(routines[j].CreatedAt) })
	return routines, nil
}

func (repo *activityRepository) UpdateRoutine(_ context.Context, routine activity.Routine) (activity.Routine, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.routines[routine.ID]; !ok {
		return activity.Routine{}, activity.ErrRoutineNotFound
	}
	repo.db.routines[routine.ID] = &routine
	return routine, nil
}

func (repo *activityRepository) DeleteRoutinesByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.routines, id)
	}
	return nil
}
