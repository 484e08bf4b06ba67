package activity

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

var (
	// errors
	ErrLogNotFound     = errors.New("activity log not found")
	ErrRoutineNotFound = errors.New("routine not found")
)

type (
	Repository interface {
		CreateLog(ctx context.Context, log Log) (Log, error)
		GetLogByID(ctx context.Context, id string) (Log, error)
		FilterLogs(ctx context.Context, ownerID string, filter QueryFilter, ordering []core.DBOrdering) ([]Log, error)
		DeleteLogsByID(ctx context.Context, ids ...string) error

		CreateRoutine(ctx context.Context, routine Routine) (Routine, error)
		GetRoutineByID(ctx context.Context, id string) (Routine, error)
		FilterRoutines(ctx context.Context, ownerID string) ([]Routine, error)
		UpdateRoutine(ctx context.Context, routine Routine) (Routine, error)
		DeleteRoutinesByID(ctx context.Context, ids ...string) error
	}

	// Rewarder credits a completed action; recording a log counts as one.
	Rewarder interface {
		RecordCompletion(ctx context.Context, userID string) error
	}

	Service struct {
		repo     Repository
		rewarder Rewarder
		logger   core.Logger
	}
)

// NewService returns an activity service. rewarder may be nil; reward
// failures are logged, never returned.
func NewService(repo Repository, rewarder Rewarder, logger core.Logger) *Service {
	return &Service{repo: repo, rewarder: rewarder, logger: logger}
}

func (svc *Service) CreateLog(ctx context.Context, ownerID string, nl NewLog) (Log, error) {
	log, err := svc.repo.CreateLog(ctx, Log{
		OwnerID:    ownerID,
		ChildName:  nl.ChildName,
		Category:   nl.Category,
		Mood:       nl.Mood,
		Notes:      nl.Notes,
		OccurredAt: nl.OccurredAt.UTC(),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Log{}, errors.Wrap(err, "creating log")
	}
	if svc.rewarder != nil {
		if err = svc.rewarder.RecordCompletion(ctx, ownerID); err != nil {
			svc.logger.Error("recording completion", err)
		}
	}
	return log, nil
}

func (svc *Service) GetLogByID(ctx context.Context, id string) (Log, error) {
	return svc.repo.GetLogByID(ctx, id)
}

func (svc *Service) QueryLogs(ctx context.Context, ownerID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Log, error) {
	return svc.repo.FilterLogs(ctx, ownerID, filter, ordering)
}

func (svc *Service) DeleteLog(ctx context.Context, id string) error {
	return svc.repo.DeleteLogsByID(ctx, id)
}

func (svc *Service) CreateRoutine(ctx context.Context, ownerID string, nr NewRoutine) (Routine, error) {
	now := time.Now().UTC()
	active := true
	return svc.repo.CreateRoutine(ctx, Routine{
		OwnerID:     ownerID,
		Title:       nr.Title,
		Description: nr.Description,
		Schedule:    nr.Schedule,
		Steps:       nr.Steps,
		IsActive:    &active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetRoutineByID(ctx context.Context, id string) (Routine, error) {
	return svc.repo.GetRoutineByID(ctx, id)
}

func (svc *Service) QueryRoutines(ctx context.Context, ownerID string) ([]Routine, error) {
	return svc.repo.FilterRoutines(ctx, ownerID)
}

func (svc *Service) UpdateRoutine(ctx context.Context, routine Routine, ur UpdateRoutine) (Routine, error) {
	if ur.Title != "" {
		routine.Title = ur.Title
	}
	if ur.Description != nil {
		routine.Description = *ur.Description
	}
	if ur.Schedule != nil {
		routine.Schedule = *ur.Schedule
	}
	if ur.Steps != nil {
		routine.Steps = ur.Steps
	}
	if ur.IsActive != nil {
		routine.IsActive = ur.IsActive
	}
	routine.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRoutine(ctx, routine)
}

func (svc *Service) DeleteRoutine(ctx context.Context, id string) error {
	return svc.repo.DeleteRoutinesByID(ctx, id)
}
