package activity

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type fakeRepository struct {
	Repository
	logs []Log
}

func (r *fakeRepository) CreateLog(_ context.Context, log Log) (Log, error) {
	log.ID = "log1"
	r.logs = append(r.logs, log)
	return log, nil
}

type fakeRewarder struct {
	calls int
	err   error
}

func (r *fakeRewarder) RecordCompletion(context.Context, string) error {
	r.calls++
	return r.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestServiceCreateLogRewards(t *testing.T) {
	repo := &fakeRepository{}
	rewarder := &fakeRewarder{}
	svc := NewService(repo, rewarder, nopLogger{})

	nl := NewLog{ChildName: "Sam", Category: CategoryMeal, OccurredAt: time.Now()}
	log, err := svc.CreateLog(context.Background(), "usr1", nl)
	if err != nil {
		t.Fatalf("CreateLog() error = %v", err)
	}
	if log.OwnerID != "usr1" || log.Category != CategoryMeal {
		t.Errorf("unexpected log: %+v", log)
	}
	if rewarder.calls != 1 {
		t.Errorf("rewarder calls = %d, want 1", rewarder.calls)
	}
}

// A reward failure must not fail the log write.
func TestServiceCreateLogRewardFailureIgnored(t *testing.T) {
	repo := &fakeRepository{}
	rewarder := &fakeRewarder{err: errors.New("stats store down")}
	svc := NewService(repo, rewarder, nopLogger{})

	nl := NewLog{ChildName: "Sam", Category: CategorySleep, OccurredAt: time.Now()}
	if _, err := svc.CreateLog(context.Background(), "usr1", nl); err != nil {
		t.Fatalf("CreateLog() error = %v", err)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("logs stored = %d, want 1", len(repo.logs))
	}
}

func TestServiceCreateLogNilRewarder(t *testing.T) {
	svc := NewService(&fakeRepository{}, nil, nopLogger{})
	nl := NewLog{ChildName: "Sam", Category: CategoryOther, OccurredAt: time.Now()}
	if _, err := svc.CreateLog(context.Background(), "usr1", nl); err != nil {
		t.Fatalf("CreateLog() error = %v", err)
	}
}
