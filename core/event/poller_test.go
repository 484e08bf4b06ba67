package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

type fakeRepository struct {
	Repository // panics on anything unimplemented

	mu     sync.Mutex
	events []Event
	err    error
}

func (r *fakeRepository) PendingReminderEvents(context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, r.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	fired   []Firing
	owners  []string
	failFor map[string]bool
}

func (n *fakeNotifier) Notify(_ context.Context, ownerID string, f Firing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[f.EventID] {
		return errors.New("boom")
	}
	n.fired = append(n.fired, f)
	n.owners = append(n.owners, ownerID)
	return nil
}

func (n *fakeNotifier) firings() []Firing {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Firing(nil), n.fired...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestPoller(repo Repository, notifier Notifier) *Poller {
	conf := &core.Config{
		Reminder: core.ReminderConfig{
			PollInterval:  time.Minute,
			CheckWindow:   30 * time.Minute,
			SessionWindow: 24 * time.Hour,
			LookBack:      30 * time.Minute,
		},
	}
	return NewPoller(NewService(repo, conf), notifier, nopLogger{}, conf.Reminder)
}

func TestPollerTickFiresOncePerOccurrence(t *testing.T) {
	now := time.Date(2021, time.March, 2, 13, 35, 0, 0, time.UTC)
	repo := &fakeRepository{events: []Event{testEvent(now.Add(25*time.Minute), 30)}}
	notifier := &fakeNotifier{}

	p := newTestPoller(repo, notifier)
	p.nowFunc = func() time.Time { return now }

	// overlapping ticks: dedup is per tag, not per cycle
	p.Tick(context.Background())
	p.Tick(context.Background())
	p.Tick(context.Background())

	fired := notifier.firings()
	if len(fired) != 1 {
		t.Fatalf("fired %d times, want 1", len(fired))
	}
	if notifier.owners[0] != "u1" {
		t.Errorf("owner = %q, want u1", notifier.owners[0])
	}
}

func TestPollerTickNotifierErrorDoesNotAbortBatch(t *testing.T) {
	now := time.Date(2021, time.March, 2, 13, 35, 0, 0, time.UTC)
	bad := testEvent(now.Add(25*time.Minute), 30)
	good := testEvent(now.Add(20*time.Minute), 30)
	good.ID, good.Title = "e2", "Therapy"

	repo := &fakeRepository{events: []Event{bad, good}}
	notifier := &fakeNotifier{failFor: map[string]bool{"e1": true}}

	p := newTestPoller(repo, notifier)
	p.nowFunc = func() time.Time { return now }
	p.Tick(context.Background())

	fired := notifier.firings()
	if len(fired) != 1 || fired[0].EventID != "e2" {
		t.Fatalf("firings = %+v, want only e2", fired)
	}
}

func TestPollerTickRepoErrorIsContained(t *testing.T) {
	repo := &fakeRepository{err: errors.New("db down")}
	notifier := &fakeNotifier{}

	p := newTestPoller(repo, notifier)
	p.Tick(context.Background()) // must not panic

	if len(notifier.firings()) != 0 {
		t.Fatal("fired despite repository error")
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	repo := &fakeRepository{}
	p := newTestPoller(repo, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not exit on cancel")
	}
}
