package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/malezi/core"
)

// Notifier delivers a reminder firing to its owner. Implementations must
// treat Firing.Tag as the idempotence key.
type Notifier interface {
	Notify(ctx context.Context, ownerID string, firing Firing) error
}

// Poller periodically evaluates pending reminders and hands due firings to
// the Notifier. Overlapping ticks cannot double-fire: duplicate suppression
// is keyed by firing tag for the lifetime of the poller, not by poll cycle.
type Poller struct {
	svc      *Service
	notifier Notifier
	logger   core.Logger
	conf     core.ReminderConfig

	mu   sync.Mutex
	seen map[string]struct{}

	nowFunc func() time.Time // mockable
}

func NewPoller(svc *Service, notifier Notifier, logger core.Logger, conf core.ReminderConfig) *Poller {
	return &Poller{
		svc:      svc,
		notifier: notifier,
		logger:   logger,
		conf:     conf,
		seen:     make(map[string]struct{}),
		nowFunc:  time.Now,
	}
}

// Run blocks, ticking on the configured interval (and once immediately).
// It exits when ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p.conf.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", p.conf.PollInterval)
	}

	p.logger.Info(fmt.Sprintf("reminder poller started; interval %v", p.conf.PollInterval))
	p.Tick(ctx)

	ticker := time.NewTicker(p.conf.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reminder poller stopped")
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick evaluates all pending reminders once. A Notifier failure is logged and
// never aborts the batch.
func (p *Poller) Tick(ctx context.Context) {
	events, err := p.svc.PendingReminders(ctx)
	if err != nil {
		p.logger.Error(fmt.Sprintf("loading pending reminders: %v", err), err)
		return
	}

	now := p.nowFunc().UTC()
	for _, firing := range Evaluate(events, now, p.conf.LookBack) {
		if p.alreadyFired(firing.Tag) {
			continue
		}
		ownerID := p.ownerOf(events, firing.EventID)
		if err := p.notifier.Notify(ctx, ownerID, firing); err != nil {
			p.logger.Error(fmt.Sprintf("notifying reminder %s: %v", firing.Tag, err), err)
			continue
		}
		p.markFired(firing.Tag)
	}
}

func (p *Poller) ownerOf(events []Event, eventID string) string {
	for _, evt := range events {
		if evt.ID == eventID {
			return evt.OwnerID
		}
	}
	return ""
}

func (p *Poller) alreadyFired(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[tag]
	return ok
}

func (p *Poller) markFired(tag string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[tag] = struct{}{}
}
