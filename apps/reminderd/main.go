package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/notification"
	"github.com/trezcool/malezi/core/realtime"
	emailsvc "github.com/trezcool/malezi/services/email"
	logsvc "github.com/trezcool/malezi/services/logger"
	"github.com/trezcool/malezi/storage/database"
	sqlxrepos "github.com/trezcool/malezi/storage/database/sqlx"
)

// drainInterval is how often queued row changes are processed.
const drainInterval = time.Second

// reminderd listens for row changes over postgres NOTIFY, keeps reminder
// timers armed through the realtime bridge, and runs the fallback poller for
// reminders the timers missed.
func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "REMINDERD : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := database.OpenSQLX(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	evtSvc := event.NewService(sqlxrepos.NewEventRepository(db), conf)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), usrRepo, mailSvc, logger)

	core.ParseEmailTemplates(conf, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// timers fire through the notifier; the owner comes off the stored event
	scheduler := event.NewScheduler(conf.Reminder.SessionWindow, func(firing event.Firing) {
		evt, err := evtSvc.GetByID(ctx, firing.EventID)
		if err != nil {
			logger.Error("resolving fired event", errors.Wrap(err, "finding event by ID"))
			return
		}
		if err = notifSvc.Notify(ctx, evt.OwnerID, firing); err != nil {
			logger.Error("delivering reminder", err)
		}
	})
	defer scheduler.Stop()

	bridge := realtime.NewBridge(scheduler, usrRepo, chatNotifier{notifSvc}, logger)

	// keep timers armed across restarts: seed from events already in the DB
	if events, err := evtSvc.PendingReminders(ctx); err != nil {
		logger.Error("seeding scheduler", err)
	} else {
		var armed int
		for _, evt := range events {
			if scheduler.Schedule(evt) {
				armed++
			}
		}
		logger.Info(fmt.Sprintf("scheduler seeded; %d of %d reminders armed", armed, len(events)))
	}

	go func() {
		if err := database.Listen(ctx, conf, bridge, logger); err != nil && errors.Cause(err) != context.Canceled {
			logger.Error(fmt.Sprintf("listener exited: %v", err), err)
		}
	}()

	go func() {
		ticker := time.NewTicker(drainInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				bridge.Drain(ctx)
			}
		}
	}()

	// fallback for reminders whose timers were never armed (beyond the
	// scheduling window, or raised while this process was down)
	poller := event.NewPoller(evtSvc, notifSvc, logger, conf.Reminder)
	go func() {
		if err := poller.Run(ctx); err != nil {
			logger.Error(fmt.Sprintf("reminder poller exited: %v", err), err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: shutting down", sig))
}

// chatNotifier persists an unread-chat notification for the recipient.
type chatNotifier struct {
	svc *notification.Service
}

func (n chatNotifier) ChatReceived(ctx context.Context, msg realtime.ChatMessage) error {
	_, err := n.svc.Push(ctx, msg.RecipientID, "chat:"+msg.ID, notification.KindChat, "New message", msg.Body)
	return err
}
