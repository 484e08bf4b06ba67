package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		// UpsertNotification inserts the notification or, when a row with
		// the same (user, tag) exists, refreshes its title/body/created_at
		// and clears the read flag.
		UpsertNotification(ctx context.Context, notif Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		FilterNotifications(ctx context.Context, userID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) error
		CountUnread(ctx context.Context, userID string) (int, error)
	}

	// UserGetter resolves a user for email delivery.
	UserGetter interface {
		GetUserByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo    Repository
		users   UserGetter
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, users UserGetter, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, logger: logger}
}

// Notify persists the reminder firing as an in-app notification and sends the
// reminder email. The tag makes delivery idempotent; the email is best-effort
// and never fails the notification.
func (svc *Service) Notify(ctx context.Context, ownerID string, firing event.Firing) error {
	_, err := svc.repo.UpsertNotification(ctx, Notification{
		UserID:    ownerID,
		Tag:       firing.Tag,
		Kind:      KindReminder,
		Title:     firing.Title,
		Body:      firing.Body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "persisting notification")
	}

	svc.sendReminderEmail(ctx, ownerID, firing)
	return nil
}

func (svc *Service) sendReminderEmail(ctx context.Context, ownerID string, firing event.Firing) {
	usr, err := svc.users.GetUserByID(ctx, ownerID)
	if err != nil {
		svc.logger.Error("looking up reminder recipient", err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("Reminder: %s", firing.Title),
		TemplateName: "event-reminder",
		TemplateData: struct {
			EventTitle       string
			EventTime        time.Time
			EventType        string
			EventDescription string
		}{firing.Title, firing.StartTime, firing.Category.Label(), firing.Body},
	})
}

// Push records a non-reminder notification (chat, system).
func (svc *Service) Push(ctx context.Context, userID, tag string, kind Kind, title, body string) (Notification, error) {
	return svc.repo.UpsertNotification(ctx, Notification{
		UserID:    userID,
		Tag:       tag,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.FilterNotifications(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, id string) error {
	return svc.repo.MarkNotificationRead(ctx, id)
}

func (svc *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return svc.repo.CountUnread(ctx, userID)
}
