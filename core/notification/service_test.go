package notification

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/user"
)

type fakeRepository struct {
	rows map[string]Notification // key: userID + "/" + tag
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[string]Notification)}
}

func (r *fakeRepository) UpsertNotification(_ context.Context, notif Notification) (Notification, error) {
	key := notif.UserID + "/" + notif.Tag
	if existing, ok := r.rows[key]; ok {
		notif.ID = existing.ID
	} else {
		notif.ID = key
	}
	notif.Read = false
	r.rows[key] = notif
	return notif, nil
}

func (r *fakeRepository) GetNotificationByID(_ context.Context, id string) (Notification, error) {
	for _, n := range r.rows {
		if n.ID == id {
			return n, nil
		}
	}
	return Notification{}, ErrNotFound
}

func (r *fakeRepository) FilterNotifications(_ context.Context, userID string) ([]Notification, error) {
	var res []Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	return res, nil
}

func (r *fakeRepository) MarkNotificationRead(_ context.Context, id string) error {
	for key, n := range r.rows {
		if n.ID == id {
			n.Read = true
			r.rows[key] = n
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepository) CountUnread(_ context.Context, userID string) (int, error) {
	var count int
	for _, n := range r.rows {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeUsers struct {
	usr user.User
	err error
}

func (u fakeUsers) GetUserByID(context.Context, string) (user.User, error) { return u.usr, u.err }

type fakeMailer struct {
	sent []*core.EmailMessage
}

func (m *fakeMailer) SendMessages(msgs ...*core.EmailMessage) { m.sent = append(m.sent, msgs...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testFiring(tag string) event.Firing {
	return event.Firing{
		EventID:      "evt1",
		Tag:          tag,
		Title:        "Speech therapy",
		Body:         "Therapy in 25 min",
		Category:     event.CategoryTherapy,
		StartTime:    time.Now().Add(25 * time.Minute).UTC(),
		MinutesUntil: 25,
	}
}

func TestServiceNotifyUpserts(t *testing.T) {
	repo := newFakeRepository()
	mailer := &fakeMailer{}
	svc := NewService(repo, fakeUsers{usr: user.User{ID: "usr1", Email: "parent@test.com"}}, mailer, nopLogger{})
	ctx := context.Background()

	firing := testFiring("event-reminder:evt1:20210302T1400")
	if err := svc.Notify(ctx, "usr1", firing); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	// same tag again: no duplicate row
	if err := svc.Notify(ctx, "usr1", firing); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	notifs, _ := svc.Query(ctx, "usr1")
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs))
	}
	if notifs[0].Kind != KindReminder || notifs[0].Title != "Speech therapy" {
		t.Errorf("unexpected notification: %+v", notifs[0])
	}
	if len(mailer.sent) != 2 {
		t.Errorf("emails sent = %d, want 2", len(mailer.sent))
	}
	if got := mailer.sent[0].To[0].Address; got != "parent@test.com" {
		t.Errorf("email recipient = %q", got)
	}
}

// A failed recipient lookup only skips the email; the notification row is kept.
func TestServiceNotifyEmailBestEffort(t *testing.T) {
	repo := newFakeRepository()
	mailer := &fakeMailer{}
	svc := NewService(repo, fakeUsers{err: errors.New("user store down")}, mailer, nopLogger{})

	if err := svc.Notify(context.Background(), "usr1", testFiring("tag1")); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(repo.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(repo.rows))
	}
	if len(mailer.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(mailer.sent))
	}
}

func TestServiceMarkReadAndUnreadCount(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeUsers{}, &fakeMailer{}, nopLogger{})
	ctx := context.Background()

	n1, _ := svc.Push(ctx, "usr1", "chat:msg1", KindChat, "New message", "hello")
	_, _ = svc.Push(ctx, "usr1", "chat:msg2", KindChat, "New message", "again")

	if count, _ := svc.UnreadCount(ctx, "usr1"); count != 2 {
		t.Fatalf("UnreadCount() = %d, want 2", count)
	}
	if err := svc.MarkRead(ctx, n1.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if count, _ := svc.UnreadCount(ctx, "usr1"); count != 1 {
		t.Errorf("UnreadCount() = %d, want 1", count)
	}
}
