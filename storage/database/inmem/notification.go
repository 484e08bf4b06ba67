package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/malezi/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) UpsertNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := notif.UserID + "/" + notif.Tag
	if existing, ok := repo.db.notifications[key]; ok {
		notif.ID = existing.ID
	} else {
		notif.ID = newID()
	}
	notif.Read = false
	repo.db.notifications[key] = &notif
	return notif, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, notif := range repo.db.notifications {
		if notif.ID == id {
			return *notif, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) FilterNotifications(_ context.Context, userID string) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var notifs []notification.Notification
	for _, notif := range repo.db.notifications {
		if notif.UserID == userID {
			notifs = append(notifs, *notif)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[j].CreatedAt.Before(notifs[i].CreatedAt) })
	return notifs, nil
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, notif := range repo.db.notifications {
		if notif.ID == id {
			notif.Read = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (repo *notificationRepository) CountUnread(_ context.Context, userID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, notif := range repo.db.notifications {
		if notif.UserID == userID && !notif.Read {
			count++
		}
	}
	return count, nil
}
