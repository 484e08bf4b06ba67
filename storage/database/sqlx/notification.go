package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Tag       string      `db:"tag"`
	Kind      string      `db:"kind"`
	Title     string      `db:"title"`
	Body      null.String `db:"body"`
	Read      bool        `db:"read"`
	CreatedAt null.Time   `db:"created_at"`
}

func (repo notificationRepository) fromRow(row notificationRow) notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Tag:       row.Tag,
		Kind:      notification.Kind(row.Kind),
		Title:     row.Title,
		Body:      row.Body.String,
		Read:      row.Read,
		CreatedAt: row.CreatedAt.Time,
	}
}

func (repo notificationRepository) UpsertNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	notif.ID = uuid.New().String()
	var row notificationRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO notifications (id, user_id, tag, kind, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7)
		ON CONFLICT (user_id, tag) DO UPDATE
		SET kind = EXCLUDED.kind, title = EXCLUDED.title, body = EXCLUDED.body,
		    read = false, created_at = EXCLUDED.created_at
		RETURNING *`,
		notif.ID, notif.UserID, notif.Tag, string(notif.Kind), notif.Title,
		null.NewString(notif.Body, notif.Body != ""),
		notif.CreatedAt.UTC(),
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "upserting notification")
	}
	return repo.fromRow(row), nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM notifications WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return notification.Notification{}, notification.ErrNotFound
	}
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return repo.fromRow(row), nil
}

func (repo notificationRepository) FilterNotifications(ctx context.Context, userID string) ([]notification.Notification, error) {
	var rows []notificationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "filtering notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, repo.fromRow(row))
	}
	return notifs, nil
}

func (repo notificationRepository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, errors.Wrap(err, "counting unread")
	}
	return count, nil
}
