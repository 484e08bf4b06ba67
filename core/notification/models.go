package notification

import "time"

type Kind string

const (
	KindReminder Kind = "reminder"
	KindChat     Kind = "chat"
	KindSystem   Kind = "system"
)

// Notification is a persisted in-app notification. (UserID, Tag) is unique:
// re-delivering the same tagged firing updates the existing row instead of
// duplicating it.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Tag       string    `json:"tag"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}
