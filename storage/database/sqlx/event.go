package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/event"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

var eventSortFields = sortableFields("title", "category", "start_time", "end_time", "completed", "created_at", "updated_at")

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

type eventRow struct {
	ID           string      `db:"id"`
	OwnerID      string      `db:"owner_id"`
	Title        string      `db:"title"`
	Description  null.String `db:"description"`
	Location     null.String `db:"location"`
	Category     string      `db:"category"`
	StartTime    null.Time   `db:"start_time"`
	EndTime      null.Time   `db:"end_time"`
	RemindBefore int         `db:"remind_before"`
	Completed    bool        `db:"completed"`
	Recurrence   string      `db:"recurrence"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

func (repo eventRepository) toRow(evt event.Event) eventRow {
	return eventRow{
		ID:           evt.ID,
		OwnerID:      evt.OwnerID,
		Title:        evt.Title,
		Description:  null.NewString(evt.Description, evt.Description != ""),
		Location:     null.NewString(evt.Location, evt.Location != ""),
		Category:     string(evt.Category),
		StartTime:    null.NewTime(evt.StartTime.UTC(), !evt.StartTime.IsZero()),
		EndTime:      null.NewTime(evt.EndTime.UTC(), !evt.EndTime.IsZero()),
		RemindBefore: evt.RemindBefore,
		Completed:    evt.Completed,
		Recurrence:   string(evt.Recurrence),
		CreatedAt:    null.NewTime(evt.CreatedAt.UTC(), !evt.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(evt.UpdatedAt.UTC(), !evt.UpdatedAt.IsZero()),
	}
}

func (repo eventRepository) fromRow(row eventRow) event.Event {
	return event.Event{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		Title:        row.Title,
		Description:  row.Description.String,
		Location:     row.Location.String,
		Category:     event.Category(row.Category),
		StartTime:    row.StartTime.Time,
		EndTime:      row.EndTime.Time,
		RemindBefore: row.RemindBefore,
		Completed:    row.Completed,
		Recurrence:   event.Recurrence(row.Recurrence),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

func (repo eventRepository) fromRows(rows []eventRow) []event.Event {
	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, repo.fromRow(row))
	}
	return events
}

func (repo eventRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return event.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo eventRepository) CreateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	evt.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO calendar_events (id, owner_id, title, description, location, category, start_time,
		                             end_time, remind_before, completed, recurrence, created_at, updated_at)
		VALUES (:id, :owner_id, :title, :description, :location, :category, :start_time,
		        :end_time, :remind_before, :completed, :recurrence, :created_at, :updated_at)`,
		repo.toRow(evt),
	)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "creating event")
	}
	return evt, nil
}

func (repo eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM calendar_events WHERE id = $1`, id); err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, "getting event")
	}
	return repo.fromRow(row), nil
}

func (repo eventRepository) FilterEvents(ctx context.Context, ownerID string, filter *event.QueryFilter, ordering []core.DBOrdering) ([]event.Event, error) {
	conds := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s OR location ILIKE %[1]s)", p))
		}
		if filter.Category != "" {
			conds = append(conds, fmt.Sprintf("category = %s", arg(string(filter.Category))))
		}
		if filter.Completed != nil {
			conds = append(conds, fmt.Sprintf("completed = %s", arg(*filter.Completed)))
		}
		if !filter.From.IsZero() {
			conds = append(conds, fmt.Sprintf("start_time >= %s", arg(filter.From.UTC())))
		}
		if !filter.To.IsZero() {
			conds = append(conds, fmt.Sprintf("start_time < %s", arg(filter.To.UTC())))
		}
	}

	query := `SELECT * FROM calendar_events WHERE ` + strings.Join(conds, " AND ") + orderBy(ordering, eventSortFields, "start_time ASC")

	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering events")
	}
	return repo.fromRows(rows), nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE calendar_events
		SET title = :title, description = :description, location = :location, category = :category,
		    start_time = :start_time, end_time = :end_time, remind_before = :remind_before,
		    completed = :completed, recurrence = :recurrence, updated_at = :updated_at
		WHERE id = :id`,
		repo.toRow(evt),
	)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return evt, nil
}

func (repo eventRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}

func (repo eventRepository) PendingReminderEvents(ctx context.Context) ([]event.Event, error) {
	var rows []eventRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM calendar_events
		WHERE completed = false AND remind_before > 0 AND (recurrence <> '' OR start_time > now())
		ORDER BY start_time ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "loading pending reminder events")
	}
	return repo.fromRows(rows), nil
}
