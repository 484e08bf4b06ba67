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
	"github.com/trezcool/malezi/core/activity"
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

var logSortFields = sortableFields("child_name", "category", "mood", "occurred_at", "created_at")

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

type logRow struct {
	ID         string      `db:"id"`
	OwnerID    string      `db:"owner_id"`
	ChildName  string      `db:"child_name"`
	Category   string      `db:"category"`
	Mood       null.String `db:"mood"`
	Notes      null.String `db:"notes"`
	OccurredAt null.Time   `db:"occurred_at"`
	CreatedAt  null.Time   `db:"created_at"`
}

func (repo activityRepository) fromLogRow(row logRow) activity.Log {
	return activity.Log{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		ChildName:  row.ChildName,
		Category:   activity.Category(row.Category),
		Mood:       activity.Mood(row.Mood.String),
		Notes:      row.Notes.String,
		OccurredAt: row.OccurredAt.Time,
		CreatedAt:  row.CreatedAt.Time,
	}
}

func (repo activityRepository) CreateLog(ctx context.Context, log activity.Log) (activity.Log, error) {
	log.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, owner_id, child_name, category, mood, notes, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.OwnerID, log.ChildName, string(log.Category),
		null.NewString(string(log.Mood), log.Mood != ""),
		null.NewString(log.Notes, log.Notes != ""),
		log.OccurredAt.UTC(), log.CreatedAt.UTC(),
	)
	if err != nil {
		return activity.Log{}, errors.Wrap(err, "creating log")
	}
	return log, nil
}

func (repo activityRepository) GetLogByID(ctx context.Context, id string) (activity.Log, error) {
	var row logRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM activity_logs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return activity.Log{}, activity.ErrLogNotFound
	}
	if err != nil {
		return activity.Log{}, errors.Wrap(err, "getting log")
	}
	return repo.fromLogRow(row), nil
}

func (repo activityRepository) FilterLogs(ctx context.Context, ownerID string, filter activity.QueryFilter, ordering []core.DBOrdering) ([]activity.Log, error) {
	conds := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("category = %s", arg(string(filter.Category))))
	}
	if !filter.Since.IsZero() {
		conds = append(conds, fmt.Sprintf("occurred_at >= %s", arg(filter.Since.UTC())))
	}
	if !filter.Until.IsZero() {
		conds = append(conds, fmt.Sprintf("occurred_at < %s", arg(filter.Until.UTC())))
	}

	query := `SELECT * FROM activity_logs WHERE ` + strings.Join(conds, " AND ") + orderBy(ordering, logSortFields, "occurred_at DESC")

	var rows []logRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering logs")
	}
	logs := make([]activity.Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, repo.fromLogRow(row))
	}
	return logs, nil
}

func (repo activityRepository) DeleteLogsByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting logs")
	}
	return nil
}

type routineRow struct {
	ID          string         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Title       string         `db:"title"`
	Description null.String    `db:"description"`
	Schedule    null.String    `db:"schedule"`
	Steps       pq.StringArray `db:"steps"`
	IsActive    null.Bool      `db:"is_active"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func (repo activityRepository) fromRoutineRow(row routineRow) activity.Routine {
	return activity.Routine{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description.String,
		Schedule:    row.Schedule.String,
		Steps:       row.Steps,
		IsActive:    row.IsActive.Ptr(),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo activityRepository) CreateRoutine(ctx context.Context, routine activity.Routine) (activity.Routine, error) {
	routine.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO routines (id, owner_id, title, description, schedule, steps, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		routine.ID, routine.OwnerID, routine.Title,
		null.NewString(routine.Description, routine.Description != ""),
		null.NewString(routine.Schedule, routine.Schedule != ""),
		pq.Array(routine.Steps), null.BoolFromPtr(routine.IsActive),
		routine.CreatedAt.UTC(), routine.UpdatedAt.UTC(),
	)
	if err != nil {
		return activity.Routine{}, errors.Wrap(err, "creating routine")
	}
	return routine, nil
}

func (repo activityRepository) GetRoutineByID(ctx context.Context, id string) (activity.Routine, error) {
	var row routineRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM routines WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return activity.Routine{}, activity.ErrRoutineNotFound
	}
	if err != nil {
		return activity.Routine{}, errors.Wrap(err, "getting routine")
	}
	return repo.fromRoutineRow(row), nil
}

func (repo activityRepository) FilterRoutines(ctx context.Context, ownerID string) ([]activity.Routine, error) {
	var rows []routineRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM routines WHERE owner_id = $1 ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "filtering routines")
	}
	routines := make([]activity.Routine, 0, len(rows))
	for _, row := range rows {
		routines = append(routines, repo.fromRoutineRow(row))
	}
	return routines, nil
}

func (repo activityRepository) UpdateRoutine(ctx context.Context, routine activity.Routine) (activity.Routine, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE routines
		SET title = $2, description = $3, schedule = $4, steps = $5, is_active = $6, updated_at = $7
		WHERE id = $1`,
		routine.ID, routine.Title,
		null.NewString(routine.Description, routine.Description != ""),
		null.NewString(routine.Schedule, routine.Schedule != ""),
		pq.Array(routine.Steps), null.BoolFromPtr(routine.IsActive),
		routine.UpdatedAt.UTC(),
	)
	if err != nil {
		return activity.Routine{}, errors.Wrap(err, "updating routine")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return activity.Routine{}, activity.ErrRoutineNotFound
	}
	return routine, nil
}

func (repo activityRepository) DeleteRoutinesByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM routines WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting routines")
	}
	return nil
}
