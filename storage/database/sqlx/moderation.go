package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/moderation"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ moderation.Repository = (*reportRepository)(nil) // interface compliance check

var reportSortFields = sortableFields("status", "reason", "reviewed_at", "created_at", "updated_at")

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

type reportRow struct {
	ID          string      `db:"id"`
	ReporterID  string      `db:"reporter_id"`
	TargetID    string      `db:"target_id"`
	ContentRef  null.String `db:"content_ref"`
	Reason      string      `db:"reason"`
	Description null.String `db:"description"`
	Status      string      `db:"status"`
	ReviewerID  null.String `db:"reviewer_id"`
	Notes       null.String `db:"notes"`
	ReviewedAt  null.Time   `db:"reviewed_at"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (repo reportRepository) toRow(rpt moderation.Report) reportRow {
	return reportRow{
		ID:          rpt.ID,
		ReporterID:  rpt.ReporterID,
		TargetID:    rpt.TargetID,
		ContentRef:  null.NewString(rpt.ContentRef, rpt.ContentRef != ""),
		Reason:      rpt.Reason,
		Description: null.NewString(rpt.Description, rpt.Description != ""),
		Status:      string(rpt.Status),
		ReviewerID:  null.NewString(rpt.ReviewerID, rpt.ReviewerID != ""),
		Notes:       null.NewString(rpt.Notes, rpt.Notes != ""),
		ReviewedAt:  null.NewTime(rpt.ReviewedAt.UTC(), !rpt.ReviewedAt.IsZero()),
		CreatedAt:   null.NewTime(rpt.CreatedAt.UTC(), !rpt.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(rpt.UpdatedAt.UTC(), !rpt.UpdatedAt.IsZero()),
	}
}

func (repo reportRepository) fromRow(row reportRow) moderation.Report {
	return moderation.Report{
		ID:          row.ID,
		ReporterID:  row.ReporterID,
		TargetID:    row.TargetID,
		ContentRef:  row.ContentRef.String,
		Reason:      row.Reason,
		Description: row.Description.String,
		Status:      moderation.Status(row.Status),
		ReviewerID:  row.ReviewerID.String,
		Notes:       row.Notes.String,
		ReviewedAt:  row.ReviewedAt.Time,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo reportRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return moderation.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo reportRepository) CreateReport(ctx context.Context, rpt moderation.Report) (moderation.Report, error) {
	rpt.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO content_reports (id, reporter_id, target_id, content_ref, reason, description,
		                             status, reviewer_id, notes, reviewed_at, created_at, updated_at)
		VALUES (:id, :reporter_id, :target_id, :content_ref, :reason, :description,
		        :status, :reviewer_id, :notes, :reviewed_at, :created_at, :updated_at)`,
		repo.toRow(rpt),
	)
	if err != nil {
		return moderation.Report{}, errors.Wrap(err, "creating report")
	}
	return rpt, nil
}

func (repo reportRepository) GetReportByID(ctx context.Context, id string) (moderation.Report, error) {
	var row reportRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM content_reports WHERE id = $1`, id); err != nil {
		return moderation.Report{}, repo.trapNoRowsErr(err, "getting report")
	}
	return repo.fromRow(row), nil
}

func (repo reportRepository) FilterReports(ctx context.Context, filter *moderation.QueryFilter, ordering []core.DBOrdering) ([]moderation.Report, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Status != "" {
			conds = append(conds, fmt.Sprintf("status = %s", arg(string(filter.Status))))
		}
		if filter.TargetID != "" {
			conds = append(conds, fmt.Sprintf("target_id = %s", arg(filter.TargetID)))
		}
		if filter.ReporterID != "" {
			conds = append(conds, fmt.Sprintf("reporter_id = %s", arg(filter.ReporterID)))
		}
	}

	query := `SELECT * FROM content_reports`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, reportSortFields, "created_at DESC")

	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering reports")
	}
	reports := make([]moderation.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, repo.fromRow(row))
	}
	return reports, nil
}

func (repo reportRepository) UpdateReport(ctx context.Context, rpt moderation.Report) (moderation.Report, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE content_reports
		SET status = :status, reviewer_id = :reviewer_id, notes = :notes,
		    reviewed_at = :reviewed_at, updated_at = :updated_at
		WHERE id = :id`,
		repo.toRow(rpt),
	)
	if err != nil {
		return moderation.Report{}, errors.Wrap(err, "updating report")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return moderation.Report{}, moderation.ErrNotFound
	}
	return rpt, nil
}

func (repo reportRepository) CountReportsAgainst(ctx context.Context, targetID string, status moderation.Status) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM content_reports WHERE target_id = $1 AND status = $2`, targetID, string(status))
	if err != nil {
		return 0, errors.Wrap(err, "counting reports")
	}
	return count, nil
}

func (repo reportRepository) ReportedUserIDs(ctx context.Context, status moderation.Status) ([]string, error) {
	var ids []string
	err := repo.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT target_id FROM content_reports WHERE status = $1`, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "getting reported users")
	}
	return ids, nil
}
