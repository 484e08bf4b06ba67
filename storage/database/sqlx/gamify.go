package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/gamify"
)

type gamifyRepository struct {
	db *sqlx.DB
}

var _ gamify.Repository = (*gamifyRepository)(nil) // interface compliance check

func NewGamifyRepository(db *sqlx.DB) *gamifyRepository {
	return &gamifyRepository{db: db}
}

type statsRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Points         int       `db:"points"`
	Streak         int       `db:"streak"`
	CompletedToday int       `db:"completed_today"`
	LastCheck      null.Time `db:"last_check"`
	UpdatedAt      null.Time `db:"updated_at"`
}

func (repo gamifyRepository) fromStatsRow(row statsRow) gamify.Stats {
	return gamify.Stats{
		ID:             row.ID,
		UserID:         row.UserID,
		Points:         row.Points,
		Streak:         row.Streak,
		CompletedToday: row.CompletedToday,
		LastCheck:      row.LastCheck.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

func (repo gamifyRepository) GetStats(ctx context.Context, userID string) (gamify.Stats, error) {
	var row statsRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM user_stats WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		// first access: start from a zeroed row
		stats := gamify.Stats{ID: uuid.New().String(), UserID: userID}
		_, err = repo.db.ExecContext(ctx, `
			INSERT INTO user_stats (id, user_id, points, streak, completed_today)
			VALUES ($1, $2, 0, 0, 0)
			ON CONFLICT (user_id) DO NOTHING`,
			stats.ID, userID,
		)
		if err != nil {
			return gamify.Stats{}, errors.Wrap(err, "initializing stats")
		}
		return stats, nil
	}
	if err != nil {
		return gamify.Stats{}, errors.Wrap(err, "getting stats")
	}
	return repo.fromStatsRow(row), nil
}

func (repo gamifyRepository) SaveStats(ctx context.Context, stats gamify.Stats) (gamify.Stats, error) {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE user_stats
		SET points = $2, streak = $3, completed_today = $4, last_check = $5, updated_at = $6
		WHERE user_id = $1`,
		stats.UserID, stats.Points, stats.Streak, stats.CompletedToday,
		null.NewTime(stats.LastCheck.UTC(), !stats.LastCheck.IsZero()),
		null.NewTime(stats.UpdatedAt.UTC(), !stats.UpdatedAt.IsZero()),
	)
	if err != nil {
		return gamify.Stats{}, errors.Wrap(err, "saving stats")
	}
	return stats, nil
}

type challengeRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Target      int         `db:"target"`
	BonusPoints int         `db:"bonus_points"`
	StartsAt    time.Time   `db:"starts_at"`
	EndsAt      time.Time   `db:"ends_at"`
	Active      bool        `db:"active"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (repo gamifyRepository) fromChallengeRow(row challengeRow) gamify.Challenge {
	return gamify.Challenge{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description.String,
		Target:      row.Target,
		BonusPoints: row.BonusPoints,
		StartsAt:    row.StartsAt,
		EndsAt:      row.EndsAt,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt.Time,
	}
}

func (repo gamifyRepository) GetChallengeByID(ctx context.Context, id string) (gamify.Challenge, error) {
	var row challengeRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM weekly_challenges WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return gamify.Challenge{}, gamify.ErrChallengeNotFound
	}
	if err != nil {
		return gamify.Challenge{}, errors.Wrap(err, "getting challenge")
	}
	return repo.fromChallengeRow(row), nil
}

func (repo gamifyRepository) ActiveChallenges(ctx context.Context, now time.Time) ([]gamify.Challenge, error) {
	var rows []challengeRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM weekly_challenges
		WHERE active = true AND starts_at <= $1 AND ends_at > $1
		ORDER BY ends_at ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading active challenges")
	}
	challenges := make([]gamify.Challenge, 0, len(rows))
	for _, row := range rows {
		challenges = append(challenges, repo.fromChallengeRow(row))
	}
	return challenges, nil
}

type progressRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ChallengeID string    `db:"challenge_id"`
	Count       int       `db:"count"`
	Completed   bool      `db:"completed"`
	CompletedAt null.Time `db:"completed_at"`
	UpdatedAt   null.Time `db:"updated_at"`
}

func (repo gamifyRepository) GetProgress(ctx context.Context, userID, challengeID string) (gamify.Progress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM user_challenge_progress WHERE user_id = $1 AND challenge_id = $2`, userID, challengeID)
	if err == sql.ErrNoRows {
		prog := gamify.Progress{ID: uuid.New().String(), UserID: userID, ChallengeID: challengeID}
		_, err = repo.db.ExecContext(ctx, `
			INSERT INTO user_challenge_progress (id, user_id, challenge_id, count, completed)
			VALUES ($1, $2, $3, 0, false)
			ON CONFLICT (user_id, challenge_id) DO NOTHING`,
			prog.ID, userID, challengeID,
		)
		if err != nil {
			return gamify.Progress{}, errors.Wrap(err, "initializing progress")
		}
		return prog, nil
	}
	if err != nil {
		return gamify.Progress{}, errors.Wrap(err, "getting progress")
	}
	return gamify.Progress{
		ID:          row.ID,
		UserID:      row.UserID,
		ChallengeID: row.ChallengeID,
		Count:       row.Count,
		Completed:   row.Completed,
		CompletedAt: row.CompletedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}, nil
}

func (repo gamifyRepository) SaveProgress(ctx context.Context, prog gamify.Progress) (gamify.Progress, error) {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE user_challenge_progress
		SET count = $3, completed = $4, completed_at = $5, updated_at = $6
		WHERE user_id = $1 AND challenge_id = $2`,
		prog.UserID, prog.ChallengeID, prog.Count, prog.Completed,
		null.NewTime(prog.CompletedAt.UTC(), !prog.CompletedAt.IsZero()),
		null.NewTime(prog.UpdatedAt.UTC(), !prog.UpdatedAt.IsZero()),
	)
	if err != nil {
		return gamify.Progress{}, errors.Wrap(err, "saving progress")
	}
	return prog, nil
}
