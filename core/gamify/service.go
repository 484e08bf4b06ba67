package gamify

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

var (
	// errors
	ErrChallengeNotFound = errors.New("challenge not found")
)

type (
	Repository interface {
		// GetStats returns the user's stats, creating a zeroed row on first access.
		GetStats(ctx context.Context, userID string) (Stats, error)
		SaveStats(ctx context.Context, stats Stats) (Stats, error)

		GetChallengeByID(ctx context.Context, id string) (Challenge, error)
		ActiveChallenges(ctx context.Context, now time.Time) ([]Challenge, error)
		// GetProgress returns the user's progress for a challenge, creating a
		// zeroed row on first access.
		GetProgress(ctx context.Context, userID, challengeID string) (Progress, error)
		SaveProgress(ctx context.Context, prog Progress) (Progress, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
	}

	// ActionResult reports what one completed action earned.
	ActionResult struct {
		Stats        Stats `json:"stats"`
		DailyBonus   bool  `json:"daily_bonus"`
		EarnedPoints int   `json:"earned_points"`
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return svc.repo.GetStats(ctx, userID)
}

// AwardPoints adds points to the user's total. Points increase monotonically.
func (svc *Service) AwardPoints(ctx context.Context, userID string, points int) (Stats, error) {
	stats, err := svc.repo.GetStats(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	stats.Award(points)
	stats.UpdatedAt = time.Now().UTC()
	return svc.repo.SaveStats(ctx, stats)
}

// RecordCompletion registers one completed action: touches the streak,
// increments the daily counter, awards completion points and, once per day,
// the daily goal bonus.
func (svc *Service) RecordCompletion(ctx context.Context, userID string) (ActionResult, error) {
	stats, err := svc.repo.GetStats(ctx, userID)
	if err != nil {
		return ActionResult{}, err
	}

	earned := svc.conf.Gamify.CompletionPoints
	bonus := stats.RecordCompletion(time.Now(), svc.conf.Gamify.DailyGoal)
	if bonus {
		earned += svc.conf.Gamify.DailyBonusPoints
	}
	stats.Award(earned)

	stats, err = svc.repo.SaveStats(ctx, stats)
	if err != nil {
		return ActionResult{}, errors.Wrap(err, "saving stats")
	}
	return ActionResult{Stats: stats, DailyBonus: bonus, EarnedPoints: earned}, nil
}

func (svc *Service) ActiveChallenges(ctx context.Context, now time.Time) ([]Challenge, error) {
	return svc.repo.ActiveChallenges(ctx, now)
}

// RecordChallengeProgress increments the user's counter for the challenge and
// awards the challenge bonus exactly once, when the target is reached.
func (svc *Service) RecordChallengeProgress(ctx context.Context, userID, challengeID string) (Progress, error) {
	ch, err := svc.repo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		return Progress{}, err
	}
	prog, err := svc.repo.GetProgress(ctx, userID, challengeID)
	if err != nil {
		return Progress{}, err
	}

	completedNow, err := prog.Record(ch, time.Now())
	if err != nil {
		return Progress{}, err
	}
	prog, err = svc.repo.SaveProgress(ctx, prog)
	if err != nil {
		return Progress{}, errors.Wrap(err, "saving progress")
	}

	if completedNow {
		if _, err = svc.AwardPoints(ctx, userID, ch.BonusPoints); err != nil {
			return Progress{}, errors.Wrap(err, "awarding challenge bonus")
		}
	}
	return prog, nil
}
