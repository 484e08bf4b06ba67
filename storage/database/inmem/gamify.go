package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/malezi/core/gamify"
)

type gamifyRepository struct {
	db *DB
}

var _ gamify.Repository = (*gamifyRepository)(nil) // interface compliance check

func NewGamifyRepository(db *DB) *gamifyRepository {
	return &gamifyRepository{db: db}
}

func (repo *gamifyRepository) GetStats(_ context.Context, userID string) (gamify.Stats, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if stats, ok := repo.db.stats[userID]; ok {
		return *stats, nil
	}
	stats := gamify.Stats{ID: newID(), UserID: userID}
	repo.db.stats[userID] = &stats
	return stats, nil
}

func (repo *gamifyRepository) SaveStats(_ context.Context, stats gamify.Stats) (gamify.Stats, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.stats[stats.UserID] = &stats
	return stats, nil
}

// AddChallenge seeds a challenge definition; tests use it directly.
func (repo *gamifyRepository) AddChallenge(ch gamify.Challenge) gamify.Challenge {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if ch.ID == "" {
		ch.ID = newID()
	}
	repo.db.challenges[ch.ID] = &ch
	return ch
}

func (repo *gamifyRepository) GetChallengeByID(_ context.Context, id string) (gamify.Challenge, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ch, ok := repo.db.challenges[id]; ok {
		return *ch, nil
	}
	return gamify.Challenge{}, gamify.ErrChallengeNotFound
}

func (repo *gamifyRepository) ActiveChallenges(_ context.Context, now time.Time) ([]gamify.Challenge, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var challenges []gamify.Challenge
	for _, ch := range repo.db.challenges {
		if ch.Open(now) {
			challenges = append(challenges, *ch)
		}
	}
	sort.Slice(challenges, func(i, j int) bool { return challenges[i].EndsAt.Before(challenges[j].EndsAt) })
	return challenges, nil
}

func (repo *gamifyRepository) GetProgress(_ context.Context, userID, challengeID string) (gamify.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := userID + "/" + challengeID
	if prog, ok := repo.db.progress[key]; ok {
		return *prog, nil
	}
	prog := gamify.Progress{ID: newID(), UserID: userID, ChallengeID: challengeID}
	repo.db.progress[key] = &prog
	return prog, nil
}

func (repo *gamifyRepository) SaveProgress(_ context.Context, prog gamify.Progress) (gamify.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.progress[prog.UserID+"/"+prog.ChallengeID] = &prog
	return prog, nil
}
