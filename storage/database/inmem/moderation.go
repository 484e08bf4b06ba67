package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/moderation"
)

type reportRepository struct {
	db *DB
}

var _ moderation.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(_ context.Context, rpt moderation.Report) (moderation.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rpt.ID = newID()
	repo.db.reports[rpt.ID] = &rpt
	return rpt, nil
}

func (repo *reportRepository) GetReportByID(_ context.Context, id string) (moderation.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rpt, ok := repo.db.reports[id]; ok {
		return *rpt, nil
	}
	return moderation.Report{}, moderation.ErrNotFound
}

func (repo *reportRepository) FilterReports(_ context.Context, filter *moderation.QueryFilter, _ []core.DBOrdering) ([]moderation.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(rpt moderation.Report) bool {
		if filter == nil || filter.IsEmpty() {
			return true
		}
		if filter.Status != "" && rpt.Status != filter.Status {
			return false
		}
		if filter.TargetID != "" && rpt.TargetID != filter.TargetID {
			return false
		}
		if filter.ReporterID != "" && rpt.ReporterID != filter.ReporterID {
			return false
		}
		return true
	}

	var reports []moderation.Report
	for _, rpt := range repo.db.reports {
		if match(*rpt) {
			reports = append(reports, *rpt)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[j].CreatedAt.Before(reports[i].CreatedAt) })
	return reports, nil
}

func (repo *reportRepository) UpdateReport(_ context.Context, rpt moderation.Report) (moderation.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.reports[rpt.ID]; !ok {
		return moderation.Report{}, moderation.ErrNotFound
	}
	repo.db.reports[rpt.ID] = &rpt
	return rpt, nil
}

func (repo *reportRepository) CountReportsAgainst(_ context.Context, targetID string, status moderation.Status) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, rpt := range repo.db.reports {
		if rpt.TargetID == targetID && rpt.Status == status {
			count++
		}
	}
	return count, nil
}

func (repo *reportRepository) ReportedUserIDs(_ context.Context, status moderation.Status) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, rpt := range repo.db.reports {
		if rpt.Status != status {
			continue
		}
		if _, ok := seen[rpt.TargetID]; ok {
			continue
		}
		seen[rpt.TargetID] = struct{}{}
		ids = append(ids, rpt.TargetID)
	}
	sort.Strings(ids)
	return ids, nil
}
