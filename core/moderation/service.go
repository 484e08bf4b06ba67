package moderation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

// reincidentThreshold is the number of resolved reports against a user after
// which they are flagged.
const reincidentThreshold = 2

var (
	// errors
	ErrNotFound = errors.New("report not found")
)

type (
	Repository interface {
		CreateReport(ctx context.Context, rpt Report) (Report, error)
		GetReportByID(ctx context.Context, id string) (Report, error)
		FilterReports(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error)
		UpdateReport(ctx context.Context, rpt Report) (Report, error)
		// CountReportsAgainst counts reports targeting the user with the given status.
		CountReportsAgainst(ctx context.Context, targetID string, status Status) (int, error)
		// ReportedUserIDs returns the distinct targets of reports with the given status.
		ReportedUserIDs(ctx context.Context, status Status) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

type QueryFilter struct {
	Status     Status `query:"status"`
	TargetID   string `query:"target_id"`
	ReporterID string `query:"reporter_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.TargetID == "" && qf.ReporterID == ""
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, reporterID string, nr NewReport) (Report, error) {
	now := time.Now().UTC()
	rpt := Report{
		ReporterID:  reporterID,
		TargetID:    nr.TargetID,
		ContentRef:  nr.ContentRef,
		Reason:      nr.Reason,
		Description: nr.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateReport(ctx, rpt)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Report, error) {
	return svc.repo.GetReportByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error) {
	return svc.repo.FilterReports(ctx, filter, ordering)
}

// Review applies a moderator decision to a pending report.
func (svc *Service) Review(ctx context.Context, id, reviewerID string, rr ReviewReport) (Report, error) {
	rpt, err := svc.repo.GetReportByID(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if err = rpt.Review(reviewerID, rr.Status, rr.Notes, time.Now()); err != nil {
		return Report{}, err
	}
	return svc.repo.UpdateReport(ctx, rpt)
}

// IsReincident reports whether the user has accumulated enough resolved
// reports to be flagged. This is a read-time aggregation, recomputed on every
// call; it is never stored, so deleting a report immediately clears the flag.
func (svc *Service) IsReincident(ctx context.Context, userID string) (bool, error) {
	cnt, err := svc.repo.CountReportsAgainst(ctx, userID, StatusResolved)
	if err != nil {
		return false, errors.Wrap(err, "counting resolved reports")
	}
	return cnt >= reincidentThreshold, nil
}

// Reincidents returns the IDs of all currently flagged users.
func (svc *Service) Reincidents(ctx context.Context) ([]string, error) {
	targets, err := svc.repo.ReportedUserIDs(ctx, StatusResolved)
	if err != nil {
		return nil, errors.Wrap(err, "listing reported users")
	}
	var flagged []string
	for _, id := range targets {
		reincident, err := svc.IsReincident(ctx, id)
		if err != nil {
			return nil, err
		}
		if reincident {
			flagged = append(flagged, id)
		}
	}
	return flagged, nil
}
