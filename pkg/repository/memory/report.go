package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type reportRepository struct {
	mu      sync.RWMutex
	reports map[model.ReportID]*model.Report
}

func newReportRepository() *reportRepository {
	return &reportRepository{
		reports: make(map[model.ReportID]*model.Report),
	}
}

func copyReport(r *model.Report) *model.Report {
	copied := *r
	copied.Risks = make([]model.Risk, len(r.Risks))
	copy(copied.Risks, r.Risks)
	return &copied
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[report.ID]; ok {
		return goerr.New("report already exists", goerr.V("id", report.ID))
	}
	r.reports[report.ID] = copyReport(report)
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id model.ReportID) (*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "report not found", goerr.V("id", id))
	}
	return copyReport(report), nil
}

func (r *reportRepository) ListByTeam(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Report
	for _, report := range r.reports {
		if report.TeamID == teamID {
			result = append(result, copyReport(report))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
