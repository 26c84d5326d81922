package interfaces

import (
	"context"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	Get(ctx context.Context, id model.ReportID) (*model.Report, error)

	// ListByTeam returns the latest reports of a team, newest first
	ListByTeam(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Report, error)
}
