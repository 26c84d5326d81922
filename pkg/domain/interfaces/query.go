package interfaces

import (
	"context"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type QueryRepository interface {
	Put(ctx context.Context, query *model.SavedQuery) error
	Get(ctx context.Context, teamID types.TeamID) (*model.SavedQuery, error)
	Delete(ctx context.Context, teamID types.TeamID) error
}
