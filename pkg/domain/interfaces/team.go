package interfaces

import (
	"context"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type TeamRepository interface {
	// Put creates or replaces a team, members included
	Put(ctx context.Context, team *model.Team) (*model.Team, error)

	// Get retrieves a team by ID
	Get(ctx context.Context, id types.TeamID) (*model.Team, error)

	// List retrieves all teams ordered by ID
	List(ctx context.Context) ([]*model.Team, error)

	// Delete deletes a team by ID
	Delete(ctx context.Context, id types.TeamID) error
}
