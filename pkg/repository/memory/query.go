package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type queryRepository struct {
	mu      sync.RWMutex
	queries map[types.TeamID]*model.SavedQuery
}

func newQueryRepository() *queryRepository {
	return &queryRepository{
		queries: make(map[types.TeamID]*model.SavedQuery),
	}
}

func (r *queryRepository) Put(ctx context.Context, query *model.SavedQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *query
	stored.UpdatedAt = time.Now().UTC()
	r.queries[stored.TeamID] = &stored
	return nil
}

func (r *queryRepository) Get(ctx context.Context, teamID types.TeamID) (*model.SavedQuery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.queries[teamID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "saved query not found", goerr.V("team_id", teamID))
	}
	copied := *q
	return &copied, nil
}

func (r *queryRepository) Delete(ctx context.Context, teamID types.TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.queries[teamID]; !ok {
		return goerr.Wrap(ErrNotFound, "saved query not found", goerr.V("team_id", teamID))
	}
	delete(r.queries, teamID)
	return nil
}
