package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type teamRepository struct {
	mu    sync.RWMutex
	teams map[types.TeamID]*model.Team
}

func newTeamRepository() *teamRepository {
	return &teamRepository{
		teams: make(map[types.TeamID]*model.Team),
	}
}

func copyTeam(t *model.Team) *model.Team {
	copied := *t
	copied.Members = make([]model.Member, len(t.Members))
	copy(copied.Members, t.Members)
	return &copied
}

func (r *teamRepository) Put(ctx context.Context, team *model.Team) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyTeam(team)
	stored.UpdatedAt = now
	if existing, ok := r.teams[team.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}

	r.teams[stored.ID] = stored
	return copyTeam(stored), nil
}

func (r *teamRepository) Get(ctx context.Context, id types.TeamID) (*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, ok := r.teams[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "team not found", goerr.V("id", id))
	}
	return copyTeam(team), nil
}

func (r *teamRepository) List(ctx context.Context) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := make([]*model.Team, 0, len(r.teams))
	for _, team := range r.teams {
		teams = append(teams, copyTeam(team))
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (r *teamRepository) Delete(ctx context.Context, id types.TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[id]; !ok {
		return goerr.Wrap(ErrNotFound, "team not found", goerr.V("id", id))
	}
	delete(r.teams, id)
	return nil
}
