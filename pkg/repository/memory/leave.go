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

type leaveRepository struct {
	mu     sync.RWMutex
	leaves map[model.LeaveID]*model.Leave
}

func newLeaveRepository() *leaveRepository {
	return &leaveRepository{
		leaves: make(map[model.LeaveID]*model.Leave),
	}
}

func (r *leaveRepository) Put(ctx context.Context, leave *model.Leave) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := *leave
	stored.Start = model.Day(stored.Start)
	stored.End = model.Day(stored.End)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.leaves[stored.ID] = &stored
	return nil
}

func (r *leaveRepository) Get(ctx context.Context, id model.LeaveID) (*model.Leave, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leave, ok := r.leaves[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "leave not found", goerr.V("id", id))
	}
	copied := *leave
	return &copied, nil
}

func (r *leaveRepository) Delete(ctx context.Context, id model.LeaveID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leaves[id]; !ok {
		return goerr.Wrap(ErrNotFound, "leave not found", goerr.V("id", id))
	}
	delete(r.leaves, id)
	return nil
}

func (r *leaveRepository) FindByMember(ctx context.Context, memberID types.MemberID, status types.LeaveStatus, start, end time.Time) ([]*model.Leave, error) {
	return r.filter(model.NewDateRange(start, end), func(l *model.Leave) bool {
		return l.MemberID == memberID && l.Status == status
	}), nil
}

func (r *leaveRepository) List(ctx context.Context, start, end time.Time) ([]*model.Leave, error) {
	return r.filter(model.NewDateRange(start, end), func(*model.Leave) bool { return true }), nil
}

func (r *leaveRepository) filter(window model.DateRange, match func(*model.Leave) bool) []*model.Leave {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Leave
	for _, l := range r.leaves {
		if l.Overlaps(window) && match(l) {
			copied := *l
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Start.Equal(result[j].Start) {
			return result[i].ID < result[j].ID
		}
		return result[i].Start.Before(result[j].Start)
	})
	return result
}
