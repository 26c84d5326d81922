package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
)

type holidayRepository struct {
	mu       sync.RWMutex
	holidays map[model.HolidayID]*model.Holiday
}

func newHolidayRepository() *holidayRepository {
	return &holidayRepository{
		holidays: make(map[model.HolidayID]*model.Holiday),
	}
}

func copyHoliday(h *model.Holiday) *model.Holiday {
	copied := *h
	if h.Hours != nil {
		hours := *h.Hours
		copied.Hours = &hours
	}
	return &copied
}

func (r *holidayRepository) Put(ctx context.Context, holiday *model.Holiday) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyHoliday(holiday)
	stored.Date = model.Day(stored.Date)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.holidays[stored.ID] = stored
	return nil
}

func (r *holidayRepository) Delete(ctx context.Context, id model.HolidayID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.holidays[id]; !ok {
		return goerr.Wrap(ErrNotFound, "holiday not found", goerr.V("id", id))
	}
	delete(r.holidays, id)
	return nil
}

func (r *holidayRepository) List(ctx context.Context, start, end time.Time) ([]*model.Holiday, error) {
	return r.filter(model.NewDateRange(start, end), func(*model.Holiday) bool { return true }), nil
}

func (r *holidayRepository) FindByLocation(ctx context.Context, location string, start, end time.Time) ([]*model.Holiday, error) {
	return r.filter(model.NewDateRange(start, end), func(h *model.Holiday) bool {
		return h.AppliesTo(location)
	}), nil
}

func (r *holidayRepository) filter(window model.DateRange, match func(*model.Holiday) bool) []*model.Holiday {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Holiday
	for _, h := range r.holidays {
		if window.Contains(h.Date) && match(h) {
			result = append(result, copyHoliday(h))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result
}
