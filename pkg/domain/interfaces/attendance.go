package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type HolidayRepository interface {
	Put(ctx context.Context, holiday *model.Holiday) error
	Delete(ctx context.Context, id model.HolidayID) error

	// List returns every holiday dated within [start, end], ordered by date
	List(ctx context.Context, start, end time.Time) ([]*model.Holiday, error)

	// FindByLocation returns holidays dated within [start, end] whose
	// location is location or model.GlobalLocation
	FindByLocation(ctx context.Context, location string, start, end time.Time) ([]*model.Holiday, error)
}

type LeaveRepository interface {
	Put(ctx context.Context, leave *model.Leave) error
	Get(ctx context.Context, id model.LeaveID) (*model.Leave, error)
	Delete(ctx context.Context, id model.LeaveID) error

	// FindByMember returns leave records of memberID with the given status
	// whose interval overlaps [start, end]
	FindByMember(ctx context.Context, memberID types.MemberID, status types.LeaveStatus, start, end time.Time) ([]*model.Leave, error)

	// List returns every leave record overlapping [start, end]
	List(ctx context.Context, start, end time.Time) ([]*model.Leave, error)
}
