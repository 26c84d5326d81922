package memory

import (
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
)

// Memory is an in-process repository used for development and tests.
type Memory struct {
	team    *teamRepository
	holiday *holidayRepository
	leave   *leaveRepository
	query   *queryRepository
	report  *reportRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		team:    newTeamRepository(),
		holiday: newHolidayRepository(),
		leave:   newLeaveRepository(),
		query:   newQueryRepository(),
		report:  newReportRepository(),
	}
}

func (m *Memory) Team() interfaces.TeamRepository {
	return m.team
}

func (m *Memory) Holiday() interfaces.HolidayRepository {
	return m.holiday
}

func (m *Memory) Leave() interfaces.LeaveRepository {
	return m.leave
}

func (m *Memory) Query() interfaces.QueryRepository {
	return m.query
}

func (m *Memory) Report() interfaces.ReportRepository {
	return m.report
}

func (m *Memory) Close() error {
	return nil
}
