package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Team() TeamRepository
	Holiday() HolidayRepository
	Leave() LeaveRepository
	Query() QueryRepository
	Report() ReportRepository

	Close() error
}
