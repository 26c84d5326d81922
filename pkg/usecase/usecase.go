package usecase

import (
	"time"

	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
)

type UseCases struct {
	repo           interfaces.Repository
	calendarConfig config.Calendar
	workloadConfig config.Workload
	tracker        interfaces.WorkTracker
	narrative      interfaces.NarrativeGenerator
	notifier       interfaces.Notifier
	archiver       interfaces.Archiver
	now            func() time.Time

	Calendar  *CalendarUseCase
	Capacity  *CapacityUseCase
	Analytics *AnalyticsUseCase
	Report    *ReportUseCase
	Admin     *AdminUseCase
}

type Option func(*UseCases)

func WithCalendarConfig(cfg config.Calendar) Option {
	return func(uc *UseCases) {
		uc.calendarConfig = cfg
	}
}

func WithWorkloadConfig(cfg config.Workload) Option {
	return func(uc *UseCases) {
		uc.workloadConfig = cfg
	}
}

func WithTracker(tracker interfaces.WorkTracker) Option {
	return func(uc *UseCases) {
		uc.tracker = tracker
	}
}

// WithNarrativeGenerator enables LLM narratives. Without it reports carry
// a fallback narrative built from the figures.
func WithNarrativeGenerator(gen interfaces.NarrativeGenerator) Option {
	return func(uc *UseCases) {
		uc.narrative = gen
	}
}

func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func WithArchiver(archiver interfaces.Archiver) Option {
	return func(uc *UseCases) {
		uc.archiver = archiver
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:           repo,
		calendarConfig: config.DefaultCalendar(),
		workloadConfig: config.Workload{Priorities: config.DefaultPriorities()},
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Calendar = NewCalendarUseCase(repo, uc.calendarConfig)
	uc.Capacity = NewCapacityUseCase(repo, uc.Calendar)
	uc.Analytics = NewAnalyticsUseCase(repo, uc.Capacity, uc.tracker, uc.workloadConfig)
	uc.Report = NewReportUseCase(repo, uc.Analytics, uc.narrative, uc.notifier, uc.archiver, uc.now)
	cache, _ := uc.tracker.(interfaces.TrackerCache)
	uc.Admin = NewAdminUseCase(repo, cache, uc.now)

	return uc
}
