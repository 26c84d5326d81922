package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/model/config"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

// CalendarUseCase does the attendance arithmetic. Lookup failures never
// propagate: hour sums fall back to 0 and WorkingHours falls back to
// business hours only.
type CalendarUseCase struct {
	repo interfaces.Repository
	cfg  config.Calendar
}

func NewCalendarUseCase(repo interfaces.Repository, cfg config.Calendar) *CalendarUseCase {
	if cfg.HoursPerDay <= 0 {
		cfg.HoursPerDay = config.DefaultCalendar().HoursPerDay
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = model.GlobalLocation
	}
	return &CalendarUseCase{repo: repo, cfg: cfg}
}

// HoursPerDay returns the configured length of a business day
func (uc *CalendarUseCase) HoursPerDay() float64 {
	return uc.cfg.HoursPerDay
}

// DefaultLocation is used for members and teams without a location
func (uc *CalendarUseCase) DefaultLocation() string {
	return uc.cfg.DefaultLocation
}

func (uc *CalendarUseCase) IsWeekendDay(date time.Time) bool {
	return uc.cfg.IsWeekend(date.Weekday())
}

// BusinessDays counts non-weekend days in [start, end]. A reversed range
// counts as empty.
func (uc *CalendarUseCase) BusinessDays(start, end time.Time) int {
	from, to := model.Day(start), model.Day(end)
	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !uc.IsWeekendDay(d) {
			days++
		}
	}
	return days
}

// BusinessHours is BusinessDays times the configured hours per day
func (uc *CalendarUseCase) BusinessHours(start, end time.Time) float64 {
	return model.Round2(float64(uc.BusinessDays(start, end)) * uc.cfg.HoursPerDay)
}

// HolidayHours sums the hours of holidays at location or Global dated in
// [start, end]. Each returned record counts, even several on one date.
func (uc *CalendarUseCase) HolidayHours(ctx context.Context, start, end time.Time, location string) float64 {
	hours, err := uc.holidayHours(ctx, start, end, location)
	if err != nil {
		logging.From(ctx).Warn("holiday lookup failed, counting no holiday hours",
			"location", uc.location(location),
			"error", err.Error())
		return 0
	}
	return hours
}

// PTOHours sums the duration of approved leave overlapping [start, end]
func (uc *CalendarUseCase) PTOHours(ctx context.Context, memberID types.MemberID, start, end time.Time) float64 {
	hours, err := uc.ptoHours(ctx, memberID, start, end)
	if err != nil {
		logging.From(ctx).Warn("leave lookup failed, counting no PTO hours",
			MemberIDKey, memberID,
			"error", err.Error())
		return 0
	}
	return hours
}

// WorkingHours is max(0, business hours - PTO - holiday hours). PTO is
// skipped when memberID is empty. Holidays and PTO on the same date are
// both subtracted.
func (uc *CalendarUseCase) WorkingHours(ctx context.Context, start, end time.Time, location string, memberID types.MemberID) float64 {
	logger := logging.From(ctx)
	business := uc.BusinessHours(start, end)

	holiday, err := uc.holidayHours(ctx, start, end, location)
	if err != nil {
		logger.Warn("holiday lookup failed, using business hours only",
			"location", uc.location(location),
			"error", err.Error())
		return business
	}

	var pto float64
	if memberID != "" {
		pto, err = uc.ptoHours(ctx, memberID, start, end)
		if err != nil {
			logger.Warn("leave lookup failed, using business hours only",
				MemberIDKey, memberID,
				"error", err.Error())
			return business
		}
	}

	return model.Round2(max(0, business-pto-holiday))
}

// WorkingHoursBreakdown is the attendance window of one member or location
type WorkingHoursBreakdown struct {
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Location      string         `json:"location"`
	MemberID      types.MemberID `json:"memberId,omitempty"`
	BusinessDays  int            `json:"businessDays"`
	BusinessHours float64        `json:"businessHours"`
	HolidayHours  float64        `json:"holidayHours"`
	PTOHours      float64        `json:"ptoHours"`
	WorkingHours  float64        `json:"workingHours"`
}

// Breakdown validates the range and returns every figure of the window
func (uc *CalendarUseCase) Breakdown(ctx context.Context, start, end time.Time, location string, memberID types.MemberID) (*WorkingHoursBreakdown, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if memberID != "" {
		if err := memberID.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidInput, "invalid member ID", goerr.V(MemberIDKey, memberID))
		}
	}

	b := &WorkingHoursBreakdown{
		Start:         model.Day(start),
		End:           model.Day(end),
		Location:      uc.location(location),
		MemberID:      memberID,
		BusinessDays:  uc.BusinessDays(start, end),
		BusinessHours: uc.BusinessHours(start, end),
		HolidayHours:  uc.HolidayHours(ctx, start, end, location),
		WorkingHours:  uc.WorkingHours(ctx, start, end, location, memberID),
	}
	if memberID != "" {
		b.PTOHours = uc.PTOHours(ctx, memberID, start, end)
	}
	return b, nil
}

func (uc *CalendarUseCase) location(location string) string {
	if location == "" {
		return uc.cfg.DefaultLocation
	}
	return location
}

func (uc *CalendarUseCase) holidayHours(ctx context.Context, start, end time.Time, location string) (float64, error) {
	from, to := model.Day(start), model.Day(end)
	if to.Before(from) {
		return 0, nil
	}

	holidays, err := uc.repo.Holiday().FindByLocation(ctx, uc.location(location), from, to)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to find holidays")
	}

	var total float64
	for _, h := range holidays {
		total += h.HoursOrDefault()
	}
	return model.Round2(total), nil
}

func (uc *CalendarUseCase) ptoHours(ctx context.Context, memberID types.MemberID, start, end time.Time) (float64, error) {
	from, to := model.Day(start), model.Day(end)
	if to.Before(from) {
		return 0, nil
	}

	leaves, err := uc.repo.Leave().FindByMember(ctx, memberID, types.LeaveStatusApproved, from, to)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to find leave records")
	}

	var total float64
	for _, l := range leaves {
		total += l.Duration
	}
	return model.Round2(total), nil
}

func validateRange(start, end time.Time) error {
	r := model.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidRange, err.Error(),
			goerr.V("start", start.Format(model.DateLayout)),
			goerr.V("end", end.Format(model.DateLayout)))
	}
	if days := r.Days(); days > model.MaxRangeDays {
		return goerr.Wrap(ErrInvalidRange, "date range is too long",
			goerr.V("start", start.Format(model.DateLayout)),
			goerr.V("end", end.Format(model.DateLayout)),
			goerr.V("days", days),
			goerr.V("max_days", model.MaxRangeDays))
	}
	return nil
}
