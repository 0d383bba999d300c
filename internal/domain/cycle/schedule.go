package cycle

import (
	"time"

	"github.com/teambition/rrule-go"

	"merry/internal/domain/apperr"
)

// MaxPeriods caps a cycle's length: ten years of weekly periods.
const MaxPeriods = 520

// Schedule returns the first n due dates starting at start (period 1 = start).
// Monthly schedules anchored past the 28th clamp to the last day of shorter
// months: Jan 31, Feb 28, Mar 31, Apr 30.
func Schedule(start time.Time, f Frequency, n int) ([]time.Time, error) {
	if n < 1 || n > MaxPeriods+1 {
		return nil, apperr.Invalid("schedule needs 1..%d periods, got %d", MaxPeriods+1, n)
	}
	opt := rrule.ROption{Dtstart: start, Count: n, Interval: 1}
	switch f {
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case FrequencyBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
		if d := start.Day(); d > 28 {
			for day := 28; day <= d; day++ {
				opt.Bymonthday = append(opt.Bymonthday, day)
			}
			opt.Bysetpos = []int{-1}
		}
	default:
		return nil, apperr.Invalid("unknown frequency %q", f)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, apperr.Invalid("schedule: %v", err)
	}
	return rule.All(), nil
}

// DueDate is the due date of 1-based period p.
func (c Cycle) DueDate(p int) (time.Time, error) {
	if p < 1 || p > c.TotalPeriods {
		return time.Time{}, apperr.Invalid("period %d outside 1..%d", p, c.TotalPeriods)
	}
	dates, err := Schedule(c.StartDate, c.Frequency, p)
	if err != nil {
		return time.Time{}, err
	}
	return dates[p-1], nil
}

// ComputeEndDate is start + frequency × total_periods, the day after the last
// period closes.
func (c Cycle) ComputeEndDate() (time.Time, error) {
	if c.TotalPeriods < 1 {
		return time.Time{}, apperr.Invalid("total_periods must be at least 1")
	}
	dates, err := Schedule(c.StartDate, c.Frequency, c.TotalPeriods+1)
	if err != nil {
		return time.Time{}, err
	}
	return dates[c.TotalPeriods], nil
}
