// Package report turns a snapshot of expenses into rollups, charts, trend
// figures and rule-based insights. Everything here is pure: callers pass the
// expenses, the calendar location and "now", and get fresh values back.
package report

import (
	"errors"
	"strings"

	"smartspend/internal/core"
)

// Period selects a logical reporting window.
type Period string

const (
	Last7Days  Period = "LAST_7_DAYS"
	Last30Days Period = "LAST_30_DAYS"
	ThisMonth  Period = "THIS_MONTH"
	LastMonth  Period = "LAST_MONTH"
	Custom     Period = "CUSTOM"
)

var ErrUnknownPeriod = errors.New("unknown period")

var periodNames = map[Period]string{
	Last7Days:  "Last 7 Days",
	Last30Days: "Last 30 Days",
	ThisMonth:  "This Month",
	LastMonth:  "Last Month",
	Custom:     "Custom Range",
}

// Periods lists every period in menu order.
func Periods() []Period {
	return []Period{Last7Days, Last30Days, ThisMonth, LastMonth, Custom}
}

func (p Period) DisplayName() string {
	if n, ok := periodNames[p]; ok {
		return n
	}
	return string(p)
}

func (p Period) IsValid() bool {
	_, ok := periodNames[p]
	return ok
}

// ParsePeriod accepts the enum name in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", ErrUnknownPeriod
	}
	return p, nil
}

// DateRange is an inclusive, non-empty span of calendar days.
type DateRange struct {
	Start core.Day `json:"start"`
	End   core.Day `json:"end"`
}

// Contains reports whether d lies within the range, bounds included.
func (r DateRange) Contains(d core.Day) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// DayCount returns the number of days in the range.
func (r DateRange) DayCount() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Days lists every day of the range in ascending order.
func (r DateRange) Days() []core.Day {
	days := make([]core.Day, 0, r.DayCount())
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Resolve maps a period to a concrete range relative to today. A custom
// period needs both bounds in order; otherwise it falls back to the last
// seven days.
func Resolve(period Period, customStart, customEnd *core.Day, today core.Day) DateRange {
	switch period {
	case Last30Days:
		return DateRange{Start: today.AddDays(-29), End: today}
	case ThisMonth:
		return DateRange{Start: today.FirstOfMonth(), End: today}
	case LastMonth:
		prev := today.FirstOfMonth().AddMonths(-1)
		return DateRange{Start: prev, End: prev.LastOfMonth()}
	case Custom:
		if customStart != nil && customEnd != nil && !customStart.After(*customEnd) {
			return DateRange{Start: *customStart, End: *customEnd}
		}
	}
	return DateRange{Start: today.AddDays(-6), End: today}
}

// Label is the heading shown for a selected period. It names the range
// Resolve produces, so an unusable custom range reads as the fallback.
func Label(period Period, customStart, customEnd *core.Day) string {
	if period == Custom {
		if customStart != nil && customEnd != nil && !customStart.After(*customEnd) {
			return customStart.String() + " to " + customEnd.String()
		}
		return Last7Days.DisplayName()
	}
	return period.DisplayName()
}
