package report

import (
	"math"
	"time"

	"smartspend/internal/core"
)

type TrendDirection string

const (
	TrendUp     TrendDirection = "UP"
	TrendDown   TrendDirection = "DOWN"
	TrendStable TrendDirection = "STABLE"
)

// TrendBoundary picks the day the comparison window ends before.
type TrendBoundary string

const (
	// BoundaryEarliestExpense anchors on the earliest expense in the current
	// view, or today when the view is empty. The previous window is always
	// seven days long.
	BoundaryEarliestExpense TrendBoundary = "EARLIEST_EXPENSE"
	// BoundaryRangeStart anchors on the first day of the resolved range and
	// uses a previous window of the same length as the range.
	BoundaryRangeStart TrendBoundary = "RANGE_START"
)

// DefaultDeadband is the absolute change, in percentage points, below which
// a trend is STABLE.
const DefaultDeadband = 5.0

// Trend compares the current window total with the window before it.
type Trend struct {
	Direction      TrendDirection `json:"direction"`
	Change         float64        `json:"change"`
	CurrentTotal   float64        `json:"currentTotal"`
	PreviousTotal  float64        `json:"previousTotal"`
	PreviousWindow DateRange      `json:"previousWindow"`
}

// PercentChange returns the relative change from previous to current. A
// rise from zero reports 100 and no spend on either side reports 0.
func PercentChange(current, previous float64) float64 {
	switch {
	case previous > 0:
		return (current - previous) / previous * 100
	case current > 0:
		return 100
	default:
		return 0
	}
}

// Classify maps a change to a direction using the given deadband.
func Classify(change, deadband float64) TrendDirection {
	switch {
	case math.Abs(change) < deadband:
		return TrendStable
	case change > 0:
		return TrendUp
	default:
		return TrendDown
	}
}

// TrendOptions configures ComputeTrend.
type TrendOptions struct {
	Boundary TrendBoundary
	Range    DateRange
	Today    core.Day
	Location *time.Location
	Deadband float64
}

// ComputeTrend compares current (the already filtered view) with the
// expenses from all that fall in the preceding window.
func ComputeTrend(all, current []core.Expense, opts TrendOptions) Trend {
	var anchor core.Day
	length := 7
	switch opts.Boundary {
	case BoundaryRangeStart:
		anchor = opts.Range.Start
		length = opts.Range.DayCount()
	default:
		anchor = opts.Today
		if len(current) > 0 {
			earliest := current[0].Timestamp
			for _, e := range current[1:] {
				if e.Timestamp < earliest {
					earliest = e.Timestamp
				}
			}
			anchor = core.DayOf(earliest, opts.Location)
		}
	}

	prev := DateRange{Start: anchor.AddDays(-length), End: anchor.AddDays(-1)}
	previousTotal := Sum(Filter(all, Criteria{Range: &prev}, opts.Location))
	currentTotal := Sum(current)
	change := PercentChange(currentTotal, previousTotal)
	return Trend{
		Direction:      Classify(change, opts.Deadband),
		Change:         change,
		CurrentTotal:   currentTotal,
		PreviousTotal:  previousTotal,
		PreviousWindow: prev,
	}
}

// FormatChange renders a signed change such as "+12.5%".
func FormatChange(change float64) string {
	if change >= 0 {
		return "+" + core.FormatPercent(change)
	}
	return core.FormatPercent(change)
}
