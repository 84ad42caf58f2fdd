package report

import (
	"time"

	"smartspend/internal/core"
)

// Options configure a single Compute run. Zero values select the last
// seven days, the default thresholds and the earliest-expense boundary.
type Options struct {
	Period      Period
	CustomStart *core.Day
	CustomEnd   *core.Day
	Now         time.Time
	Location    *time.Location
	Thresholds  *Thresholds
	Boundary    TrendBoundary
}

// Analytics is the full report for one window.
type Analytics struct {
	Period             Period            `json:"period"`
	PeriodLabel        string            `json:"periodLabel"`
	Range              DateRange         `json:"range"`
	Expenses           []core.Expense    `json:"-"`
	DailyTotals        []DayTotal        `json:"dailyTotals"`
	CategoryBreakdown  []CategoryTotal   `json:"categoryBreakdown"`
	WeeklyChart        []ChartEntry      `json:"weeklyChart"`
	CategoryChart      []PieChartEntry   `json:"categoryChart"`
	TotalSpent         float64           `json:"totalSpent"`
	ExpenseCount       int               `json:"expenseCount"`
	DailyAverage       float64           `json:"dailyAverage"`
	HighestSpendingDay *DayTotal         `json:"highestSpendingDay,omitempty"`
	TopCategory        *CategoryTotal    `json:"topCategory,omitempty"`
	Trend              Trend             `json:"trend"`
	Insights           []SpendingInsight `json:"insights"`
	Recommendations    []string          `json:"recommendations"`
}

// HasData reports whether any expense fell inside the window.
func (a Analytics) HasData() bool {
	return a.ExpenseCount > 0
}

// Compute resolves the window, filters all expenses into it and derives
// every aggregate from that view. all is not modified.
func Compute(all []core.Expense, opts Options) Analytics {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	loc := opts.Location
	if loc == nil {
		loc = now.Location()
	}
	period := opts.Period
	if !period.IsValid() {
		period = Last7Days
	}
	th := DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	boundary := opts.Boundary
	if boundary == "" {
		boundary = BoundaryEarliestExpense
	}

	today := core.DayFromTime(now.In(loc))
	rng := Resolve(period, opts.CustomStart, opts.CustomEnd, today)
	filtered := Filter(all, Criteria{Range: &rng}, loc)

	daily := DailyTotals(filtered, rng, loc)
	breakdown := CategoryBreakdown(filtered)
	total := Sum(filtered)
	average := total / float64(rng.DayCount())

	a := Analytics{
		Period:            period,
		PeriodLabel:       Label(period, opts.CustomStart, opts.CustomEnd),
		Range:             rng,
		Expenses:          filtered,
		DailyTotals:       daily,
		CategoryBreakdown: breakdown,
		WeeklyChart:       WeeklyChart(daily),
		CategoryChart:     CategoryChart(breakdown),
		TotalSpent:        total,
		ExpenseCount:      len(filtered),
		DailyAverage:      average,
		Trend: ComputeTrend(all, filtered, TrendOptions{
			Boundary: boundary,
			Range:    rng,
			Today:    today,
			Location: loc,
			Deadband: th.TrendDeadband,
		}),
	}
	if d, ok := HighestDay(daily); ok {
		a.HighestSpendingDay = &d
	}
	if c, ok := TopCategory(breakdown); ok {
		a.TopCategory = &c
	}

	snap := Snapshot{DailyTotals: daily, Breakdown: breakdown, DailyAverage: average}
	a.Insights = Insights(snap, th, InsightRules)
	a.Recommendations = Recommendations(snap, th, RecommendationRules)
	return a
}
