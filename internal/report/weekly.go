package report

import (
	"fmt"
	"time"

	"smartspend/internal/core"
)

// CategorySummary totals one category over the weekly window.
type CategorySummary struct {
	Category      core.Category `json:"category"`
	TotalAmount   float64       `json:"totalAmount"`
	ExpenseCount  int           `json:"expenseCount"`
	AverageAmount float64       `json:"averageAmount"`
}

// WeeklyReport covers the seven calendar days ending today.
type WeeklyReport struct {
	WeekStart            int64                             `json:"weekStartDate"`
	WeekEnd              int64                             `json:"weekEndDate"`
	TotalAmount          float64                           `json:"totalAmount"`
	TotalExpenses        int                               `json:"totalExpenses"`
	DailyTotals          []DayTotal                        `json:"dailyTotals"`
	CategoryBreakdown    map[core.Category]CategorySummary `json:"categoryBreakdown"`
	AverageDailySpending float64                           `json:"averageDailySpending"`
}

// BuildWeekly summarizes the last seven days, today included. Every
// category appears in the breakdown, empty ones with zero totals.
func BuildWeekly(all []core.Expense, now time.Time, loc *time.Location) WeeklyReport {
	if loc == nil {
		loc = now.Location()
	}
	today := core.DayFromTime(now.In(loc))
	rng := DateRange{Start: today.AddDays(-6), End: today}
	week := Filter(all, Criteria{Range: &rng}, loc)

	breakdown := make(map[core.Category]CategorySummary, 4)
	for _, c := range core.Categories() {
		breakdown[c] = CategorySummary{Category: c}
	}
	for _, e := range week {
		cs := breakdown[e.Category]
		cs.TotalAmount += e.Amount
		cs.ExpenseCount++
		breakdown[e.Category] = cs
	}
	for c, cs := range breakdown {
		if cs.ExpenseCount > 0 {
			cs.AverageAmount = cs.TotalAmount / float64(cs.ExpenseCount)
			breakdown[c] = cs
		}
	}

	total := Sum(week)
	return WeeklyReport{
		WeekStart:            rng.Start.Start(loc).UnixMilli(),
		WeekEnd:              rng.End.End(loc).UnixMilli(),
		TotalAmount:          total,
		TotalExpenses:        len(week),
		DailyTotals:          DailyTotals(week, rng, loc),
		CategoryBreakdown:    breakdown,
		AverageDailySpending: total / 7,
	}
}

// HighestSpendingDay returns the first day with the largest total.
func (w WeeklyReport) HighestSpendingDay() (DayTotal, bool) {
	return HighestDay(w.DailyTotals)
}

// TopSpendingCategory returns the category with the largest total. Ties
// resolve in category declaration order.
func (w WeeklyReport) TopSpendingCategory() (CategorySummary, bool) {
	var best CategorySummary
	found := false
	for _, c := range core.Categories() {
		cs, ok := w.CategoryBreakdown[c]
		if !ok {
			continue
		}
		if !found || cs.TotalAmount > best.TotalAmount {
			best, found = cs, true
		}
	}
	return best, found
}

// CategoryPercentage returns the share of c in the weekly total.
func (w WeeklyReport) CategoryPercentage(c core.Category) float64 {
	if w.TotalAmount <= 0 {
		return 0
	}
	return w.CategoryBreakdown[c].TotalAmount / w.TotalAmount * 100
}

// WeeklySummary is the condensed form of a WeeklyReport.
type WeeklySummary struct {
	TotalAmount          float64        `json:"totalAmount"`
	TotalExpenses        int            `json:"totalExpenses"`
	AverageDailySpending float64        `json:"averageDailySpending"`
	TopCategory          *core.Category `json:"topCategory,omitempty"`
	TopCategoryAmount    float64        `json:"topCategoryAmount"`
	HighestSpendingDay   *core.Day      `json:"highestSpendingDay,omitempty"`
	HighestDayAmount     float64        `json:"highestDayAmount"`
}

// Summarize condenses a weekly report.
func Summarize(w WeeklyReport) WeeklySummary {
	s := WeeklySummary{
		TotalAmount:          w.TotalAmount,
		TotalExpenses:        w.TotalExpenses,
		AverageDailySpending: w.AverageDailySpending,
	}
	if cs, ok := w.TopSpendingCategory(); ok {
		c := cs.Category
		s.TopCategory = &c
		s.TopCategoryAmount = cs.TotalAmount
	}
	if d, ok := w.HighestSpendingDay(); ok {
		day := d.Date
		s.HighestSpendingDay = &day
		s.HighestDayAmount = d.Amount
	}
	return s
}

func (s WeeklySummary) SummaryText() string {
	if s.TotalExpenses == 0 {
		return "No expenses recorded this week"
	}
	return fmt.Sprintf("%s spent across %d %s this week",
		core.FormatAmount(s.TotalAmount), s.TotalExpenses, core.Plural(s.TotalExpenses, "expense", "expenses"))
}

// Insights returns the short textual highlights of the week.
func (s WeeklySummary) Insights() []string {
	if s.TotalExpenses == 0 {
		return []string{"No expenses recorded this week"}
	}
	out := []string{"Average daily spending: " + core.FormatAmount(s.AverageDailySpending)}
	if s.TopCategory != nil {
		out = append(out, fmt.Sprintf("Most spending in %s: %s", s.TopCategory.DisplayName(), core.FormatAmount(s.TopCategoryAmount)))
	}
	if s.HighestSpendingDay != nil {
		out = append(out, fmt.Sprintf("Highest spending on %s: %s", s.HighestSpendingDay.Weekday(), core.FormatAmount(s.HighestDayAmount)))
	}
	return out
}
