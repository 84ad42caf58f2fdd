package report

import (
	"sort"
	"time"

	"smartspend/internal/core"
)

// DayTotal is the spend on one calendar day.
type DayTotal struct {
	Date         core.Day `json:"date"`
	Amount       float64  `json:"amount"`
	ExpenseCount int      `json:"expenseCount"`
}

// CategoryTotal is the spend on one category within a window.
type CategoryTotal struct {
	Category     core.Category `json:"category"`
	Amount       float64       `json:"amount"`
	ExpenseCount int           `json:"expenseCount"`
	Percentage   float64       `json:"percentage"`
}

// Sum adds up expense amounts.
func Sum(expenses []core.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// DailyTotals emits one entry per day of r in ascending order, including
// days without expenses. Expenses outside r are ignored.
func DailyTotals(expenses []core.Expense, r DateRange, loc *time.Location) []DayTotal {
	days := r.Days()
	out := make([]DayTotal, len(days))
	for i, d := range days {
		out[i] = DayTotal{Date: d}
	}
	for _, e := range expenses {
		day := e.Day(loc)
		if !r.Contains(day) {
			continue
		}
		i := r.Start.DaysUntil(day)
		out[i].Amount += e.Amount
		out[i].ExpenseCount++
	}
	return out
}

// CategoryBreakdown totals each category that has at least one expense and
// orders the result by amount, largest first. Equal amounts keep category
// declaration order.
func CategoryBreakdown(expenses []core.Expense) []CategoryTotal {
	total := Sum(expenses)
	sums := map[core.Category]*CategoryTotal{}
	for _, e := range expenses {
		ct, ok := sums[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			sums[e.Category] = ct
		}
		ct.Amount += e.Amount
		ct.ExpenseCount++
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range core.Categories() {
		ct, ok := sums[c]
		if !ok {
			continue
		}
		if total > 0 {
			ct.Percentage = ct.Amount / total * 100
		}
		out = append(out, *ct)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// HighestDay returns the first day with the maximum amount.
func HighestDay(totals []DayTotal) (DayTotal, bool) {
	if len(totals) == 0 {
		return DayTotal{}, false
	}
	best := totals[0]
	for _, t := range totals[1:] {
		if t.Amount > best.Amount {
			best = t
		}
	}
	return best, true
}

// TopCategory returns the head of a breakdown.
func TopCategory(breakdown []CategoryTotal) (CategoryTotal, bool) {
	if len(breakdown) == 0 {
		return CategoryTotal{}, false
	}
	return breakdown[0], true
}

// Share returns the breakdown entry for category c.
func Share(breakdown []CategoryTotal, c core.Category) (CategoryTotal, bool) {
	for _, ct := range breakdown {
		if ct.Category == c {
			return ct, true
		}
	}
	return CategoryTotal{}, false
}
