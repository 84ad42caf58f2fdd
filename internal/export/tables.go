package export

import (
	"time"

	"smartspend/internal/core"
	"smartspend/internal/report"
)

// Table is one named block of an exported report.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Tables lays out a report as summary, daily totals, category breakdown,
// insights, recommendations and the expense list. Times use loc.
func Tables(a report.Analytics, loc *time.Location) []Table {
	if loc == nil {
		loc = time.Local
	}

	summary := Table{Name: "Summary", Header: []string{"Field", "Value"}}
	summary.Rows = [][]any{
		{"Period", a.PeriodLabel},
		{"From", a.Range.Start.String()},
		{"To", a.Range.End.String()},
		{"Total Spent", core.Round2(a.TotalSpent)},
		{"Expenses", a.ExpenseCount},
		{"Daily Average", core.Round2(a.DailyAverage)},
		{"Trend", string(a.Trend.Direction)},
		{"Change", report.FormatChange(a.Trend.Change)},
	}
	if a.TopCategory != nil {
		summary.Rows = append(summary.Rows, []any{"Top Category", a.TopCategory.Category.DisplayName()})
	}
	if a.HighestSpendingDay != nil {
		summary.Rows = append(summary.Rows, []any{"Highest Day", a.HighestSpendingDay.Date.String()})
	}

	daily := Table{Name: "Daily Totals", Header: []string{"Date", "Amount", "Expenses"}}
	for _, d := range a.DailyTotals {
		daily.Rows = append(daily.Rows, []any{d.Date.String(), core.Round2(d.Amount), d.ExpenseCount})
	}

	cats := Table{Name: "Categories", Header: []string{"Category", "Amount", "Expenses", "Percentage"}}
	for _, c := range a.CategoryBreakdown {
		cats.Rows = append(cats.Rows, []any{c.Category.DisplayName(), core.Round2(c.Amount), c.ExpenseCount, core.FormatPercent(c.Percentage)})
	}

	insights := Table{Name: "Insights", Header: []string{"Type", "Title", "Description"}}
	for _, i := range a.Insights {
		insights.Rows = append(insights.Rows, []any{string(i.Type), i.Title, i.Description})
	}

	recs := Table{Name: "Recommendations", Header: []string{"Recommendation"}}
	for _, r := range a.Recommendations {
		recs.Rows = append(recs.Rows, []any{r})
	}

	expenses := Table{Name: "Expenses", Header: []string{"Date", "Time", "Title", "Category", "Amount", "Notes", "Receipt"}}
	for _, e := range a.Expenses {
		t := e.Time(loc)
		receipt := ""
		if e.ReceiptImagePath != nil {
			receipt = *e.ReceiptImagePath
		}
		expenses.Rows = append(expenses.Rows, []any{
			t.Format(time.DateOnly), t.Format("15:04"), e.Title, e.Category.DisplayName(),
			core.Round2(e.Amount), e.NotesValue(), receipt,
		})
	}

	return []Table{summary, daily, cats, insights, recs, expenses}
}
