package core

import "fmt"

// TodaySummary is the running total shown next to the entry form.
type TodaySummary struct {
	TotalAmount  float64
	ExpenseCount int
}

// Text describes today's spending in one sentence.
func (s TodaySummary) Text() string {
	if s.ExpenseCount == 0 {
		return "No expenses today"
	}
	return fmt.Sprintf("%s spent across %d %s today", FormatAmount(s.TotalAmount), s.ExpenseCount, Plural(s.ExpenseCount, "expense", "expenses"))
}

// Average returns the mean amount per expense, 0 when there are none.
func (s TodaySummary) Average() float64 {
	if s.ExpenseCount == 0 {
		return 0
	}
	return s.TotalAmount / float64(s.ExpenseCount)
}

// Plural picks the singular form only when n is exactly 1.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
