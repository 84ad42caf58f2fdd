package report

import (
	"sort"
	"strings"
	"time"

	"smartspend/internal/core"
)

// Criteria are combined with AND. Nil or empty fields do not filter.
type Criteria struct {
	Range    *DateRange
	Day      *core.Day
	Category *core.Category
	Query    string
}

// Filter returns the expenses matching every criterion, in source order.
// Day boundaries are evaluated in loc. The input slice is not modified.
func Filter(expenses []core.Expense, c Criteria, loc *time.Location) []core.Expense {
	query := strings.ToLower(c.Query)
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if c.Range != nil || c.Day != nil {
			day := e.Day(loc)
			if c.Range != nil && !c.Range.Contains(day) {
				continue
			}
			if c.Day != nil && day != *c.Day {
				continue
			}
		}
		if c.Category != nil && e.Category != *c.Category {
			continue
		}
		if query != "" && !Matches(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Matches reports whether a lower-cased query is a substring of the title,
// the notes or the category display name.
func Matches(e core.Expense, query string) bool {
	if strings.Contains(strings.ToLower(e.Title), query) {
		return true
	}
	if e.Notes != nil && strings.Contains(strings.ToLower(*e.Notes), query) {
		return true
	}
	return strings.Contains(strings.ToLower(e.Category.DisplayName()), query)
}

type SortOrder string

const (
	NewestFirst     SortOrder = "NEWEST_FIRST"
	OldestFirst     SortOrder = "OLDEST_FIRST"
	AmountHighToLow SortOrder = "AMOUNT_HIGH_TO_LOW"
	AmountLowToHigh SortOrder = "AMOUNT_LOW_TO_HIGH"
	Alphabetical    SortOrder = "ALPHABETICAL"
)

var sortNames = map[SortOrder]string{
	NewestFirst:     "Newest First",
	OldestFirst:     "Oldest First",
	AmountHighToLow: "Amount: High to Low",
	AmountLowToHigh: "Amount: Low to High",
	Alphabetical:    "Alphabetical",
}

func (s SortOrder) DisplayName() string { return sortNames[s] }

// ParseSortOrder defaults to NewestFirst for empty or unknown input.
func ParseSortOrder(s string) SortOrder {
	o := SortOrder(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := sortNames[o]; !ok {
		return NewestFirst
	}
	return o
}

// Sort returns a sorted copy. Ties keep their input order.
func Sort(expenses []core.Expense, order SortOrder) []core.Expense {
	out := append([]core.Expense(nil), expenses...)
	var less func(a, b core.Expense) bool
	switch order {
	case OldestFirst:
		less = func(a, b core.Expense) bool { return a.Timestamp < b.Timestamp }
	case AmountHighToLow:
		less = func(a, b core.Expense) bool { return a.Amount > b.Amount }
	case AmountLowToHigh:
		less = func(a, b core.Expense) bool { return a.Amount < b.Amount }
	case Alphabetical:
		less = func(a, b core.Expense) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		less = func(a, b core.Expense) bool { return a.Timestamp > b.Timestamp }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

type GroupingMode string

const (
	GroupNone       GroupingMode = "NONE"
	GroupByCategory GroupingMode = "BY_CATEGORY"
	GroupByDate     GroupingMode = "BY_DATE"
	GroupByAmount   GroupingMode = "BY_AMOUNT"
)

// ParseGroupingMode defaults to GroupNone for empty or unknown input.
func ParseGroupingMode(s string) GroupingMode {
	switch m := GroupingMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case GroupByCategory, GroupByDate, GroupByAmount:
		return m
	}
	return GroupNone
}

// Group is one labelled bucket of expenses.
type Group struct {
	Key      string         `json:"key"`
	Expenses []core.Expense `json:"expenses"`
}

// GroupExpenses buckets expenses by mode. Groups appear in order of their
// first member and members keep their input order. GroupNone yields nil.
func GroupExpenses(expenses []core.Expense, mode GroupingMode, loc *time.Location) []Group {
	var key func(core.Expense) string
	switch mode {
	case GroupByCategory:
		key = func(e core.Expense) string { return e.Category.DisplayName() }
	case GroupByDate:
		key = func(e core.Expense) string { return e.Time(loc).Format("02 Jan 2006") }
	case GroupByAmount:
		key = func(e core.Expense) string { return AmountBucket(e.Amount) }
	default:
		return nil
	}
	index := map[string]int{}
	var groups []Group
	for _, e := range expenses {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
	}
	return groups
}

// AmountBucket names the amount range an expense falls into.
func AmountBucket(amount float64) string {
	sym := core.CurrencySymbol
	switch {
	case amount < 100:
		return "Under " + sym + "100"
	case amount < 500:
		return sym + "100 - " + sym + "500"
	case amount < 1000:
		return sym + "500 - " + sym + "1000"
	case amount < 5000:
		return sym + "1000 - " + sym + "5000"
	default:
		return "Above " + sym + "5000"
	}
}
