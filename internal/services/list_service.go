package services

import (
	"context"
	"fmt"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/repository"
	"smartspend/internal/report"
)

const listDateLayout = "02 Jan 2006"

// ListQuery selects and arranges the expense list. Filters combine with AND.
type ListQuery struct {
	Date     *core.Day
	Category *core.Category
	Query    string
	Sort     report.SortOrder
	Group    report.GroupingMode
}

type ListView struct {
	Title       string              `json:"title"`
	Summary     string              `json:"summary"`
	Status      Status              `json:"status"`
	Count       int                 `json:"count"`
	TotalAmount float64             `json:"totalAmount"`
	Sort        report.SortOrder    `json:"sort"`
	Group       report.GroupingMode `json:"group"`
	Expenses    []core.Expense      `json:"expenses"`
	Groups      []report.Group      `json:"groups,omitempty"`
}

type ListService struct {
	repo *repository.ExpenseRepository
}

func NewListService(repo *repository.ExpenseRepository) *ListService {
	return &ListService{repo: repo}
}

// List filters a fresh snapshot of every expense.
func (s *ListService) List(ctx context.Context, q ListQuery) (ListView, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return ListView{Status: StatusError}, err
	}
	return BuildListView(all, q, s.repo.Location()), nil
}

// BuildListView applies q to a snapshot. Day filters and date groups use loc.
func BuildListView(all []core.Expense, q ListQuery, loc *time.Location) ListView {
	if q.Sort == "" {
		q.Sort = report.NewestFirst
	}
	if q.Group == "" {
		q.Group = report.GroupNone
	}
	filtered := report.Filter(all, report.Criteria{Day: q.Date, Category: q.Category, Query: q.Query}, loc)
	sorted := report.Sort(filtered, q.Sort)

	v := ListView{
		Title:       ListTitle(q),
		Summary:     ListSummary(q, len(sorted)),
		Status:      StatusReady,
		Count:       len(sorted),
		TotalAmount: report.Sum(sorted),
		Sort:        q.Sort,
		Group:       q.Group,
		Expenses:    sorted,
		Groups:      report.GroupExpenses(sorted, q.Group, loc),
	}
	if v.Count == 0 {
		v.Status = StatusEmpty
	}
	return v
}

// ListTitle names the list after its most specific filter.
func ListTitle(q ListQuery) string {
	switch {
	case q.Date != nil:
		return "Expenses - " + formatDay(*q.Date)
	case q.Category != nil:
		return q.Category.DisplayName() + " Expenses"
	case q.Query != "":
		return "Search Results"
	}
	return "All Expenses"
}

// ListSummary describes how many expenses the list shows.
func ListSummary(q ListQuery, count int) string {
	if count == 0 {
		return "No expenses found"
	}
	noun := core.Plural(count, "expense", "expenses")
	switch {
	case q.Date != nil:
		return fmt.Sprintf("%d %s on %s", count, noun, formatDay(*q.Date))
	case q.Category != nil:
		return fmt.Sprintf("%d %s %s", count, q.Category.DisplayName(), noun)
	case q.Query != "":
		return fmt.Sprintf("%d %s matching '%s'", count, noun, q.Query)
	}
	return fmt.Sprintf("%d total %s", count, noun)
}

func formatDay(d core.Day) string {
	return d.Start(time.UTC).Format(listDateLayout)
}
