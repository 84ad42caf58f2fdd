package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"smartspend/internal/core"
)

var (
	utc   = time.UTC
	today = core.NewDay(2025, time.June, 18) // a Wednesday
	now   = today.Start(utc).Add(15 * time.Hour)
)

func exp(id string, d core.Day, hour int, c core.Category, amount float64) core.Expense {
	return core.Expense{
		ID:        id,
		Title:     id,
		Amount:    amount,
		Category:  c,
		Timestamp: d.Start(utc).Add(time.Duration(hour) * time.Hour).UnixMilli(),
	}
}

func dayPtr(d core.Day) *core.Day { return &d }

func TestResolve(t *testing.T) {
	cases := []struct {
		name   string
		period Period
		start  *core.Day
		end    *core.Day
		today  core.Day
		want   DateRange
	}{
		{"last 7", Last7Days, nil, nil, today, DateRange{core.NewDay(2025, 6, 12), today}},
		{"last 30", Last30Days, nil, nil, today, DateRange{core.NewDay(2025, 5, 20), today}},
		{"this month", ThisMonth, nil, nil, today, DateRange{core.NewDay(2025, 6, 1), today}},
		{"this month on day 1", ThisMonth, nil, nil, core.NewDay(2025, 6, 1), DateRange{core.NewDay(2025, 6, 1), core.NewDay(2025, 6, 1)}},
		{"last month", LastMonth, nil, nil, today, DateRange{core.NewDay(2025, 5, 1), core.NewDay(2025, 5, 31)}},
		{"last month february leap", LastMonth, nil, nil, core.NewDay(2024, 3, 31), DateRange{core.NewDay(2024, 2, 1), core.NewDay(2024, 2, 29)}},
		{"last month across year", LastMonth, nil, nil, core.NewDay(2025, 1, 15), DateRange{core.NewDay(2024, 12, 1), core.NewDay(2024, 12, 31)}},
		{"custom", Custom, dayPtr(core.NewDay(2025, 1, 1)), dayPtr(core.NewDay(2025, 1, 3)), today, DateRange{core.NewDay(2025, 1, 1), core.NewDay(2025, 1, 3)}},
		{"custom missing end", Custom, dayPtr(core.NewDay(2025, 1, 1)), nil, today, DateRange{core.NewDay(2025, 6, 12), today}},
		{"custom reversed", Custom, dayPtr(core.NewDay(2025, 1, 3)), dayPtr(core.NewDay(2025, 1, 1)), today, DateRange{core.NewDay(2025, 6, 12), today}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.period, tc.start, tc.end, tc.today)
			if got != tc.want {
				t.Fatalf("expected %s..%s, got %s..%s", tc.want.Start, tc.want.End, got.Start, got.End)
			}
			if got.DayCount() < 1 {
				t.Fatalf("range must not be empty")
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("last_30_days"); err != nil || p != Last30Days {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if _, err := ParsePeriod("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
	labels := []struct {
		start, end *core.Day
		want       string
	}{
		{dayPtr(core.NewDay(2025, 1, 1)), dayPtr(core.NewDay(2025, 1, 2)), "2025-01-01 to 2025-01-02"},
		{dayPtr(core.NewDay(2024, 3, 9)), dayPtr(core.NewDay(2024, 3, 1)), "Last 7 Days"},
		{nil, dayPtr(core.NewDay(2024, 3, 1)), "Last 7 Days"},
	}
	for _, tc := range labels {
		if got := Label(Custom, tc.start, tc.end); got != tc.want {
			t.Fatalf("Label(%v, %v) = %q, want %q", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestDailyTotalsCompleteness(t *testing.T) {
	for _, n := range []int{1, 7, 30, 31} {
		r := DateRange{Start: today.AddDays(-(n - 1)), End: today}
		got := DailyTotals(nil, r, utc)
		if len(got) != n {
			t.Fatalf("expected %d entries, got %d", n, len(got))
		}
		for i := 1; i < len(got); i++ {
			if !got[i-1].Date.Before(got[i].Date) {
				t.Fatalf("entries not ascending at %d", i)
			}
			if got[i].Amount != 0 || got[i].ExpenseCount != 0 {
				t.Fatalf("expected zero entry")
			}
		}
	}
}

func TestDailyTotalsUseLocalDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 17th is 01:30 on the 18th in IST.
	e := core.Expense{ID: "late", Amount: 50, Category: core.Food,
		Timestamp: core.NewDay(2025, 6, 17).Start(utc).Add(20 * time.Hour).UnixMilli()}
	r := DateRange{Start: core.NewDay(2025, 6, 17), End: core.NewDay(2025, 6, 18)}
	got := DailyTotals([]core.Expense{e}, r, ist)
	if got[0].Amount != 0 || got[1].Amount != 50 {
		t.Fatalf("expected spend on the 18th, got %+v", got)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	if got := CategoryBreakdown(nil); len(got) != 0 {
		t.Fatalf("expected empty breakdown")
	}
	expenses := []core.Expense{
		exp("a", today, 9, core.Food, 30),
		exp("b", today, 10, core.Travel, 70.5),
		exp("c", today, 11, core.Staff, 30),
		exp("d", today, 12, core.Utility, 13.25),
	}
	got := CategoryBreakdown(expenses)
	var sum float64
	for i, ct := range got {
		sum += ct.Percentage
		if i > 0 && got[i-1].Amount < ct.Amount {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("percentages sum to %v", sum)
	}
	// Staff and Food tie; declaration order puts Staff first.
	if got[0].Category != core.Travel || got[1].Category != core.Staff || got[2].Category != core.Food {
		t.Fatalf("unexpected order %+v", got)
	}
	again := CategoryBreakdown(expenses)
	for i := range got {
		if got[i] != again[i] {
			t.Fatalf("breakdown not deterministic")
		}
	}
}

func TestTrendDeadband(t *testing.T) {
	cases := []struct {
		current, previous float64
		change            float64
		dir               TrendDirection
	}{
		{104, 100, 4, TrendStable},
		{96, 100, -4, TrendStable},
		{105, 100, 5, TrendUp},
		{50, 100, -50, TrendDown},
		{10, 0, 100, TrendUp},
		{0, 0, 0, TrendStable},
	}
	for _, tc := range cases {
		change := PercentChange(tc.current, tc.previous)
		if math.Abs(change-tc.change) > 1e-9 {
			t.Fatalf("%v vs %v: expected change %v, got %v", tc.current, tc.previous, tc.change, change)
		}
		if got := Classify(change, DefaultDeadband); got != tc.dir {
			t.Fatalf("%v vs %v: expected %s, got %s", tc.current, tc.previous, tc.dir, got)
		}
	}
}

func TestTrendBoundary(t *testing.T) {
	all := []core.Expense{
		exp("current", today.AddDays(-3), 10, core.Food, 100),
		exp("old", today.AddDays(-12), 10, core.Food, 100),
	}
	rng := Resolve(Last7Days, nil, nil, today)
	view := Filter(all, Criteria{Range: &rng}, utc)

	earliest := ComputeTrend(all, view, TrendOptions{Boundary: BoundaryEarliestExpense, Range: rng, Today: today, Location: utc, Deadband: DefaultDeadband})
	if earliest.PreviousWindow.Start != today.AddDays(-10) || earliest.PreviousWindow.End != today.AddDays(-4) {
		t.Fatalf("unexpected previous window %+v", earliest.PreviousWindow)
	}
	if earliest.PreviousTotal != 0 || earliest.Change != 100 || earliest.Direction != TrendUp {
		t.Fatalf("unexpected earliest-expense trend %+v", earliest)
	}

	start := ComputeTrend(all, view, TrendOptions{Boundary: BoundaryRangeStart, Range: rng, Today: today, Location: utc, Deadband: DefaultDeadband})
	if start.PreviousTotal != 100 || start.Change != 0 || start.Direction != TrendStable {
		t.Fatalf("unexpected range-start trend %+v", start)
	}

	empty := ComputeTrend(all, nil, TrendOptions{Range: rng, Today: today, Location: utc, Deadband: DefaultDeadband})
	if empty.PreviousWindow.End != today.AddDays(-1) {
		t.Fatalf("empty view should anchor on today, got %+v", empty.PreviousWindow)
	}
}

func TestFilterConjunction(t *testing.T) {
	notes := "client dinner"
	all := []core.Expense{
		exp("Lunch", today, 9, core.Food, 10),
		exp("Taxi", today, 10, core.Travel, 20),
		exp("Lunch old", today.AddDays(-20), 9, core.Food, 30),
		{ID: "n", Title: "Misc", Amount: 5, Category: core.Staff, Notes: &notes, Timestamp: today.Start(utc).UnixMilli()},
	}
	rng := Resolve(Last7Days, nil, nil, today)
	food := core.Food

	full := Filter(all, Criteria{Range: &rng, Category: &food, Query: "LUNCH"}, utc)
	if len(full) != 1 || full[0].ID != "Lunch" {
		t.Fatalf("unexpected %+v", full)
	}
	for _, e := range full {
		if !rng.Contains(e.Day(utc)) || e.Category != food || !strings.Contains(strings.ToLower(e.Title), "lunch") {
			t.Fatalf("%s violates a predicate", e.ID)
		}
	}

	relaxed := []Criteria{
		{Category: &food, Query: "lunch"},
		{Range: &rng, Query: "lunch"},
		{Range: &rng, Category: &food},
	}
	for i, c := range relaxed {
		got := Filter(all, c, utc)
		if len(got) < len(full) {
			t.Fatalf("relaxed criteria %d shrank the result", i)
		}
		ids := map[string]bool{}
		for _, e := range got {
			ids[e.ID] = true
		}
		for _, e := range full {
			if !ids[e.ID] {
				t.Fatalf("relaxed criteria %d lost %s", i, e.ID)
			}
		}
	}

	if got := Filter(all, Criteria{Query: "client"}, utc); len(got) != 1 || got[0].ID != "n" {
		t.Fatalf("notes should be searched, got %+v", got)
	}
	if got := Filter(all, Criteria{Query: "trav"}, utc); len(got) != 1 || got[0].ID != "Taxi" {
		t.Fatalf("category display name should be searched, got %+v", got)
	}
	if len(all) != 4 || all[0].ID != "Lunch" {
		t.Fatalf("source slice was modified")
	}
}

func TestCategoryDominanceThreshold(t *testing.T) {
	cases := []struct {
		food, travel float64
		alert        bool
	}{
		{51, 49, true},
		{50, 50, false},
	}
	for _, tc := range cases {
		all := []core.Expense{
			exp("f", today, 9, core.Food, tc.food),
			exp("t", today, 10, core.Travel, tc.travel),
		}
		a := Compute(all, Options{Now: now, Location: utc})
		found := false
		for _, in := range a.Insights {
			if in.Type == CategoryAlert {
				found = true
				if in.Category == nil || *in.Category != core.Food {
					t.Fatalf("alert should name Food, got %+v", in)
				}
			}
		}
		if found != tc.alert {
			t.Fatalf("food %v%%: expected alert=%v", tc.food, tc.alert)
		}
	}
}

func TestScenarioA(t *testing.T) {
	day0 := today.AddDays(-1)
	all := []core.Expense{
		exp("f1", day0, 9, core.Food, 300),
		exp("f2", day0, 13, core.Food, 300),
		exp("t1", today, 9, core.Travel, 400),
	}
	a := Compute(all, Options{Period: Custom, CustomStart: &day0, CustomEnd: dayPtr(today), Now: now, Location: utc})

	wantDaily := []DayTotal{{day0, 600, 2}, {today, 400, 1}}
	if len(a.DailyTotals) != 2 || a.DailyTotals[0] != wantDaily[0] || a.DailyTotals[1] != wantDaily[1] {
		t.Fatalf("unexpected daily totals %+v", a.DailyTotals)
	}
	wantCats := []CategoryTotal{{core.Food, 600, 2, 60}, {core.Travel, 400, 1, 40}}
	if len(a.CategoryBreakdown) != 2 {
		t.Fatalf("unexpected breakdown %+v", a.CategoryBreakdown)
	}
	for i, w := range wantCats {
		g := a.CategoryBreakdown[i]
		if g.Category != w.Category || g.Amount != w.Amount || g.ExpenseCount != w.ExpenseCount || math.Abs(g.Percentage-w.Percentage) > 1e-9 {
			t.Fatalf("index %d: expected %+v, got %+v", i, w, g)
		}
	}
	if a.TotalSpent != 1000 || a.DailyAverage != 500 {
		t.Fatalf("unexpected totals %v / %v", a.TotalSpent, a.DailyAverage)
	}
	if a.WeeklyChart[0].Label != "TUE" || a.WeeklyChart[1].Label != "WED" {
		t.Fatalf("unexpected chart labels %+v", a.WeeklyChart)
	}
	if a.CategoryChart[0].Color != "#f093fb" || a.CategoryChart[0].Label != "Food" {
		t.Fatalf("unexpected pie entry %+v", a.CategoryChart[0])
	}
	if len(a.Insights) == 0 || a.Insights[0].Description != "You spent ₹600.00 on TUESDAY" {
		t.Fatalf("unexpected insights %+v", a.Insights)
	}
}

func TestScenarioBEmpty(t *testing.T) {
	a := Compute(nil, Options{Period: Last7Days, Now: now, Location: utc})
	if len(a.DailyTotals) != 7 {
		t.Fatalf("expected 7 days, got %d", len(a.DailyTotals))
	}
	for _, d := range a.DailyTotals {
		if d.Amount != 0 || d.ExpenseCount != 0 {
			t.Fatalf("expected zero day %+v", d)
		}
	}
	if len(a.CategoryBreakdown) != 0 || a.HasData() || len(a.Insights) != 0 {
		t.Fatalf("expected empty report, got %+v", a)
	}
	if len(a.Recommendations) != 1 || a.Recommendations[0] != RecommendTrackDaily {
		t.Fatalf("expected only the tracking recommendation, got %v", a.Recommendations)
	}
}

func TestScenarioCUtilityRecommendation(t *testing.T) {
	// 1400 over seven days averages 200; utility is 35%.
	all := []core.Expense{
		exp("u", today, 9, core.Utility, 490),
		exp("s", today.AddDays(-1), 9, core.Staff, 455),
		exp("t", today.AddDays(-2), 9, core.Travel, 455),
	}
	a := Compute(all, Options{Now: now, Location: utc})
	if a.DailyAverage != 200 {
		t.Fatalf("expected average 200, got %v", a.DailyAverage)
	}
	want := []string{RecommendUtility, RecommendTrackDaily}
	if len(a.Recommendations) != len(want) {
		t.Fatalf("expected %v, got %v", want, a.Recommendations)
	}
	for i := range want {
		if a.Recommendations[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, a.Recommendations)
		}
	}
}

func TestRecommendationRules(t *testing.T) {
	th := DefaultThresholds()
	snap := Snapshot{
		DailyAverage: 1500,
		Breakdown:    []CategoryTotal{{Category: core.Food, Amount: 90, Percentage: 90}, {Category: core.Utility, Amount: 10, Percentage: 10}},
		DailyTotals:  []DayTotal{{Date: today, Amount: 100, ExpenseCount: 2}},
	}
	got := Recommendations(snap, th, RecommendationRules)
	want := []string{RecommendDailyLimit, RecommendDiversify, RecommendTrackDaily}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	ins := Insights(snap, th, InsightRules)
	types := []InsightType{}
	for _, i := range ins {
		types = append(types, i.Type)
	}
	if len(types) != 3 || types[0] != HighSpending || types[1] != CategoryAlert || types[2] != SavingOpportunity {
		t.Fatalf("unexpected insight order %v", types)
	}
	if ins[1].Description != "Food expenses make up 90.0% of your spending" {
		t.Fatalf("unexpected description %q", ins[1].Description)
	}

	custom := th
	custom.DailyLimit = 2000
	if got := Recommendations(snap, custom, []RecommendationRule{DailyLimitRule}); len(got) != 0 {
		t.Fatalf("raised threshold should silence the rule")
	}
}

func TestSortAndGroup(t *testing.T) {
	all := []core.Expense{
		exp("banana", today, 9, core.Food, 50),
		exp("Apple", today, 11, core.Travel, 700),
		exp("cherry", today.AddDays(-1), 9, core.Food, 6000),
	}
	if got := Sort(all, NewestFirst); got[0].ID != "Apple" || got[2].ID != "cherry" {
		t.Fatalf("unexpected newest-first %v", got)
	}
	if got := Sort(all, AmountHighToLow); got[0].ID != "cherry" {
		t.Fatalf("unexpected amount order")
	}
	if got := Sort(all, Alphabetical); got[0].ID != "Apple" || got[1].ID != "banana" {
		t.Fatalf("unexpected alphabetical order")
	}
	if all[0].ID != "banana" {
		t.Fatalf("Sort must not modify its input")
	}

	groups := GroupExpenses(all, GroupByCategory, utc)
	if len(groups) != 2 || groups[0].Key != "Food" || len(groups[0].Expenses) != 2 {
		t.Fatalf("unexpected groups %+v", groups)
	}
	buckets := GroupExpenses(all, GroupByAmount, utc)
	if buckets[0].Key != "Under ₹100" || buckets[1].Key != "₹500 - ₹1000" || buckets[2].Key != "Above ₹5000" {
		t.Fatalf("unexpected buckets %+v", buckets)
	}
	if GroupExpenses(all, GroupNone, utc) != nil {
		t.Fatalf("no grouping should return nil")
	}
	if ParseSortOrder("bogus") != NewestFirst || ParseGroupingMode("by_date") != GroupByDate {
		t.Fatalf("unexpected parse defaults")
	}
}

func TestBuildWeekly(t *testing.T) {
	all := []core.Expense{
		exp("a", today, 9, core.Food, 70),
		exp("b", today.AddDays(-6), 9, core.Food, 30),
		exp("c", today.AddDays(-2), 9, core.Travel, 40),
		exp("old", today.AddDays(-7), 9, core.Staff, 1000),
	}
	w := BuildWeekly(all, now, utc)
	if w.TotalAmount != 140 || w.TotalExpenses != 3 || w.AverageDailySpending != 20 {
		t.Fatalf("unexpected totals %+v", w)
	}
	if len(w.DailyTotals) != 7 || len(w.CategoryBreakdown) != 4 {
		t.Fatalf("expected 7 days and 4 categories")
	}
	if cs := w.CategoryBreakdown[core.Food]; cs.AverageAmount != 50 || cs.ExpenseCount != 2 {
		t.Fatalf("unexpected food summary %+v", cs)
	}
	if cs := w.CategoryBreakdown[core.Staff]; cs.TotalAmount != 0 || cs.AverageAmount != 0 {
		t.Fatalf("staff should be empty, got %+v", cs)
	}
	if pct := w.CategoryPercentage(core.Food); math.Abs(pct-100.0/140*100) > 1e-9 {
		t.Fatalf("unexpected food share %v", pct)
	}

	s := Summarize(w)
	if s.SummaryText() != "₹140.00 spent across 3 expenses this week" {
		t.Fatalf("unexpected summary %q", s.SummaryText())
	}
	ins := s.Insights()
	if len(ins) != 3 || ins[1] != "Most spending in Food: ₹100.00" || ins[2] != "Highest spending on Wednesday: ₹70.00" {
		t.Fatalf("unexpected insights %v", ins)
	}

	empty := Summarize(BuildWeekly(nil, now, utc))
	if empty.SummaryText() != "No expenses recorded this week" || len(empty.Insights()) != 1 {
		t.Fatalf("unexpected empty summary")
	}
}
