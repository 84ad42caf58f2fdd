package report

import (
	"fmt"
	"strings"

	"smartspend/internal/core"
)

type InsightType string

const (
	HighSpending      InsightType = "HIGH_SPENDING"
	UnusualPattern    InsightType = "UNUSUAL_PATTERN"
	CategoryAlert     InsightType = "CATEGORY_ALERT"
	SavingOpportunity InsightType = "SAVING_OPPORTUNITY"
	PositiveTrend     InsightType = "POSITIVE_TREND"
)

// SpendingInsight is a short observation produced by a rule.
type SpendingInsight struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        InsightType    `json:"type"`
	Amount      *float64       `json:"amount,omitempty"`
	Category    *core.Category `json:"category,omitempty"`
}

// Key identifies an insight within one computation.
func (i SpendingInsight) Key() string {
	return string(i.Type) + "|" + i.Title + "|" + i.Description
}

// Thresholds are the tunable limits of the rule set.
type Thresholds struct {
	CategoryAlertPercent float64 // top category share that raises an alert
	FoodShare            float64 // food share of total, as a fraction
	DailyLimit           float64 // daily average that suggests a limit
	DiversifyPercent     float64 // top category share that suggests diversifying
	UtilityPercent       float64 // utility share that suggests cutting costs
	TrendDeadband        float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CategoryAlertPercent: 50,
		FoodShare:            0.3,
		DailyLimit:           1000,
		DiversifyPercent:     40,
		UtilityPercent:       30,
		TrendDeadband:        DefaultDeadband,
	}
}

// Snapshot is the aggregate every rule reads from.
type Snapshot struct {
	DailyTotals  []DayTotal
	Breakdown    []CategoryTotal
	DailyAverage float64
}

// InsightRule yields an insight or false.
type InsightRule func(s Snapshot, t Thresholds) (SpendingInsight, bool)

// RecommendationRule yields a recommendation or false.
type RecommendationRule func(s Snapshot, t Thresholds) (string, bool)

const (
	RecommendDailyLimit = "Consider setting a daily spending limit to control expenses"
	RecommendDiversify  = "Try to diversify your spending across different categories"
	RecommendUtility    = "Look for ways to reduce utility costs, such as energy-efficient appliances"
	RecommendTrackDaily = "Track your expenses daily for better financial awareness"
)

// InsightRules run in display order.
var InsightRules = []InsightRule{
	HighestSpendingDayRule,
	CategoryDominanceRule,
	FoodSavingRule,
}

// RecommendationRules run in display order; the last one always fires.
var RecommendationRules = []RecommendationRule{
	DailyLimitRule,
	DiversifyRule,
	UtilityCostRule,
	TrackDailyRule,
}

func HighestSpendingDayRule(s Snapshot, _ Thresholds) (SpendingInsight, bool) {
	day, ok := HighestDay(s.DailyTotals)
	if !ok || day.Amount <= 0 {
		return SpendingInsight{}, false
	}
	amount := day.Amount
	return SpendingInsight{
		Title:       "Highest Spending Day",
		Description: fmt.Sprintf("You spent %s on %s", core.FormatAmount(day.Amount), strings.ToUpper(day.Date.Weekday().String())),
		Type:        HighSpending,
		Amount:      &amount,
	}, true
}

func CategoryDominanceRule(s Snapshot, t Thresholds) (SpendingInsight, bool) {
	top, ok := TopCategory(s.Breakdown)
	if !ok || !(top.Percentage > t.CategoryAlertPercent) {
		return SpendingInsight{}, false
	}
	amount, category := top.Amount, top.Category
	return SpendingInsight{
		Title:       "Category Alert",
		Description: fmt.Sprintf("%s expenses make up %s of your spending", top.Category.DisplayName(), core.FormatPercent(top.Percentage)),
		Type:        CategoryAlert,
		Amount:      &amount,
		Category:    &category,
	}, true
}

func FoodSavingRule(s Snapshot, t Thresholds) (SpendingInsight, bool) {
	food, ok := Share(s.Breakdown, core.Food)
	if !ok {
		return SpendingInsight{}, false
	}
	var total float64
	for _, d := range s.DailyTotals {
		total += d.Amount
	}
	if !(food.Amount > total*t.FoodShare) {
		return SpendingInsight{}, false
	}
	category := core.Food
	return SpendingInsight{
		Title:       "Saving Opportunity",
		Description: "Consider meal planning to reduce food expenses",
		Type:        SavingOpportunity,
		Category:    &category,
	}, true
}

func DailyLimitRule(s Snapshot, t Thresholds) (string, bool) {
	return RecommendDailyLimit, s.DailyAverage > t.DailyLimit
}

func DiversifyRule(s Snapshot, t Thresholds) (string, bool) {
	top, ok := TopCategory(s.Breakdown)
	return RecommendDiversify, ok && top.Percentage > t.DiversifyPercent
}

func UtilityCostRule(s Snapshot, t Thresholds) (string, bool) {
	u, ok := Share(s.Breakdown, core.Utility)
	return RecommendUtility, ok && u.Percentage > t.UtilityPercent
}

func TrackDailyRule(Snapshot, Thresholds) (string, bool) {
	return RecommendTrackDaily, true
}

// Insights evaluates rules against s in order.
func Insights(s Snapshot, t Thresholds, rules []InsightRule) []SpendingInsight {
	out := []SpendingInsight{}
	for _, rule := range rules {
		if in, ok := rule(s, t); ok {
			out = append(out, in)
		}
	}
	return out
}

// Recommendations evaluates rules against s in order.
func Recommendations(s Snapshot, t Thresholds, rules []RecommendationRule) []string {
	out := []string{}
	for _, rule := range rules {
		if r, ok := rule(s, t); ok {
			out = append(out, r)
		}
	}
	return out
}
