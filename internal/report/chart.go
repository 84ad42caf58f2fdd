package report

import (
	"strings"

	"smartspend/internal/core"
)

// ChartEntry is one bar of the daily spending chart.
type ChartEntry struct {
	Label string   `json:"label"`
	Value float64  `json:"value"`
	Date  core.Day `json:"date"`
}

// PieChartEntry is one slice of the category chart.
type PieChartEntry struct {
	Label    string        `json:"label"`
	Value    float64       `json:"value"`
	Color    string        `json:"color"`
	Category core.Category `json:"category"`
}

const fallbackColor = "#888888"

var categoryColors = map[core.Category]string{
	core.Staff:   "#667eea",
	core.Travel:  "#764ba2",
	core.Food:    "#f093fb",
	core.Utility: "#4facfe",
}

// CategoryColor returns the chart color of c.
func CategoryColor(c core.Category) string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return fallbackColor
}

// WeeklyChart labels each day with its three letter upper-case weekday.
func WeeklyChart(totals []DayTotal) []ChartEntry {
	out := make([]ChartEntry, len(totals))
	for i, t := range totals {
		out[i] = ChartEntry{
			Label: strings.ToUpper(t.Date.Weekday().String()[:3]),
			Value: t.Amount,
			Date:  t.Date,
		}
	}
	return out
}

// CategoryChart keeps the breakdown order.
func CategoryChart(breakdown []CategoryTotal) []PieChartEntry {
	out := make([]PieChartEntry, len(breakdown))
	for i, ct := range breakdown {
		out[i] = PieChartEntry{
			Label:    ct.Category.DisplayName(),
			Value:    ct.Amount,
			Color:    CategoryColor(ct.Category),
			Category: ct.Category,
		}
	}
	return out
}
