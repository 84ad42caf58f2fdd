package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary is the key figures of a published report.
type Summary struct {
	Period       string
	From         string
	To           string
	TotalSpent   float64
	ExpenseCount int
}

// ParseSummary reads the "Summary" block written by Publish. Values may
// come back as numbers or as formatted strings.
func ParseSummary(values [][]any) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, nil
	}
	if name := strings.TrimSpace(fmt.Sprint(first(values[0]))); !strings.EqualFold(name, "Summary") {
		return Summary{}, fmt.Errorf("unexpected sheet layout: first cell %q", name)
	}
	var s Summary
	for _, row := range values[1:] {
		cols := toStrings(row)
		if len(cols) == 0 || cols[0] == "" {
			break
		}
		if len(cols) < 2 {
			continue
		}
		switch cols[0] {
		case "Period":
			s.Period = cols[1]
		case "From":
			s.From = cols[1]
		case "To":
			s.To = cols[1]
		case "Total Spent":
			if v, ok := parseAmount(cols[1]); ok {
				s.TotalSpent = v
			}
		case "Expenses":
			if n, err := strconv.Atoi(cols[1]); err == nil {
				s.ExpenseCount = n
			}
		}
	}
	return s, nil
}

func first(row []any) any {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseAmount accepts "1234.5", "1,234.50" and "₹1,234.50".
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "₹"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
