package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CurrencySymbol prefixes every formatted amount.
	CurrencySymbol = "₹"

	// MaxAmount is the largest amount the entry form accepts.
	MaxAmount = 100000
)

var (
	ErrAmountRequired  = errors.New("amount is required")
	ErrAmountNotNumber = errors.New("please enter a valid amount")
	ErrAmountTooLarge  = errors.New("amount seems too large")
	ErrInvalidDecimal  = errors.New("invalid decimal format")
)

// ParseAmount parses a user supplied amount string.
//
// Dot and comma decimal separators are both accepted. Signs, more than one
// separator and non-digit characters are rejected, as are values that are
// not strictly positive or exceed MaxAmount.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrAmountRequired
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidDecimal
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrAmountNotNumber
		}
	}
	if s == "." {
		return 0, ErrAmountNotNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrAmountNotNumber
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if d.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, ErrAmountTooLarge
	}
	f, _ := d.Float64()
	return f, nil
}

// FormatAmount renders an amount with the currency symbol and two decimals.
// Rounding happens here and nowhere earlier.
func FormatAmount(amount float64) string {
	return CurrencySymbol + decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatPercent renders a percentage with one decimal place, e.g. "42.5%".
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}

// Round2 rounds half away from zero to two decimals for display payloads.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
