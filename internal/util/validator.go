package util

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a positive decimal amount with at most two fractional
// digits, e.g. "5", "5.5", "5.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %s has more than 2 decimal places", d)
	}
	return d, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}
