package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5", "5"},
		{"5.5", "5.5"},
		{"0.01", "0.01"},
		{"9999.99", "9999.99"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error = %v, want nil", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	tests := []string{"", "abc", "0", "-1", "-0.01", "1.005"}
	for _, in := range tests {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) error = nil, want error", in)
		}
	}
}

func TestParseDate_Valid(t *testing.T) {
	tests := []string{"2025-08-11", "2024-12-31", "2026-01-01"}
	for _, in := range tests {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", in, err)
			continue
		}
		if got.Format("2006-01-02") != in {
			t.Errorf("ParseDate(%q) = %s", in, got)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	tests := []string{"", "11/08/2025", "2025-13-01", "yesterday"}
	for _, in := range tests {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", in)
		}
	}
}
