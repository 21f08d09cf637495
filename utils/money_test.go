package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in       string
		currency string
		expected string
	}{
		{"0", "ETB", "ETB 0.00"},
		{"5", "ETB", "ETB 5.00"},
		{"999.999", "ETB", "ETB 1,000.00"},
		{"1234.5", "ETB", "ETB 1,234.50"},
		{"1234567.891", "ETB", "ETB 1,234,567.89"},
		{"123456", "", "123,456.00"},
		{"-2500", "ETB", "ETB -2,500.00"},
	}
	for _, tc := range cases {
		got := FormatMoney(decimal.RequireFromString(tc.in), tc.currency)
		if got != tc.expected {
			t.Fatalf("FormatMoney(%s, %q) expected %q, got %q", tc.in, tc.currency, tc.expected, got)
		}
	}
}
