package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLakhs(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "₹0 Lacs"},
		{32, "₹32 Lacs"},
		{1234, "₹1,234 Lacs"},
		{-21, "-₹21 Lacs"},
		{-1234567, "-₹1,234,567 Lacs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Lakhs(tt.input))
	}
}

func TestNumericLakhs(t *testing.T) {
	assert.Equal(t, "0", NumericLakhs(0))
	assert.Equal(t, "1,234", NumericLakhs(1234))
	assert.Equal(t, "-10", NumericLakhs(-10))
}

func TestRupees(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"4150", "₹4,150"},
		{"12450", "₹12,450"},
		{"1383.3333333333333333", "₹1,383.33"},
		{"13833.3333333333333333", "₹13,833.33"},
		{"-12.5", "-₹12.50"},
		{"0", "₹0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Rupees(decimal.RequireFromString(tt.input)), "Rupees(%s)", tt.input)
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "2,131", Count(2131))
	assert.Equal(t, "106", Count(106.55))
	assert.Equal(t, "0", Count(0))
}
