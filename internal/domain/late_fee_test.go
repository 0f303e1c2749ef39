package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewLatePaymentInterestRate(t *testing.T) {
	rate := NewLatePaymentInterestRate(decimal.RequireFromString("0.365"), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, rate.DailyRate.Equal(decimal.RequireFromString("0.001")), "got %v", rate.DailyRate)
}

func TestComputeLateFee(t *testing.T) {
	tests := []struct {
		name      string
		amount    decimal.Decimal
		dailyRate decimal.Decimal
		lateDays  int
		expected  decimal.Decimal
	}{
		{"ten days", decimal.NewFromInt(350), decimal.RequireFromString("0.001"), 10, decimal.RequireFromString("3.5")},
		{"one day rounds to cents", decimal.NewFromInt(220), decimal.RequireFromString("0.00131507"), 1, decimal.RequireFromString("0.29")},
		{"not late", decimal.NewFromInt(350), decimal.RequireFromString("0.001"), 0, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeLateFee(tt.amount, tt.dailyRate, tt.lateDays)
			assert.True(t, result.Equal(tt.expected), "Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestLateDays(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, LateDays(due, due))
	assert.Equal(t, 0, LateDays(due, due.AddDate(0, 0, -3)))
	assert.Equal(t, 1, LateDays(due, due.AddDate(0, 0, 1)))
	assert.Equal(t, 31, LateDays(due, due.AddDate(0, 1, 0)))
	assert.Equal(t, 2, LateDays(due, due.Add(71*time.Hour)))
}
