package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateTotalWithInterest calculates principal * (1 + rate/100)
// rounded to cents. rate is a percentage.
func CalculateTotalWithInterest(principal decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return principal.Mul(hundred.Add(rate)).Div(hundred).Round(2)
}

// CalculateInstallmentAmount calculates the per-installment amount
// Formula: Total / Count, rounded to 2 decimal places. The remainder is not
// redistributed, so the installments may drift from the total by up to half a
// cent each.
func CalculateInstallmentAmount(total decimal.Decimal, count int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// CalculateFirstDueDate returns the creation date plus the grace period in days
func CalculateFirstDueDate(created time.Time, days int) time.Time {
	return created.AddDate(0, 0, days)
}

// CalculateDueDate calculates the due date for a specific installment
// Installment 1 is due on the first due date, each later one a month after the previous
func CalculateDueDate(firstDueDate time.Time, installmentNumber int) time.Time {
	return firstDueDate.AddDate(0, installmentNumber-1, 0)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
