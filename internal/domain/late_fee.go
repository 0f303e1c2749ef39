package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LateFeeStatusUnpaid        = "unpaid"
	LateFeeStatusPartiallyPaid = "partially_paid"
	LateFeeStatusPaid          = "paid"
)

// daysPerYear converts an annual late-payment rate into a daily one.
var daysPerYear = decimal.NewFromInt(365)

// LateFeeRecord annotates an installment with the late-payment interest it
// owes. It is looked up by installment id and is not deleted with it.
type LateFeeRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	InstallmentID  uuid.UUID       `json:"installment_id" db:"installment_id"`
	LateDays       int             `json:"late_days" db:"late_days"`
	InterestAmount decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// LatePaymentInterestRate is an append-only history entry. AnnualRate is a
// fraction (0.48 for 48% a year).
type LatePaymentInterestRate struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	AnnualRate    decimal.Decimal `json:"annual_rate" db:"annual_rate"`
	DailyRate     decimal.Decimal `json:"daily_rate" db:"daily_rate"`
	EffectiveFrom time.Time       `json:"effective_from" db:"effective_from"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// NewLatePaymentInterestRate derives the daily rate from the annual one.
func NewLatePaymentInterestRate(annual decimal.Decimal, effectiveFrom time.Time) *LatePaymentInterestRate {
	return &LatePaymentInterestRate{
		ID:            uuid.New(),
		AnnualRate:    annual,
		DailyRate:     annual.Div(daysPerYear).Round(8),
		EffectiveFrom: effectiveFrom,
	}
}

// ComputeLateFee is amount * daily_rate * late_days, rounded to cents.
func ComputeLateFee(amount, dailyRate decimal.Decimal, lateDays int) decimal.Decimal {
	if lateDays <= 0 {
		return decimal.Zero
	}
	return amount.Mul(dailyRate).Mul(decimal.NewFromInt(int64(lateDays))).Round(2)
}

// LateDays is the number of whole days between due and today.
func LateDays(due, today time.Time) int {
	if !today.After(due) {
		return 0
	}
	return int(today.Sub(due).Hours() / 24)
}
