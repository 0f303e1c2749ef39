package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment states. unpaid -> paid, unpaid -> overdue -> paid; nothing
// returns to unpaid.
const (
	InstallmentStatusUnpaid  = "unpaid"
	InstallmentStatusOverdue = "overdue"
	InstallmentStatusPaid    = "paid"
)

// Installment is one scheduled repayment of a plan.
type Installment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	PlanID            uuid.UUID       `json:"plan_id" db:"plan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	PaidDate          *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Status            string          `json:"status" db:"status"`
	LateDays          int             `json:"late_days" db:"late_days"`
	LateFeeAmount     decimal.Decimal `json:"late_fee_amount" db:"late_fee_amount"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// DueInstallment is an installment joined with the plan and customer it
// belongs to, as selected by the scheduled scans.
type DueInstallment struct {
	Installment
	CustomerID    uuid.UUID `db:"customer_id"`
	CustomerName  string    `db:"customer_name"`
	CustomerEmail string    `db:"customer_email"`
}

type PayInstallmentRequest struct {
	PaymentDate *time.Time `json:"payment_date"`
}

type PaymentResult struct {
	Installment *Installment    `json:"installment"`
	UnpaidTotal decimal.Decimal `json:"unpaid_total"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CurrentDebt decimal.Decimal `json:"current_debt"`
}
