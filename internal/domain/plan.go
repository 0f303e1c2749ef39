package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PlanStatusPendingApproval = "pending_approval"
	PlanStatusApproved        = "approved"
	PlanStatusCancelled       = "cancelled"
)

// CreationMode selects how a plan becomes approved. The two paths are kept
// separate: Direct plans are debited and scheduled immediately, TokenConfirmed
// plans wait for the customer to redeem a one-time approval token.
type CreationMode string

const (
	CreationModeDirect         CreationMode = "direct"
	CreationModeTokenConfirmed CreationMode = "token_confirmed"
)

func (m CreationMode) Valid() bool {
	return m == CreationModeDirect || m == CreationModeTokenConfirmed
}

// Plan is an installment sale. InterestRate is fixed at creation from the
// interest schedule and never recomputed.
type Plan struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	CustomerID        uuid.UUID       `json:"customer_id" db:"customer_id"`
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TotalWithInterest decimal.Decimal `json:"total_with_interest" db:"total_with_interest"`
	InstallmentCount  int             `json:"installment_count" db:"installment_count"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	FirstDueDate      *time.Time      `json:"first_due_date,omitempty" db:"first_due_date"`
	Status            string          `json:"status" db:"status"`
	CreationMode      CreationMode    `json:"creation_mode" db:"creation_mode"`
	ApprovalToken     *string         `json:"-" db:"approval_token"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreatePlanRequest struct {
	CustomerID       uuid.UUID       `json:"customer_id" validate:"required"`
	Principal        decimal.Decimal `json:"principal" validate:"gt=0"`
	InstallmentCount int             `json:"installment_count" validate:"required,gt=0"`
	Mode             CreationMode    `json:"mode" validate:"omitempty,oneof=direct token_confirmed"`
}

type ApprovePlanRequest struct {
	Token string `json:"token" validate:"required"`
}

type CreatePlanResponse struct {
	Plan          *Plan          `json:"plan"`
	Installments  []*Installment `json:"installments"`
	ApprovalToken string         `json:"approval_token,omitempty"`
}

type PlanDetails struct {
	Plan         *Plan           `json:"plan"`
	Installments []*Installment  `json:"installments"`
	UnpaidTotal  decimal.Decimal `json:"unpaid_total"`
}
