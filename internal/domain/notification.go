package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventPlanCreated       EventKind = "plan_created"
	EventPaymentReceived   EventKind = "payment_received"
	EventOverdue           EventKind = "overdue"
	EventReminder          EventKind = "reminder"
	EventApprovalRequested EventKind = "approval_requested"
)

// Event is the payload handed to the notification collaborator. Fields not
// relevant to a kind are left zero.
type Event struct {
	Kind              EventKind       `json:"kind"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `json:"customer_email"`
	PlanID            uuid.UUID       `json:"plan_id"`
	InstallmentID     uuid.UUID       `json:"installment_id,omitempty"`
	InstallmentNumber int             `json:"installment_number,omitempty"`
	InstallmentCount  int             `json:"installment_count,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Total             decimal.Decimal `json:"total"`
	UnpaidTotal       decimal.Decimal `json:"unpaid_total"`
	DueDate           time.Time       `json:"due_date,omitempty"`
	PaidDate          time.Time       `json:"paid_date,omitempty"`
	ApprovalToken     string          `json:"approval_token,omitempty"`
}
