package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
	CustomerStatusBlocked  = "blocked"
)

// Customer is the owner of a credit account. CreditLimit and CurrentDebt are
// only changed through the ledger operations, never set by the user.
type Customer struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Email       string          `json:"email" db:"email"`
	Phone       string          `json:"phone" db:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit" db:"credit_limit"`
	CurrentDebt decimal.Decimal `json:"current_debt" db:"current_debt"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// AvailableCredit is credit_limit - current_debt. It can be negative after
// late fees or limit decreases; admission control treats that as no credit.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentDebt)
}

func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

type CreateCustomerRequest struct {
	Name        string          `json:"name" validate:"required"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Phone       string          `json:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"gte=0"`
}

type CustomerResponse struct {
	Customer        *Customer       `json:"customer"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
}
