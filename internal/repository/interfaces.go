package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store groups the ledger repositories and scopes them to a transaction.
type Store interface {
	Customers() CustomerRepository
	Plans() PlanRepository
	Installments() InstallmentRepository
	LateFees() LateFeeRepository
	Rates() RateRepository

	// WithinTx runs fn with repositories bound to a single transaction.
	// The transaction commits when fn returns nil. Nested calls join the
	// outer transaction.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// CustomerRepository defines the interface for credit account data operations
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)

	// GetForUpdate retrieves a customer and row-locks it where the driver supports it
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Customer, error)

	// Debit atomically increments current_debt
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// Credit atomically decrements current_debt, clamping at zero.
	// clamped reports that the debt would have gone negative.
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (clamped bool, err error)

	// UpdateCreditLimit sets credit_limit
	UpdateCreditLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error
}

// PlanRepository defines the interface for installment plan data operations
type PlanRepository interface {
	// Create creates a new plan
	Create(ctx context.Context, plan *domain.Plan) error

	// GetByID retrieves a plan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)

	// Approve moves a pending plan to approved if token matches the stored
	// one, clearing the token. ok is false when nothing matched.
	Approve(ctx context.Context, id uuid.UUID, token string, firstDueDate time.Time) (ok bool, err error)

	// UpdateStatus moves a plan from one status to another. ok is false
	// when the plan was not in the from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (ok bool, err error)
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// CreateBatch creates all installments of a plan
	CreateBatch(ctx context.Context, installments []*domain.Installment) error

	// GetByID retrieves an installment of a plan
	GetByID(ctx context.Context, planID, id uuid.UUID) (*domain.Installment, error)

	// ListByPlan retrieves the installments of a plan ordered by number
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*domain.Installment, error)

	// MarkPaid marks a not yet paid installment as paid
	MarkPaid(ctx context.Context, planID, id uuid.UUID, paidDate time.Time) (ok bool, err error)

	// SumUnpaidByPlan sums the amount of every installment that is not paid
	SumUnpaidByPlan(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error)

	// DeleteUnpaidByPlan deletes every installment of the plan that is not paid
	DeleteUnpaidByPlan(ctx context.Context, planID uuid.UUID) (int64, error)

	// ListOverdueCandidates gets unpaid installments of approved plans due before today
	ListOverdueCandidates(ctx context.Context, today time.Time) ([]*domain.DueInstallment, error)

	// MarkOverdue moves an unpaid installment to overdue
	MarkOverdue(ctx context.Context, id uuid.UUID) (ok bool, err error)

	// ListOverdue gets every overdue installment
	ListOverdue(ctx context.Context) ([]*domain.Installment, error)

	// UpdateLateDays stores the recomputed late_days snapshot
	UpdateLateDays(ctx context.Context, id uuid.UUID, lateDays int) error

	// ListFeeCandidates gets overdue installments that carry no late fee yet
	ListFeeCandidates(ctx context.Context) ([]*domain.DueInstallment, error)

	// SetLateFee stores the late fee on an installment that has none yet
	SetLateFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (ok bool, err error)

	// ListDueOn gets unpaid installments due on the given date
	ListDueOn(ctx context.Context, date time.Time) ([]*domain.DueInstallment, error)
}

// LateFeeRepository defines the interface for late fee record data operations
type LateFeeRepository interface {
	// InitIfAbsent creates the record unless the installment already has one
	InitIfAbsent(ctx context.Context, record *domain.LateFeeRecord) (created bool, err error)

	// Upsert creates the record or refreshes late_days and interest_amount
	Upsert(ctx context.Context, record *domain.LateFeeRecord) error

	// GetByInstallmentID retrieves the record of an installment
	GetByInstallmentID(ctx context.Context, installmentID uuid.UUID) (*domain.LateFeeRecord, error)
}

// RateRepository defines the interface for the late payment interest rate history
type RateRepository interface {
	// Add appends a rate to the history
	Add(ctx context.Context, rate *domain.LatePaymentInterestRate) error

	// Current gets the latest rate effective on or before the given date
	Current(ctx context.Context, date time.Time) (*domain.LatePaymentInterestRate, error)
}
