package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInsufficientCredit      = errors.New("insufficient credit")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrCustomerInactive        = errors.New("customer is not active")
	ErrPlanNotFound            = errors.New("plan not found")
	ErrInstallmentNotFound     = errors.New("installment not found")
	ErrAlreadyPaid             = errors.New("installment already paid")
	ErrInvalidInstallmentCount = errors.New("invalid installment count")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidApprovalToken    = errors.New("invalid approval token")
	ErrInvalidCreationMode     = errors.New("invalid creation mode")
	ErrChecksInProgress        = errors.New("scheduled checks already running")
	ErrInvalidPlanStatus       = errors.New("invalid plan status")
	ErrNoActiveRate            = errors.New("no active late payment interest rate")
	ErrPersistence             = errors.New("persistence failure")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInsufficientCredit      = "INSUFFICIENT_CREDIT"
	ErrCodeCustomerNotFound        = "CUSTOMER_NOT_FOUND"
	ErrCodeCustomerInactive        = "CUSTOMER_INACTIVE"
	ErrCodePlanNotFound            = "PLAN_NOT_FOUND"
	ErrCodeInstallmentNotFound     = "INSTALLMENT_NOT_FOUND"
	ErrCodeAlreadyPaid             = "ALREADY_PAID"
	ErrCodeInvalidInstallmentCount = "INVALID_INSTALLMENT_COUNT"
	ErrCodeInvalidAmount           = "INVALID_AMOUNT"
	ErrCodeInvalidApprovalToken    = "INVALID_APPROVAL_TOKEN"
	ErrCodeInvalidCreationMode     = "INVALID_CREATION_MODE"
	ErrCodeChecksInProgress        = "CHECKS_IN_PROGRESS"
	ErrCodeInvalidPlanStatus       = "INVALID_PLAN_STATUS"
	ErrCodeNoActiveRate            = "NO_ACTIVE_RATE"
	ErrCodePersistenceError        = "PERSISTENCE_ERROR"
)

// CodeOf returns the code of a BusinessError anywhere in err's chain.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapInsufficientCredit(requested, available string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientCredit,
		fmt.Sprintf("Requested principal %s exceeds available credit %s", requested, available),
		ErrInsufficientCredit,
	)
}

func WrapCustomerNotFound(customerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer with ID %s not found", customerID),
		ErrCustomerNotFound,
	)
}

func WrapCustomerInactive(customerID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerInactive,
		fmt.Sprintf("Customer with ID %s is %s", customerID, status),
		ErrCustomerInactive,
	)
}

func WrapPlanNotFound(planID string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("Plan with ID %s not found", planID),
		ErrPlanNotFound,
	)
}

func WrapInstallmentNotFound(planID, installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %s of plan %s not found", installmentID, planID),
		ErrInstallmentNotFound,
	)
}

func WrapAlreadyPaid(installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyPaid,
		fmt.Sprintf("Installment %s is already paid", installmentID),
		ErrAlreadyPaid,
	)
}

func WrapInvalidInstallmentCount(count int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInstallmentCount,
		fmt.Sprintf("Installment count %d is not offered", count),
		ErrInvalidInstallmentCount,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidApprovalToken(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidApprovalToken,
		reason,
		ErrInvalidApprovalToken,
	)
}

func WrapInvalidCreationMode(mode string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCreationMode,
		fmt.Sprintf("Unknown creation mode %q", mode),
		ErrInvalidCreationMode,
	)
}

func WrapChecksInProgress() *BusinessError {
	return NewBusinessError(
		ErrCodeChecksInProgress,
		"Another run of the scheduled checks is in progress",
		ErrChecksInProgress,
	)
}

func WrapInvalidPlanStatus(planID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPlanStatus,
		fmt.Sprintf("Plan with ID %s is %s", planID, status),
		ErrInvalidPlanStatus,
	)
}

func WrapNoActiveRate(date string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoActiveRate,
		fmt.Sprintf("No late payment interest rate effective on %s", date),
		ErrNoActiveRate,
	)
}

// WrapPersistenceError wraps a storage failure. Both ErrPersistence and the
// driver error stay reachable through errors.Is.
func WrapPersistenceError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistenceError,
		"persistence operation failed",
		fmt.Errorf("%w: %w", ErrPersistence, err),
	)
}
