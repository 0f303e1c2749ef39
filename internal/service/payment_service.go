package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// PaymentService applies installment payments to the credit account.
type PaymentService struct {
	ledger
	policy domain.LimitAdjustmentPolicy
}

func NewPaymentService(d Deps, policy domain.LimitAdjustmentPolicy) *PaymentService {
	return &PaymentService{ledger: newLedger(d), policy: policy}
}

// PayInstallment marks one installment paid, credits its amount back and
// raises the customer's limit. Late payments raise the limit too. A zero
// paymentDate means today.
func (s *PaymentService) PayInstallment(ctx context.Context, planID, installmentID uuid.UUID, paymentDate time.Time) (*domain.PaymentResult, error) {
	plan, err := s.store.Plans().GetByID(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapPlanNotFound(planID.String())
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	paidDate := clock.Today(s.clock)
	if !paymentDate.IsZero() {
		paidDate = clock.DateOf(paymentDate)
	}

	var (
		result   domain.PaymentResult
		customer *domain.Customer
	)
	err = s.withCustomer(ctx, plan.CustomerID, func(tx repository.Store) error {
		installment, err := tx.Installments().GetByID(ctx, planID, installmentID)
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapInstallmentNotFound(planID.String(), installmentID.String())
		}
		if err != nil {
			return customError.WrapPersistenceError(err)
		}
		if installment.IsPaid() {
			return customError.WrapAlreadyPaid(installmentID.String())
		}

		ok, err := tx.Installments().MarkPaid(ctx, planID, installmentID, paidDate)
		if err != nil {
			return customError.WrapPersistenceError(err)
		}
		if !ok {
			return customError.WrapAlreadyPaid(installmentID.String())
		}

		if err := s.credit(ctx, tx, plan.CustomerID, installment.Amount, "installment payment"); err != nil {
			return err
		}

		customer, err = lockedCustomer(ctx, tx, plan.CustomerID)
		if err != nil {
			return err
		}

		raised := s.policy.OnPayment(customer.CreditLimit)
		if !raised.Equal(customer.CreditLimit) {
			if err := tx.Customers().UpdateCreditLimit(ctx, customer.ID, raised); err != nil {
				return customError.WrapPersistenceError(err)
			}
			customer.CreditLimit = raised
		}

		unpaid, err := tx.Installments().SumUnpaidByPlan(ctx, planID)
		if err != nil {
			return customError.WrapPersistenceError(err)
		}

		installment.Status = domain.InstallmentStatusPaid
		installment.PaidDate = &paidDate

		result = domain.PaymentResult{
			Installment: installment,
			UnpaidTotal: unpaid,
			CreditLimit: customer.CreditLimit,
			CurrentDebt: customer.CurrentDebt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"customer_id":    plan.CustomerID,
		"plan_id":        planID,
		"installment_id": installmentID,
		"amount":         result.Installment.Amount.String(),
		"credit_limit":   result.CreditLimit.String(),
	}).Info("installment paid")

	s.notify(ctx, domain.Event{
		Kind:              domain.EventPaymentReceived,
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		CustomerEmail:     customer.Email,
		PlanID:            planID,
		InstallmentID:     installmentID,
		InstallmentNumber: result.Installment.InstallmentNumber,
		InstallmentCount:  plan.InstallmentCount,
		Amount:            result.Installment.Amount,
		Total:             plan.TotalWithInterest,
		UnpaidTotal:       result.UnpaidTotal,
		DueDate:           result.Installment.DueDate,
		PaidDate:          paidDate,
	})

	return &result, nil
}
