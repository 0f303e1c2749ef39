package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// ScanResult counts what one overdue scan did.
type ScanResult struct {
	Candidates        int `json:"candidates"`
	Transitioned      int `json:"transitioned"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
	LateDaysRefreshed int `json:"late_days_refreshed"`
}

// OverdueScanner moves unpaid installments past their due date to overdue.
// Each transition lowers the customer's limit once: the status update only
// matches unpaid rows, so a second run or a concurrent one finds nothing left
// to transition.
type OverdueScanner struct {
	ledger
	policy domain.LimitAdjustmentPolicy
}

func NewOverdueScanner(d Deps, policy domain.LimitAdjustmentPolicy) *OverdueScanner {
	return &OverdueScanner{ledger: newLedger(d), policy: policy}
}

// Run scans once. A failing installment is logged and skipped; only a failure
// to list candidates aborts the run.
func (s *OverdueScanner) Run(ctx context.Context) (*ScanResult, error) {
	today := clock.Today(s.clock)

	candidates, err := s.store.Installments().ListOverdueCandidates(ctx, today)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	result := &ScanResult{Candidates: len(candidates)}
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		transitioned, err := s.transition(ctx, candidate, today)
		switch {
		case err != nil:
			result.Failed++
			s.log.WithFields(logrus.Fields{
				"customer_id":    candidate.CustomerID,
				"plan_id":        candidate.PlanID,
				"installment_id": candidate.ID,
			}).WithError(err).Error("overdue transition failed")
		case transitioned:
			result.Transitioned++
		default:
			result.Skipped++
		}
	}

	result.LateDaysRefreshed = s.refreshLateDays(ctx, today)

	s.log.WithFields(logrus.Fields{
		"candidates":   result.Candidates,
		"transitioned": result.Transitioned,
		"skipped":      result.Skipped,
		"failed":       result.Failed,
		"refreshed":    result.LateDaysRefreshed,
	}).Info("overdue scan finished")

	return result, nil
}

func (s *OverdueScanner) transition(ctx context.Context, candidate *domain.DueInstallment, today time.Time) (bool, error) {
	var (
		transitioned bool
		customer     *domain.Customer
		lateDays     = domain.LateDays(candidate.DueDate, today)
	)

	err := s.withCustomer(ctx, candidate.CustomerID, func(tx repository.Store) error {
		ok, err := tx.Installments().MarkOverdue(ctx, candidate.ID)
		if err != nil {
			return customError.WrapPersistenceError(err)
		}
		if !ok {
			// Paid or already transitioned since the candidates were listed.
			return nil
		}

		customer, err = lockedCustomer(ctx, tx, candidate.CustomerID)
		if err != nil {
			return err
		}

		lowered := s.policy.OnOverdueTransition(customer.CreditLimit)
		if err := tx.Customers().UpdateCreditLimit(ctx, customer.ID, lowered); err != nil {
			return customError.WrapPersistenceError(err)
		}

		if err := tx.Installments().UpdateLateDays(ctx, candidate.ID, lateDays); err != nil {
			return customError.WrapPersistenceError(err)
		}

		if _, err := tx.LateFees().InitIfAbsent(ctx, &domain.LateFeeRecord{
			ID:            uuid.New(),
			InstallmentID: candidate.ID,
			LateDays:      lateDays,
			Status:        domain.LateFeeStatusUnpaid,
		}); err != nil {
			return customError.WrapPersistenceError(err)
		}

		s.log.WithFields(logrus.Fields{
			"customer_id":    customer.ID,
			"installment_id": candidate.ID,
			"late_days":      lateDays,
			"credit_limit":   lowered.String(),
		}).Info("installment overdue, credit limit lowered")

		transitioned = true
		return nil
	})
	if err != nil || !transitioned {
		return false, err
	}

	s.notify(ctx, domain.Event{
		Kind:              domain.EventOverdue,
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		CustomerEmail:     customer.Email,
		PlanID:            candidate.PlanID,
		InstallmentID:     candidate.ID,
		InstallmentNumber: candidate.InstallmentNumber,
		Amount:            candidate.Amount,
		DueDate:           candidate.DueDate,
	})
	return true, nil
}

// refreshLateDays keeps the late_days snapshot of every overdue installment
// current. It does not touch the customer, so no customer lock is needed.
func (s *OverdueScanner) refreshLateDays(ctx context.Context, today time.Time) int {
	overdue, err := s.store.Installments().ListOverdue(ctx)
	if err != nil {
		s.log.WithError(err).Error("listing overdue installments failed")
		return 0
	}

	refreshed := 0
	for _, installment := range overdue {
		lateDays := domain.LateDays(installment.DueDate, today)
		if lateDays == installment.LateDays {
			continue
		}
		if err := s.store.Installments().UpdateLateDays(ctx, installment.ID, lateDays); err != nil {
			s.log.WithField("installment_id", installment.ID).WithError(err).Error("late days refresh failed")
			continue
		}
		refreshed++
	}
	return refreshed
}
