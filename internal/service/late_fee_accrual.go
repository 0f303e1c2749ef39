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

// AccrualResult counts what one late fee run did.
type AccrualResult struct {
	Candidates int    `json:"candidates"`
	Accrued    int    `json:"accrued"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	DailyRate  string `json:"daily_rate,omitempty"`
}

// LateFeeAccrual charges late-payment interest on overdue installments that
// carry no fee yet, at the rate in effect today. A fee, once set, is never
// recomputed by later runs.
type LateFeeAccrual struct {
	ledger
}

func NewLateFeeAccrual(d Deps) *LateFeeAccrual {
	return &LateFeeAccrual{ledger: newLedger(d)}
}

// Run accrues once. Without an effective rate the whole run is skipped and
// ErrNoActiveRate is returned alongside the empty result.
func (a *LateFeeAccrual) Run(ctx context.Context) (*AccrualResult, error) {
	today := clock.Today(a.clock)

	rate, err := a.store.Rates().Current(ctx, today)
	if errors.Is(err, repository.ErrNotFound) {
		a.log.WithField("date", today.Format("2006-01-02")).Warn("no late payment interest rate in effect, skipping late fee accrual")
		return &AccrualResult{}, customError.WrapNoActiveRate(today.Format("2006-01-02"))
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	candidates, err := a.store.Installments().ListFeeCandidates(ctx)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	result := &AccrualResult{Candidates: len(candidates), DailyRate: rate.DailyRate.String()}
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		accrued, err := a.accrue(ctx, candidate, rate, today)
		switch {
		case err != nil:
			result.Failed++
			a.log.WithFields(logrus.Fields{
				"customer_id":    candidate.CustomerID,
				"installment_id": candidate.ID,
			}).WithError(err).Error("late fee accrual failed")
		case accrued:
			result.Accrued++
		default:
			result.Skipped++
		}
	}

	a.log.WithFields(logrus.Fields{
		"candidates": result.Candidates,
		"accrued":    result.Accrued,
		"skipped":    result.Skipped,
		"failed":     result.Failed,
	}).Info("late fee accrual finished")

	return result, nil
}

func (a *LateFeeAccrual) accrue(ctx context.Context, candidate *domain.DueInstallment, rate *domain.LatePaymentInterestRate, today time.Time) (bool, error) {
	lateDays := domain.LateDays(candidate.DueDate, today)
	fee := domain.ComputeLateFee(candidate.Amount, rate.DailyRate, lateDays)
	if !fee.IsPositive() {
		return false, nil
	}

	accrued := false
	err := a.store.WithinTx(ctx, func(tx repository.Store) error {
		ok, err := tx.Installments().SetLateFee(ctx, candidate.ID, fee)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := tx.LateFees().Upsert(ctx, &domain.LateFeeRecord{
			ID:             uuid.New(),
			InstallmentID:  candidate.ID,
			LateDays:       lateDays,
			InterestAmount: fee,
			Status:         domain.LateFeeStatusUnpaid,
		}); err != nil {
			return err
		}

		accrued = true
		return nil
	})
	if err != nil {
		return false, persistence(err)
	}
	return accrued, nil
}
