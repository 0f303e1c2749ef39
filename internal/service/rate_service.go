package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// RateService maintains the late payment interest rate history.
type RateService struct {
	ledger
}

func NewRateService(d Deps) *RateService {
	return &RateService{ledger: newLedger(d)}
}

// AddRate appends a rate taking effect on effectiveFrom. annual is a fraction.
func (s *RateService) AddRate(ctx context.Context, annual decimal.Decimal, effectiveFrom time.Time) (*domain.LatePaymentInterestRate, error) {
	if annual.IsNegative() {
		return nil, customError.WrapInvalidAmount(annual.String())
	}

	rate := domain.NewLatePaymentInterestRate(annual, clock.DateOf(effectiveFrom))
	if err := s.store.Rates().Add(ctx, rate); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	s.log.WithFields(logrus.Fields{
		"annual_rate":    rate.AnnualRate.String(),
		"daily_rate":     rate.DailyRate.String(),
		"effective_from": rate.EffectiveFrom.Format("2006-01-02"),
	}).Info("late payment interest rate added")

	return rate, nil
}

// CurrentRate returns the rate in effect today.
func (s *RateService) CurrentRate(ctx context.Context) (*domain.LatePaymentInterestRate, error) {
	today := clock.Today(s.clock)

	rate, err := s.store.Rates().Current(ctx, today)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapNoActiveRate(today.Format("2006-01-02"))
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	return rate, nil
}
